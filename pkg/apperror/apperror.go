// Package apperror defines the error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindAuth       Kind = "AUTH"
	KindForbidden  Kind = "FORBIDDEN"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindDependency Kind = "DEPENDENCY"
	KindInternal   Kind = "INTERNAL"
)

// Stable codes returned to clients.
const (
	CodeInvalidInput        = "InvalidInput"
	CodeLocationRequired    = "LocationRequired"
	CodeInvalidLocation     = "InvalidLocation"
	CodeOfficeNotConfigured = "OfficeNotConfigured"
	CodeOutsideGeofence     = "OutsideGeofence"
	CodeAlreadyCheckedIn    = "AlreadyCheckedIn"
	CodeAlreadyCheckedOut   = "AlreadyCheckedOut"
	CodeNoCheckIn           = "NoCheckIn"
	CodeInvalidStatus       = "InvalidStatus"
	CodeInvalidDateRange    = "InvalidDateRange"
	CodeLeaveOverlap        = "LeaveOverlap"
	CodeAlreadyReviewed     = "AlreadyReviewed"
	CodeNotPending          = "NotPending"
	CodeNotFound            = "NotFound"
	CodeDuplicate           = "Duplicate"
	CodeUnauthenticated     = "Unauthenticated"
	CodeAccountDeactivated  = "AccountDeactivated"
	CodeInternal            = "Internal"
)

// Error is a domain error carrying the HTTP status it maps to at the boundary.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	status  int
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status for the error.
func (e *Error) Status() int {
	if e.status != 0 {
		return e.status
	}
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WithStatus overrides the default status of the kind.
func (e *Error) WithStatus(status int) *Error {
	e.status = status
	return e
}

// WithDetail attaches a client-visible detail.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Wrap records the underlying cause; it is logged but never sent to clients.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Validation(code, msg string) *Error { return newError(KindValidation, code, msg) }
func Auth(msg string) *Error             { return newError(KindAuth, CodeUnauthenticated, msg) }
func Forbidden(code, msg string) *Error  { return newError(KindForbidden, code, msg) }
func NotFound(msg string) *Error         { return newError(KindNotFound, CodeNotFound, msg) }
func Conflict(code, msg string) *Error   { return newError(KindConflict, code, msg) }
func Dependency(code, msg string) *Error { return newError(KindDependency, code, msg) }
func Internal(msg string, cause error) *Error {
	return newError(KindInternal, CodeInternal, msg).Wrap(cause)
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
