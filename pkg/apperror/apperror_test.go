package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"geo-attendance/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *apperror.Error
		want int
	}{
		{apperror.Validation(apperror.CodeLocationRequired, "location required"), http.StatusBadRequest},
		{apperror.Conflict(apperror.CodeAlreadyCheckedIn, "already checked in"), http.StatusBadRequest},
		{apperror.Conflict(apperror.CodeDuplicate, "exists").WithStatus(http.StatusConflict), http.StatusConflict},
		{apperror.Auth("no session"), http.StatusUnauthorized},
		{apperror.Forbidden(apperror.CodeOutsideGeofence, "outside"), http.StatusForbidden},
		{apperror.NotFound("missing"), http.StatusNotFound},
		{apperror.Dependency(apperror.CodeOfficeNotConfigured, "no office"), http.StatusInternalServerError},
		{apperror.Internal("boom", errors.New("cause")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestAsThroughWrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("duplicate key")
	base := apperror.Conflict(apperror.CodeAlreadyCheckedIn, "already checked in").Wrap(cause)
	wrapped := fmt.Errorf("check-in: %w", base)

	appErr, ok := apperror.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, apperror.KindConflict, appErr.Kind)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, apperror.HasCode(wrapped, apperror.CodeAlreadyCheckedIn))
	assert.True(t, apperror.IsKind(wrapped, apperror.KindConflict))
	assert.False(t, apperror.IsKind(errors.New("plain"), apperror.KindConflict))
}

func TestWithDetail(t *testing.T) {
	t.Parallel()

	err := apperror.Forbidden(apperror.CodeOutsideGeofence, "outside office").WithDetail("distance", 912)
	assert.Equal(t, 912, err.Details["distance"])
	assert.Equal(t, "OutsideGeofence: outside office", err.Error())
}
