package util

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

var uppercase = regexp.MustCompile(`[A-Z]`)

func init() {
	Validate = validator.New()

	Validate.RegisterValidation("hasuppercase", validateHasUppercase)
}

func validateHasUppercase(fl validator.FieldLevel) bool {
	return uppercase.MatchString(fl.Field().String())
}

type ErrorResponse struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Msg   string `json:"message"`
}

func ValidateStruct(s interface{}) []*ErrorResponse {
	var errs []*ErrorResponse
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*ErrorResponse{{Tag: "invalid", Msg: err.Error()}}
	}

	for _, err := range verrs {
		var element ErrorResponse
		element.Field = err.Field()
		element.Tag = err.Tag()

		switch err.Tag() {
		case "required", "required_if":
			element.Msg = fmt.Sprintf("Field '%s' is required.", element.Field)
		case "min":
			element.Msg = fmt.Sprintf("Field '%s' must be at least %s characters/value.", element.Field, err.Param())
		case "max":
			element.Msg = fmt.Sprintf("Field '%s' must be at most %s characters/value.", element.Field, err.Param())
		case "email":
			element.Msg = "Invalid email format."
		case "hasuppercase":
			element.Msg = "Password must contain at least one uppercase letter."
		case "latitude":
			element.Msg = "Latitude must be between -90 and 90."
		case "longitude":
			element.Msg = "Longitude must be between -180 and 180."
		case "datetime":
			element.Msg = fmt.Sprintf("Field '%s' must be a date in %s format.", element.Field, err.Param())
		case "gt", "lte":
			element.Msg = fmt.Sprintf("Field '%s' is out of range.", element.Field)
		case "oneof":
			element.Msg = fmt.Sprintf("Field '%s' must be one of: %s.", element.Field, err.Param())
		default:
			element.Msg = fmt.Sprintf("Field '%s' failed validation for tag '%s'.", element.Field, element.Tag)
		}
		errs = append(errs, &element)
	}
	return errs
}
