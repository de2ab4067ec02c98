package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kirill-oleynik/signup-service/pkg/outcome"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the wire name, not the Go field name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Validate runs struct validation over value.
func Validate[T any](value T) error {
	return validate.Struct(value)
}

// ValidateFields runs struct validation over value and translates validator
// errors into a per-field message map suitable as failure detail.
func ValidateFields[T any](value T) outcome.FieldErrors {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	fieldErrors := outcome.FieldErrors{}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fieldErrors.Add("base", err.Error())
		return fieldErrors
	}

	for _, fe := range verrs {
		fieldErrors.Add(fe.Field(), fieldErrorMessage(fe))
	}

	return fieldErrors
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is missing"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}
