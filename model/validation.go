package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field of a submission that failed its constraints.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(parts, "; ")
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form name rather than the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		_, ok := ParseGender(fl.Field().String())
		return ok
	})
	return v
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.add(fe.Field(), messageFor(fe))
	}
	return verr
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must not be empty"
	case "gt", "lt":
		return "must be greater than 0 and less than 150"
	case "gender":
		names := make([]string, 0, len(Genders))
		for _, g := range Genders {
			names = append(names, string(g))
		}
		return "must be one of " + strings.Join(names, ", ")
	default:
		return fmt.Sprintf("failed %s constraint", fe.Tag())
	}
}
