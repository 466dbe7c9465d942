package main

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validatePayload runs struct validation and turns the first failure into a
// message the page can show as is.
func validatePayload(v *validatorv10.Validate, payload any) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}

	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return fmt.Errorf("validating payload: %w", err)
	}

	fe := ve[0]
	switch fe.Tag() {
	case "required":
		return &fieldError{msg: fe.Field() + " is required"}
	case "oneof":
		return &fieldError{msg: fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))}
	case "min", "gte":
		return &fieldError{msg: fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())}
	default:
		return &fieldError{msg: fe.Field() + " is invalid"}
	}
}
