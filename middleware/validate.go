// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/danielhkuo/affectme/models"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateHousing, models.ProfileInput{})
	return v
}

// validateHousing requires the housing amount that matches the status
func validateHousing(sl validator.StructLevel) {
	in := sl.Current().Interface().(models.ProfileInput)
	switch in.HousingStatus {
	case models.HousingRenter:
		if in.MonthlyRent == nil {
			sl.ReportError(in.MonthlyRent, "monthlyRent", "MonthlyRent", "required_for_renter", "")
		}
	case models.HousingOwner:
		if in.HomeValue == nil {
			sl.ReportError(in.HomeValue, "homeValue", "HomeValue", "required_for_owner", "")
		}
	}
}

// ValidateStruct validates s against its validate tags and returns a
// readable error listing every failing field.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_for_renter":
		return fmt.Sprintf("%s is required for renters", field)
	case "required_for_owner":
		return fmt.Sprintf("%s is required for owners", field)
	case "min":
		switch e.Kind() {
		case reflect.Slice:
			return fmt.Sprintf("%s must have at least %s items", field, e.Param())
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
