// Package validation configures go-playground/validator with the tags shared
// by the booking and facility validators and turns its errors into field-level
// details.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"condobook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as the AppError details payload.
func (v ValidationErrors) Details() map[string]any {
	return map[string]any{"errors": []ValidationError(v)}
}

// New returns a validator that reports json field names and knows the
// "clock" (HH:MM) and "date" (YYYY-MM-DD) tags.
func New() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("clock", validateClock); err != nil {
		return nil, fmt.Errorf("register 'clock' validator: %w", err)
	}
	if err := v.RegisterValidation("date", validateDate); err != nil {
		return nil, fmt.Errorf("register 'date' validator: %w", err)
	}

	return v, nil
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := model.ParseClock(fl.Field().String())
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := model.ParseDate(fl.Field().String(), nil)
	return err == nil
}

// Struct validates s and translates validator errors into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Translate(validationErrs)
		}
		return err
	}
	return nil
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min", "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max", "lte":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +972501234567)", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "clock":
			message = fmt.Sprintf("%s must be a time of day in HH:MM format", err.Field())
		case "date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "gtefield":
			message = fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Rule:    err.Tag(),
			Message: message,
		})
	}

	return validationErrors
}
