package validator

import (
	"condobook/pkg/logger"
	"condobook/pkg/model"
	"condobook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type FacilityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewFacilityValidator(log *logger.Logger) *FacilityValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize facility validator", "error", err)
	}

	return &FacilityValidator{
		validate: v,
		logger:   log,
	}
}

func (v *FacilityValidator) Validate(f *model.Facility) error {
	if err := validation.Struct(v.validate, f); err != nil {
		return err
	}
	return v.validateBusinessRules(f)
}

func (v *FacilityValidator) validateBusinessRules(f *model.Facility) error {
	open, close, err := f.OperatingMinutes()
	if err != nil {
		return err
	}

	var errs validation.ValidationErrors
	if open%60 != 0 {
		errs = append(errs, validation.ValidationError{
			Field:   "operating_hours_start",
			Rule:    "whole_hour",
			Message: "operating_hours_start must be on the hour",
		})
	}
	if close%60 != 0 {
		errs = append(errs, validation.ValidationError{
			Field:   "operating_hours_end",
			Rule:    "whole_hour",
			Message: "operating_hours_end must be on the hour",
		})
	}
	if len(errs) > 0 {
		return errs
	}

	if open >= close {
		errs = append(errs, validation.ValidationError{
			Field:   "operating_hours_end",
			Rule:    "gtfield",
			Message: "operating_hours_end must be after operating_hours_start",
		})
	} else if f.MinBookingHours*60 > close-open {
		errs = append(errs, validation.ValidationError{
			Field:   "min_booking_hours",
			Rule:    "max",
			Message: "min_booking_hours must fit within operating hours",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
