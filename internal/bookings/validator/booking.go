package validator

import (
	"condobook/internal/bookings/schedule"
	"condobook/pkg/logger"
	"condobook/pkg/model"
	"condobook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize booking validator", "error", err)
	}

	log.Debug("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateRequest checks the request shape. Facility policy is checked later
// against the facility itself.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := validation.Struct(v.validate, req); err != nil {
		return err
	}

	if _, err := schedule.ParseInterval(req.StartTime, req.EndTime); err != nil {
		return validation.ValidationErrors{
			{
				Field:   "end_time",
				Rule:    "gtfield",
				Message: "end_time must be after start_time",
			},
		}
	}

	return nil
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if update.IsEmpty() {
		return validation.ValidationErrors{
			{
				Field:   "body",
				Rule:    "required",
				Message: "at least one of purpose, expected_attendees, special_requirements, contact_phone is required",
			},
		}
	}
	return validation.Struct(v.validate, update)
}

func (v *BookingValidator) ValidateCancel(req *model.CancelRequest) error {
	return validation.Struct(v.validate, req)
}
