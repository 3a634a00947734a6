package service

import (
	"errors"
	"fmt"

	bookingserrors "condobook/internal/bookings/errors"
	"condobook/internal/bookings/policy"
	apperrors "condobook/pkg/errors"
	"condobook/pkg/model"
	"condobook/pkg/validation"
)

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Internal("Failed to validate input", err)
}

func policyError(err error) error {
	var violation *policy.Violation
	if errors.As(err, &violation) {
		return apperrors.Validation(violation.Message, map[string]any{
			"errors": []policy.Violation{*violation},
		})
	}
	return apperrors.Internal("Failed to evaluate facility policy", err)
}

func facilityError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Failed to retrieve facility", err)
}

func conflictError(conflicting *model.Booking) error {
	return apperrors.Conflict("Time slot is already booked").WithDetails(map[string]any{
		"conflicting_booking_id":     conflicting.ID,
		"conflicting_booking_number": conflicting.BookingNumber,
		"conflicting_start_time":     conflicting.StartTime,
		"conflicting_end_time":       conflicting.EndTime,
	})
}

func (s *bookingService) lifecycleError(err error, b *model.Booking, action string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrForbidden):
		return apperrors.Forbidden(fmt.Sprintf("Not allowed to %s this booking", action))
	case errors.Is(err, bookingserrors.ErrCancellationCutoff):
		return apperrors.Forbidden(fmt.Sprintf(
			"Bookings can only be cancelled more than %s before they start", s.cfg.CancellationCutoff))
	case errors.Is(err, bookingserrors.ErrInvalidState):
		return apperrors.InvalidState(fmt.Sprintf("Cannot %s a booking that is %s", action, b.Status)).
			WithDetails(map[string]any{"status": b.Status})
	}
	return apperrors.Internal(fmt.Sprintf("Failed to %s booking", action), err)
}

// writeError maps a failed compare-and-set write.
func (s *bookingService) writeError(err error, id, message string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrStatusChanged):
		return apperrors.InvalidState("Booking status changed, reload and retry")
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}
