package policy

import (
	"time"

	bookingserrors "condobook/internal/bookings/errors"
	"condobook/pkg/model"
)

// CanView allows the owner and staff.
func CanView(actor model.Identity, b *model.Booking) error {
	if actor.IsStaff() || actor.Owns(b) {
		return nil
	}
	return bookingserrors.ErrForbidden
}

// CanApprove allows staff to confirm a pending booking.
func CanApprove(actor model.Identity, b *model.Booking) error {
	if !actor.IsStaff() {
		return bookingserrors.ErrForbidden
	}
	if b.Status != model.BookingStatusPending {
		return bookingserrors.ErrInvalidState
	}
	return nil
}

// CanCancel allows the owner or staff to cancel an active booking. Owners
// without a staff role cannot cancel once now is past start minus cutoff.
func CanCancel(actor model.Identity, b *model.Booking, now time.Time, loc *time.Location, cutoff time.Duration) error {
	if !actor.IsStaff() && !actor.Owns(b) {
		return bookingserrors.ErrForbidden
	}
	if !b.Status.IsActive() {
		return bookingserrors.ErrInvalidState
	}
	if actor.IsStaff() {
		return nil
	}

	startsAt, err := b.StartsAt(loc)
	if err != nil {
		return err
	}
	if now.After(startsAt.Add(-cutoff)) {
		return bookingserrors.ErrCancellationCutoff
	}
	return nil
}

// CanUpdate allows the owner or staff to edit a pending booking.
func CanUpdate(actor model.Identity, b *model.Booking) error {
	if !actor.IsStaff() && !actor.Owns(b) {
		return bookingserrors.ErrForbidden
	}
	if b.Status != model.BookingStatusPending {
		return bookingserrors.ErrInvalidState
	}
	return nil
}
