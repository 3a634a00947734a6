package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "condobook/internal/bookings/errors"
	"condobook/pkg/db"
	"condobook/pkg/model"

	"github.com/google/uuid"
)

const (
	CollectionName          = "Bookings"
	ClaimsCollectionName    = "Booking_slot_claims"
	SequencesCollectionName = "Booking_sequences"
)

// BookingRepository is the Reservation Store. Every method joins the
// transaction carried by ctx when called from ExecuteTransaction.
type BookingRepository interface {
	// Create inserts the booking and one claim per hour it occupies. A claim
	// held by another active booking fails with ErrTimeConflict.
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	// FindOverlapping returns the bookings of a facility on date whose
	// interval overlaps [start, end) and whose status is in statuses.
	FindOverlapping(ctx context.Context, facilityID, date, start, end string, statuses []model.BookingStatus) ([]*model.Booking, error)
	FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	// FindElapsed returns confirmed bookings that ended at or before clock on today,
	// or on an earlier date.
	FindElapsed(ctx context.Context, today, clock string) ([]*model.Booking, error)
	// UpdateStatus applies change only while the booking is in one of the
	// expected statuses, releasing its claims when the new status is not active.
	// It returns ErrStatusChanged when the booking is in another status.
	UpdateStatus(ctx context.Context, id string, expected []model.BookingStatus, change model.StatusChange) (*model.Booking, error)
	// UpdateDetails edits a pending booking, or returns ErrStatusChanged.
	UpdateDetails(ctx context.Context, id string, update *model.BookingUpdate, at time.Time) (*model.Booking, error)
	// NextSequence atomically allocates the next booking sequence value of year.
	NextSequence(ctx context.Context, year int) (int64, error)
	ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return nil
}

func statusFields(change model.StatusChange) map[string]any {
	fields := map[string]any{
		"status":     change.Status,
		"updated_at": change.At,
	}
	switch change.Status {
	case model.BookingStatusConfirmed:
		fields["approved_by"] = change.ApprovedBy
		fields["approved_at"] = change.At
	case model.BookingStatusCancelled:
		fields["cancellation_reason"] = change.CancellationReason
		fields["cancelled_at"] = change.At
	}
	return fields
}

func detailFields(update *model.BookingUpdate, at time.Time) map[string]any {
	fields := map[string]any{"updated_at": at}
	if update.Purpose != nil {
		fields["purpose"] = *update.Purpose
	}
	if update.ExpectedAttendees != nil {
		fields["expected_attendees"] = *update.ExpectedAttendees
	}
	if update.SpecialRequirements != nil {
		fields["special_requirements"] = *update.SpecialRequirements
	}
	if update.ContactPhone != nil {
		fields["contact_phone"] = *update.ContactPhone
	}
	return fields
}
