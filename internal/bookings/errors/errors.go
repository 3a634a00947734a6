package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrTimeConflict is returned by the store when an hour claim collides
	// with another active booking.
	ErrTimeConflict = errors.New("booking time conflicts with existing booking")

	// ErrStatusChanged means a compare-and-set status write found the booking
	// in a status other than the expected ones.
	ErrStatusChanged = errors.New("booking status changed concurrently")

	ErrInvalidTimeRange = errors.New("end time must be after start time")

	ErrForbidden = errors.New("actor may not perform this action on the booking")

	ErrInvalidState = errors.New("action not allowed in the booking's current status")

	ErrCancellationCutoff = errors.New("booking starts too soon to be cancelled")
)
