package schedule

import (
	"slices"

	"condobook/pkg/model"
)

// FindConflict returns the first active booking whose interval overlaps
// candidate, or nil when the candidate is free. Bookings that are not
// pending or confirmed never conflict.
func FindConflict(candidate Interval, existing []*model.Booking) (*model.Booking, error) {
	for _, b := range existing {
		if b == nil || !b.Status.IsActive() {
			continue
		}
		occupied, err := BookingInterval(b)
		if err != nil {
			return nil, err
		}
		if candidate.Overlaps(occupied) {
			return b, nil
		}
	}
	return nil, nil
}

func BookingInterval(b *model.Booking) (Interval, error) {
	start, end, err := b.Minutes()
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(start, end)
}

// Occupied returns the intervals of the active bookings, ordered by start.
func Occupied(bookings []*model.Booking) ([]Interval, error) {
	out := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		if b == nil || !b.Status.IsActive() {
			continue
		}
		in, err := BookingInterval(b)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	slices.SortFunc(out, func(a, b Interval) int {
		return a.Start - b.Start
	})
	return out, nil
}
