// Package schedule holds the pure time arithmetic of the booking engine:
// interval overlap, conflict detection and availability slots. Times are
// minutes after midnight on the booking date.
package schedule

import (
	"fmt"

	bookingserrors "condobook/internal/bookings/errors"
	"condobook/pkg/model"
)

// Interval is the half-open range [Start, End) in minutes after midnight.
type Interval struct {
	Start int
	End   int
}

func NewInterval(start, end int) (Interval, error) {
	if start < 0 || end > model.MinutesPerDay || end <= start {
		return Interval{}, fmt.Errorf("%w: [%d, %d)", bookingserrors.ErrInvalidTimeRange, start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// ParseInterval builds an interval from two "HH:MM" values.
func ParseInterval(start, end string) (Interval, error) {
	s, err := model.ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := model.ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(s, e)
}

// Overlaps reports whether [a,b) and [c,d) share any instant: a < d && c < b.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

func (i Interval) Minutes() int {
	return i.End - i.Start
}

// WholeHours reports whether both ends sit on the hour.
func (i Interval) WholeHours() bool {
	return i.Start%60 == 0 && i.End%60 == 0
}

func (i Interval) Hours() int {
	return i.Minutes() / 60
}

func (i Interval) StartClock() string {
	return model.FormatClock(i.Start)
}

func (i Interval) EndClock() string {
	return model.FormatClock(i.End)
}

func (i Interval) String() string {
	return i.StartClock() + "-" + i.EndClock()
}
