// Package policy enforces facility booking rules and the booking lifecycle.
package policy

import (
	"fmt"
	"time"

	"condobook/internal/bookings/schedule"
	"condobook/pkg/model"
)

const (
	RuleFacilityInactive      = "facility_inactive"
	RuleCapacityExceeded      = "capacity_exceeded"
	RuleWholeHoursOnly        = "whole_hours_only"
	RuleInvalidTimeRange      = "invalid_time_range"
	RuleDurationBelowMinimum  = "duration_below_minimum"
	RuleDurationAboveMaximum  = "duration_above_maximum"
	RuleOutsideBookingWindow  = "outside_booking_window"
	RuleOutsideOperatingHours = "outside_operating_hours"
)

// Violation is a facility rule the candidate booking breaks.
type Violation struct {
	Rule    string `json:"rule"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

// Candidate is the part of a booking request facility policy looks at.
type Candidate struct {
	BookingDate       string
	StartTime         string
	EndTime           string
	ExpectedAttendees int
}

// Check runs the facility rules in order and returns the first violation,
// or the candidate's interval when all pass. now is compared against the
// booking date in loc.
func Check(f *model.Facility, c Candidate, now time.Time, loc *time.Location) (schedule.Interval, error) {
	if err := CheckActive(f); err != nil {
		return schedule.Interval{}, err
	}
	if err := CheckCapacity(f, c.ExpectedAttendees); err != nil {
		return schedule.Interval{}, err
	}

	interval, err := CheckDuration(f, c.StartTime, c.EndTime)
	if err != nil {
		return schedule.Interval{}, err
	}

	if err := CheckBookingWindow(f, c.BookingDate, now, loc); err != nil {
		return schedule.Interval{}, err
	}
	if err := CheckOperatingHours(f, interval); err != nil {
		return schedule.Interval{}, err
	}

	return interval, nil
}

func CheckActive(f *model.Facility) error {
	if !f.IsActive {
		return &Violation{
			Rule:    RuleFacilityInactive,
			Field:   "facility_id",
			Message: fmt.Sprintf("facility %q is not accepting bookings", f.Name),
		}
	}
	return nil
}

func CheckCapacity(f *model.Facility, attendees int) error {
	if attendees > f.Capacity {
		return &Violation{
			Rule:    RuleCapacityExceeded,
			Field:   "expected_attendees",
			Message: fmt.Sprintf("expected attendees (%d) exceeds facility capacity (%d)", attendees, f.Capacity),
		}
	}
	return nil
}

func CheckDuration(f *model.Facility, start, end string) (schedule.Interval, error) {
	interval, err := schedule.ParseInterval(start, end)
	if err != nil {
		return schedule.Interval{}, &Violation{
			Rule:    RuleInvalidTimeRange,
			Field:   "end_time",
			Message: "end_time must be after start_time on the same day",
		}
	}

	if !interval.WholeHours() {
		return schedule.Interval{}, &Violation{
			Rule:    RuleWholeHoursOnly,
			Field:   "start_time",
			Message: "bookings start and end on the hour",
		}
	}

	duration := interval.Hours()
	if duration < f.MinBookingHours {
		return schedule.Interval{}, &Violation{
			Rule:    RuleDurationBelowMinimum,
			Field:   "end_time",
			Message: fmt.Sprintf("booking lasts %d hour(s), minimum is %d", duration, f.MinBookingHours),
		}
	}
	if duration > f.MaxBookingHours {
		return schedule.Interval{}, &Violation{
			Rule:    RuleDurationAboveMaximum,
			Field:   "end_time",
			Message: fmt.Sprintf("booking lasts %d hour(s), maximum is %d", duration, f.MaxBookingHours),
		}
	}

	return interval, nil
}

// CheckBookingWindow accepts dates in [today, today+advanceBookingDays].
func CheckBookingWindow(f *model.Facility, date string, now time.Time, loc *time.Location) error {
	day, err := model.ParseDate(date, loc)
	if err != nil {
		return &Violation{
			Rule:    RuleOutsideBookingWindow,
			Field:   "booking_date",
			Message: "booking_date must be a YYYY-MM-DD date",
		}
	}

	today := model.Today(now, loc)
	last := today.AddDate(0, 0, f.AdvanceBookingDays)
	if day.Before(today) || day.After(last) {
		return &Violation{
			Rule:  RuleOutsideBookingWindow,
			Field: "booking_date",
			Message: fmt.Sprintf("booking_date must be between %s and %s",
				today.Format(model.DateLayout), last.Format(model.DateLayout)),
		}
	}
	return nil
}

func CheckOperatingHours(f *model.Facility, interval schedule.Interval) error {
	open, close, err := f.OperatingMinutes()
	if err != nil {
		return fmt.Errorf("facility %s operating hours: %w", f.ID, err)
	}
	if interval.Start < open || interval.End > close {
		return &Violation{
			Rule:  RuleOutsideOperatingHours,
			Field: "start_time",
			Message: fmt.Sprintf("booking must fall within operating hours %s-%s",
				f.OperatingHoursStart, f.OperatingHoursEnd),
		}
	}
	return nil
}
