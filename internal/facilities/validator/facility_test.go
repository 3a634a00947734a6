package validator

import (
	"errors"
	"testing"

	"condobook/pkg/logger"
	"condobook/pkg/model"
	"condobook/pkg/validation"
)

func validFacility() *model.Facility {
	return &model.Facility{
		Name:                "Function Hall",
		Type:                "function_room",
		Capacity:            20,
		HourlyRate:          200,
		OperatingHoursStart: "08:00",
		OperatingHoursEnd:   "22:00",
		MinBookingHours:     2,
		MaxBookingHours:     8,
		AdvanceBookingDays:  30,
		IsActive:            true,
	}
}

func TestFacilityValidator_Validate(t *testing.T) {
	v := NewFacilityValidator(logger.Nop())

	tests := []struct {
		name      string
		mutate    func(*model.Facility)
		wantField string
		wantRule  string
	}{
		{name: "valid", mutate: func(*model.Facility) {}},
		{name: "missing name", mutate: func(f *model.Facility) { f.Name = "" }, wantField: "name", wantRule: "required"},
		{name: "zero capacity", mutate: func(f *model.Facility) { f.Capacity = 0 }, wantField: "capacity", wantRule: "required"},
		{name: "negative rate", mutate: func(f *model.Facility) { f.HourlyRate = -1 }, wantField: "hourly_rate", wantRule: "gte"},
		{name: "bad clock", mutate: func(f *model.Facility) { f.OperatingHoursStart = "8am" }, wantField: "operating_hours_start", wantRule: "clock"},
		{name: "max below min", mutate: func(f *model.Facility) { f.MaxBookingHours = 1 }, wantField: "max_booking_hours", wantRule: "gtefield"},
		{name: "closes before opening", mutate: func(f *model.Facility) {
			f.OperatingHoursStart = "22:00"
			f.OperatingHoursEnd = "08:00"
		}, wantField: "operating_hours_end", wantRule: "gtfield"},
		{name: "opens on the half hour", mutate: func(f *model.Facility) {
			f.OperatingHoursStart = "08:30"
		}, wantField: "operating_hours_start", wantRule: "whole_hour"},
		{name: "closes on the half hour", mutate: func(f *model.Facility) {
			f.OperatingHoursEnd = "22:30"
		}, wantField: "operating_hours_end", wantRule: "whole_hour"},
		{name: "minimum longer than day", mutate: func(f *model.Facility) {
			f.OperatingHoursStart = "10:00"
			f.OperatingHoursEnd = "12:00"
			f.MinBookingHours = 3
		}, wantField: "min_booking_hours", wantRule: "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFacility()
			tt.mutate(f)

			err := v.Validate(f)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}

			var verrs validation.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want ValidationErrors", err)
			}
			for _, e := range verrs {
				if e.Field == tt.wantField && e.Rule == tt.wantRule {
					return
				}
			}
			t.Errorf("Validate() = %v, want %s/%s", verrs, tt.wantField, tt.wantRule)
		})
	}
}
