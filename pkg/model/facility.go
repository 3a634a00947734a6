package model

import (
	"time"

	"gorm.io/datatypes"
)

type Facility struct {
	ID                  string                      `json:"id" bson:"_id" gorm:"type:varchar(36);primaryKey" validate:"omitempty,uuid"`
	Name                string                      `json:"name" bson:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Type                string                      `json:"type" bson:"type" gorm:"type:varchar(50);not null;index" validate:"required,min=2,max=50"`
	Description         string                      `json:"description" bson:"description" gorm:"type:text" validate:"max=2000"`
	Location            string                      `json:"location" bson:"location" gorm:"type:varchar(200)" validate:"max=200"`
	Rules               string                      `json:"rules" bson:"rules" gorm:"type:text" validate:"max=4000"`
	Amenities           datatypes.JSONSlice[string] `json:"amenities" bson:"amenities" validate:"max=50,dive,required,max=100"`
	Capacity            int                         `json:"capacity" bson:"capacity" gorm:"not null" validate:"required,min=1,max=10000"`
	HourlyRate          float64                     `json:"hourly_rate" bson:"hourly_rate" gorm:"type:numeric(10,2);not null" validate:"gte=0"`
	OperatingHoursStart string                      `json:"operating_hours_start" bson:"operating_hours_start" gorm:"type:varchar(5);not null" validate:"required,clock"`
	OperatingHoursEnd   string                      `json:"operating_hours_end" bson:"operating_hours_end" gorm:"type:varchar(5);not null" validate:"required,clock"`
	MinBookingHours     int                         `json:"min_booking_hours" bson:"min_booking_hours" gorm:"not null" validate:"required,min=1,max=24"`
	MaxBookingHours     int                         `json:"max_booking_hours" bson:"max_booking_hours" gorm:"not null" validate:"required,min=1,max=24,gtefield=MinBookingHours"`
	AdvanceBookingDays  int                         `json:"advance_booking_days" bson:"advance_booking_days" gorm:"not null" validate:"gte=0,max=365"`
	IsActive            bool                        `json:"is_active" bson:"is_active" gorm:"not null;index"`
	CreatedAt           time.Time                   `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at" bson:"updated_at"`
}

// OperatingMinutes returns the opening window as minutes after midnight.
func (f *Facility) OperatingMinutes() (open, close int, err error) {
	if open, err = ParseClock(f.OperatingHoursStart); err != nil {
		return 0, 0, err
	}
	if close, err = ParseClock(f.OperatingHoursEnd); err != nil {
		return 0, 0, err
	}
	return open, close, nil
}

func (f *Facility) Summary() FacilitySummary {
	return FacilitySummary{
		ID:              f.ID,
		Name:            f.Name,
		HourlyRate:      f.HourlyRate,
		OperatingHours:  f.OperatingHoursStart + "-" + f.OperatingHoursEnd,
		MinBookingHours: f.MinBookingHours,
		MaxBookingHours: f.MaxBookingHours,
	}
}

type FacilitySummary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	HourlyRate      float64 `json:"hourly_rate"`
	OperatingHours  string  `json:"operating_hours"`
	MinBookingHours int     `json:"min_booking_hours"`
	MaxBookingHours int     `json:"max_booking_hours"`
}

// FacilityRequest is the creation payload; nil pointers take directory defaults.
type FacilityRequest struct {
	Name                string   `json:"name"`
	Type                string   `json:"type"`
	Description         string   `json:"description"`
	Location            string   `json:"location"`
	Rules               string   `json:"rules"`
	Amenities           []string `json:"amenities"`
	Capacity            int      `json:"capacity"`
	HourlyRate          float64  `json:"hourly_rate"`
	OperatingHoursStart string   `json:"operating_hours_start"`
	OperatingHoursEnd   string   `json:"operating_hours_end"`
	MinBookingHours     *int     `json:"min_booking_hours"`
	MaxBookingHours     *int     `json:"max_booking_hours"`
	AdvanceBookingDays  *int     `json:"advance_booking_days"`
	IsActive            *bool    `json:"is_active"`
}

type FacilityUpdate struct {
	Name                *string   `json:"name,omitempty"`
	Type                *string   `json:"type,omitempty"`
	Description         *string   `json:"description,omitempty"`
	Location            *string   `json:"location,omitempty"`
	Rules               *string   `json:"rules,omitempty"`
	Amenities           *[]string `json:"amenities,omitempty"`
	Capacity            *int      `json:"capacity,omitempty"`
	HourlyRate          *float64  `json:"hourly_rate,omitempty"`
	OperatingHoursStart *string   `json:"operating_hours_start,omitempty"`
	OperatingHoursEnd   *string   `json:"operating_hours_end,omitempty"`
	MinBookingHours     *int      `json:"min_booking_hours,omitempty"`
	MaxBookingHours     *int      `json:"max_booking_hours,omitempty"`
	AdvanceBookingDays  *int      `json:"advance_booking_days,omitempty"`
	IsActive            *bool     `json:"is_active,omitempty"`
}

// Apply merges the set fields onto f.
func (u *FacilityUpdate) Apply(f *Facility) {
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.Type != nil {
		f.Type = *u.Type
	}
	if u.Description != nil {
		f.Description = *u.Description
	}
	if u.Location != nil {
		f.Location = *u.Location
	}
	if u.Rules != nil {
		f.Rules = *u.Rules
	}
	if u.Amenities != nil {
		f.Amenities = datatypes.JSONSlice[string](*u.Amenities)
	}
	if u.Capacity != nil {
		f.Capacity = *u.Capacity
	}
	if u.HourlyRate != nil {
		f.HourlyRate = *u.HourlyRate
	}
	if u.OperatingHoursStart != nil {
		f.OperatingHoursStart = *u.OperatingHoursStart
	}
	if u.OperatingHoursEnd != nil {
		f.OperatingHoursEnd = *u.OperatingHoursEnd
	}
	if u.MinBookingHours != nil {
		f.MinBookingHours = *u.MinBookingHours
	}
	if u.MaxBookingHours != nil {
		f.MaxBookingHours = *u.MaxBookingHours
	}
	if u.AdvanceBookingDays != nil {
		f.AdvanceBookingDays = *u.AdvanceBookingDays
	}
	if u.IsActive != nil {
		f.IsActive = *u.IsActive
	}
}

type FacilityFilter struct {
	Type       string
	ActiveOnly bool
}
