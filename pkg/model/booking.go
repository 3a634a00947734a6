package model

import (
	"fmt"
	"slices"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// ActiveStatuses are the statuses that hold a facility's time slot.
var ActiveStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

func (s BookingStatus) IsActive() bool {
	return slices.Contains(ActiveStatuses, s)
}

type Booking struct {
	ID                  string        `json:"id" bson:"_id" gorm:"type:varchar(36);primaryKey"`
	BookingNumber       string        `json:"booking_number" bson:"booking_number" gorm:"type:varchar(32);not null;uniqueIndex"`
	FacilityID          string        `json:"facility_id" bson:"facility_id" gorm:"type:varchar(36);not null;index:idx_bookings_facility_date,priority:1"`
	UserID              string        `json:"user_id" bson:"user_id" gorm:"type:varchar(64);not null;index"`
	BookingDate         string        `json:"booking_date" bson:"booking_date" gorm:"type:varchar(10);not null;index:idx_bookings_facility_date,priority:2"`
	StartTime           string        `json:"start_time" bson:"start_time" gorm:"type:varchar(5);not null"`
	EndTime             string        `json:"end_time" bson:"end_time" gorm:"type:varchar(5);not null"`
	ExpectedAttendees   int           `json:"expected_attendees" bson:"expected_attendees" gorm:"not null"`
	Purpose             string        `json:"purpose" bson:"purpose" gorm:"type:text"`
	SpecialRequirements string        `json:"special_requirements" bson:"special_requirements" gorm:"type:text"`
	ContactPhone        string        `json:"contact_phone,omitempty" bson:"contact_phone" gorm:"type:varchar(20)"`
	TotalAmount         float64       `json:"total_amount" bson:"total_amount" gorm:"type:numeric(10,2);not null"`
	Status              BookingStatus `json:"status" bson:"status" gorm:"type:varchar(16);not null;index"`
	CancellationReason  string        `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty" gorm:"type:text"`
	ApprovedBy          string        `json:"approved_by,omitempty" bson:"approved_by,omitempty" gorm:"type:varchar(64)"`
	ApprovedAt          *time.Time    `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
	CancelledAt         *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt           time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" bson:"updated_at"`
}

// Minutes returns the booking interval as minutes after midnight.
func (b *Booking) Minutes() (start, end int, err error) {
	if start, err = ParseClock(b.StartTime); err != nil {
		return 0, 0, fmt.Errorf("booking %s start: %w", b.ID, err)
	}
	if end, err = ParseClock(b.EndTime); err != nil {
		return 0, 0, fmt.Errorf("booking %s end: %w", b.ID, err)
	}
	return start, end, nil
}

// StartsAt returns the start instant of the booking in loc.
func (b *Booking) StartsAt(loc *time.Location) (time.Time, error) {
	return instant(b.BookingDate, b.StartTime, loc)
}

// EndsAt returns the end instant of the booking in loc.
func (b *Booking) EndsAt(loc *time.Location) (time.Time, error) {
	return instant(b.BookingDate, b.EndTime, loc)
}

func instant(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}

// BookingRequest is the payload of a booking creation.
type BookingRequest struct {
	FacilityID          string `json:"facility_id" validate:"required,max=36"`
	BookingDate         string `json:"booking_date" validate:"required,date"`
	StartTime           string `json:"start_time" validate:"required,clock"`
	EndTime             string `json:"end_time" validate:"required,clock"`
	ExpectedAttendees   int    `json:"expected_attendees" validate:"gte=0"`
	Purpose             string `json:"purpose,omitempty" validate:"max=500"`
	SpecialRequirements string `json:"special_requirements,omitempty" validate:"max=1000"`
	ContactPhone        string `json:"contact_phone,omitempty" validate:"omitempty,e164"`
}

// BookingUpdate carries the fields a pending booking may change.
type BookingUpdate struct {
	Purpose             *string `json:"purpose,omitempty" validate:"omitempty,max=500"`
	ExpectedAttendees   *int    `json:"expected_attendees,omitempty" validate:"omitempty,min=1"`
	SpecialRequirements *string `json:"special_requirements,omitempty" validate:"omitempty,max=1000"`
	ContactPhone        *string `json:"contact_phone,omitempty" validate:"omitempty,e164"`
}

func (u *BookingUpdate) IsEmpty() bool {
	return u == nil || (u.Purpose == nil && u.ExpectedAttendees == nil && u.SpecialRequirements == nil && u.ContactPhone == nil)
}

// Apply copies the set fields onto b.
func (u *BookingUpdate) Apply(b *Booking) {
	if u.Purpose != nil {
		b.Purpose = *u.Purpose
	}
	if u.ExpectedAttendees != nil {
		b.ExpectedAttendees = *u.ExpectedAttendees
	}
	if u.SpecialRequirements != nil {
		b.SpecialRequirements = *u.SpecialRequirements
	}
	if u.ContactPhone != nil {
		b.ContactPhone = *u.ContactPhone
	}
}

// StatusChange describes a lifecycle transition written by the store.
type StatusChange struct {
	Status             BookingStatus
	CancellationReason string
	ApprovedBy         string
	At                 time.Time
}

type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type BookingFilter struct {
	UserID     string
	FacilityID string
	Statuses   []BookingStatus
	DateFrom   string
	DateTo     string
}
