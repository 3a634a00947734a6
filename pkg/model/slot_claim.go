package model

import (
	"fmt"
	"time"
)

// SlotClaim marks one hour of a facility's day as held by an active booking.
// Its key is unique per (facility, date, hour), so two active bookings can never
// hold the same hour.
type SlotClaim struct {
	ID          string    `bson:"_id" json:"id" gorm:"type:varchar(80);primaryKey"`
	FacilityID  string    `bson:"facility_id" json:"facility_id" gorm:"type:varchar(36);not null"`
	BookingDate string    `bson:"booking_date" json:"booking_date" gorm:"type:varchar(10);not null"`
	Hour        int       `bson:"hour" json:"hour" gorm:"not null"`
	BookingID   string    `bson:"booking_id" json:"booking_id" gorm:"type:varchar(36);not null;index"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

func SlotClaimID(facilityID, date string, hour int) string {
	return fmt.Sprintf("%s:%s:%02d", facilityID, date, hour)
}

// ClaimsFor expands a booking into one claim per hour it touches.
func ClaimsFor(b *Booking, at time.Time) ([]SlotClaim, error) {
	start, end, err := b.Minutes()
	if err != nil {
		return nil, err
	}
	var claims []SlotClaim
	for hour := start / 60; hour*60 < end; hour++ {
		claims = append(claims, SlotClaim{
			ID:          SlotClaimID(b.FacilityID, b.BookingDate, hour),
			FacilityID:  b.FacilityID,
			BookingDate: b.BookingDate,
			Hour:        hour,
			BookingID:   b.ID,
			CreatedAt:   at,
		})
	}
	return claims, nil
}

// BookingSequence holds the last booking number issued in a year.
type BookingSequence struct {
	Year      int       `bson:"_id" json:"year" gorm:"primaryKey;autoIncrement:false"`
	Value     int64     `bson:"value" json:"value" gorm:"not null"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
