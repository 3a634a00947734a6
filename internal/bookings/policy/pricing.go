package policy

import (
	"fmt"
	"math"

	"condobook/pkg/config"
)

// TotalAmount is the hourly rate times the duration, rounded to cents.
func TotalAmount(hourlyRate float64, durationMinutes int) float64 {
	amount := hourlyRate * float64(durationMinutes) / 60
	return math.Round(amount*100) / 100
}

// BookingNumber renders the human-readable number, e.g. BK2024000042.
func BookingNumber(year int, sequence int64) string {
	return fmt.Sprintf("%s%04d%06d", config.BookingNumberPrefix, year, sequence)
}
