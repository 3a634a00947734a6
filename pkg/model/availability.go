package model

type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type BookedSlot struct {
	BookingID string        `json:"booking_id"`
	StartTime string        `json:"start_time"`
	EndTime   string        `json:"end_time"`
	Status    BookingStatus `json:"status"`
	BookedBy  string        `json:"booked_by"`
}

type Availability struct {
	Facility FacilitySummary `json:"facility"`
	Date     string          `json:"date"`
	Slots    []Slot          `json:"slots"`
	Booked   []BookedSlot    `json:"booked"`
}
