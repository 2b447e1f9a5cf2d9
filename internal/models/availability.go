package models

import "time"

// SlotAvailability describes one slot instance in a week overview.
type SlotAvailability struct {
	SlotTemplateID int       `json:"slot_template_id"`
	Description    string    `json:"description"`
	Date           time.Time `json:"date"`
	Bookable       bool      `json:"bookable"`
	Reasons        []string  `json:"reasons,omitempty"`
	Booked         bool      `json:"booked"`
	BookingID      string    `json:"booking_id,omitempty"`
	BookedBy       string    `json:"booked_by,omitempty"`
}

// WeekOverview covers every template instance in one ISO week.
type WeekOverview struct {
	WeekStart time.Time          `json:"week_start"`
	Slots     []SlotAvailability `json:"slots"`
}
