package models

import "time"

// BookingStatus is reserved for extension; cancellation deletes the row.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is one occupied slot instance.
type Booking struct {
	ID             string        `db:"id" json:"id"`
	UserID         string        `db:"user_id" json:"user_id"`
	SlotTemplateID int           `db:"slot_template_id" json:"slot_template_id"`
	CalendarDate   time.Time     `db:"calendar_date" json:"calendar_date"`
	Status         BookingStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// Instance returns the slot instance the booking occupies.
func (b Booking) Instance() SlotInstance {
	return SlotInstance{SlotTemplateID: b.SlotTemplateID, Date: b.CalendarDate}
}

// BookingDetail joins a booking with its occupant for overviews and exports.
type BookingDetail struct {
	Booking
	UserName  string `db:"full_name" json:"user_name"`
	UserEmail string `db:"email" json:"user_email"`
}

// Reason codes produced by the eligibility gate and the ledger.
const (
	ReasonMissingUser     = "missing_user"
	ReasonMissingSlot     = "missing_slot"
	ReasonMissingDate     = "missing_date"
	ReasonInvalidDate     = "invalid_date"
	ReasonHoliday         = "holiday"
	ReasonClosedPeriod    = "closed_period"
	ReasonPastDate        = "past_date"
	ReasonUnknownSlot     = "unknown_slot"
	ReasonWeekdayMismatch = "weekday_mismatch"
	ReasonSlotTaken       = "slot_taken"
	ReasonNotFound        = "booking_not_found"
	ReasonNotOwner        = "not_owner"
	ReasonSlotVacated     = "slot_vacated"
)

// ValidationReason is a single structured rejection.
type ValidationReason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
