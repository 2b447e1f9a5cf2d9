package models

import "time"

// Favorite is an advisory watchlist entry with no effect on eligibility.
type Favorite struct {
	UserID         string    `db:"user_id" json:"user_id"`
	SlotTemplateID int       `db:"slot_template_id" json:"slot_template_id"`
	CalendarDate   time.Time `db:"calendar_date" json:"calendar_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
