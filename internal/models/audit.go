package models

import "time"

// Audit action tags.
const (
	AuditBookingCreated         = "booking_created"
	AuditBookingCancelled       = "booking_cancelled"
	AuditSickReported           = "sick_reported"
	AuditAdminCancelled         = "admin_cancelled"
	AuditAdminRescheduleVacated = "admin_reschedule_vacated"
	AuditAdminRescheduled       = "admin_rescheduled"
	AuditFavoriteAdded          = "favorite_added"
	AuditFavoriteRemoved        = "favorite_removed"
	AuditSweepWarningSent       = "sweep_warning_sent"
)

// AuditEntry is an append-only trail record. A nil UserID means the system acted.
type AuditEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Action    string    `db:"action" json:"action"`
	Details   string    `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	UserID   string
	Action   string
	Page     int
	PageSize int
}
