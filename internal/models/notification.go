package models

import "time"

// NotificationType scopes the dedup key.
type NotificationType string

const (
	NotificationWarningUnfilled NotificationType = "warning_unfilled"
)

// NotificationDedupRecord marks a notification that must never be sent again.
type NotificationDedupRecord struct {
	SlotTemplateID   int              `db:"slot_template_id" json:"slot_template_id"`
	CalendarDate     time.Time        `db:"calendar_date" json:"calendar_date"`
	NotificationType NotificationType `db:"notification_type" json:"notification_type"`
	SentAt           time.Time        `db:"sent_at" json:"sent_at"`
}

// PendingWarning is an unfilled slot instance whose dedup key was just claimed.
type PendingWarning struct {
	Slot SlotTemplate     `json:"slot"`
	Date time.Time        `json:"date"`
	Type NotificationType `json:"type"`
}

// InviteMethod is the iCalendar METHOD of an invitation.
type InviteMethod string

const (
	InviteRequest InviteMethod = "REQUEST"
	InviteCancel  InviteMethod = "CANCEL"
)

// Recipient is an addressable person.
type Recipient struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
}

// BroadcastMessage is delivered to every admin recipient.
type BroadcastMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DeliveryResult reports the outcome for one broadcast recipient.
type DeliveryResult struct {
	Recipient string `json:"recipient"`
	Channel   string `json:"channel"`
	Err       error  `json:"-"`
}

// OK reports whether delivery succeeded.
func (d DeliveryResult) OK() bool {
	return d.Err == nil
}
