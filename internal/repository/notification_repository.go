package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-booking-api/internal/models"
)

// NotificationRepository is the notification dedup ledger.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// ClaimIfUnbooked records the dedup key for an unbooked slot instance in a
// single statement. It returns true only when this call created the record,
// which makes the warning due. A booked instance or an existing key yields false.
func (r *NotificationRepository) ClaimIfUnbooked(ctx context.Context, slotID int, date time.Time, kind models.NotificationType, sentAt time.Time) (bool, error) {
	const query = `INSERT INTO notification_dedup (slot_template_id, calendar_date, notification_type, sent_at)
SELECT $1::int, $2::date, $3, $4
WHERE NOT EXISTS (SELECT 1 FROM bookings WHERE slot_template_id = $1 AND calendar_date = $2)
ON CONFLICT (slot_template_id, calendar_date, notification_type) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, slotID, date, string(kind), sentAt)
	if err != nil {
		return false, fmt.Errorf("claim notification key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim notification rows affected: %w", err)
	}
	return affected == 1, nil
}

// Exists reports whether the dedup key was already recorded.
func (r *NotificationRepository) Exists(ctx context.Context, slotID int, date time.Time, kind models.NotificationType) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM notification_dedup WHERE slot_template_id = $1 AND calendar_date = $2 AND notification_type = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, slotID, date, string(kind)); err != nil {
		return false, fmt.Errorf("check notification key: %w", err)
	}
	return exists, nil
}

// ListSince returns dedup records sent at or after since, newest first.
func (r *NotificationRepository) ListSince(ctx context.Context, since time.Time) ([]models.NotificationDedupRecord, error) {
	const query = `SELECT slot_template_id, calendar_date, notification_type, sent_at FROM notification_dedup WHERE sent_at >= $1 ORDER BY sent_at DESC`
	var records []models.NotificationDedupRecord
	if err := r.db.SelectContext(ctx, &records, query, since); err != nil {
		return nil, fmt.Errorf("list notification keys: %w", err)
	}
	return records, nil
}
