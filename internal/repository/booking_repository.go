package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-booking-api/internal/models"
)

const bookingColumns = `id, user_id, slot_template_id, calendar_date, status, created_at`

// BookingRepository is the constraint-backed booking ledger store.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new instance of BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking. The bookings_slot_date_key unique index rejects a
// second booking for the same slot instance; callers detect it with
// database.IsUniqueViolation.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	const query = `INSERT INTO bookings (` + bookingColumns + `) VALUES (:id, :user_id, :slot_template_id, :calendar_date, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// Delete removes a booking in one statement and returns the removed row. When
// ownerID is set only a booking owned by that user matches. The bool is false
// when nothing was deleted.
func (r *BookingRepository) Delete(ctx context.Context, id string, ownerID *string) (*models.Booking, bool, error) {
	query := `DELETE FROM bookings WHERE id = $1`
	args := []interface{}{id}
	if ownerID != nil {
		query += ` AND user_id = $2`
		args = append(args, *ownerID)
	}
	query += ` RETURNING ` + bookingColumns

	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("delete booking: %w", err)
	}
	return &booking, true, nil
}

// FindByID returns a booking by identifier.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &booking, nil
}

// ListForSlot returns bookings of one slot instance. Callers must not assume
// there is at most one.
func (r *BookingRepository) ListForSlot(ctx context.Context, slotID int, date time.Time) ([]models.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE slot_template_id = $1 AND calendar_date = $2 ORDER BY created_at`
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, slotID, date); err != nil {
		return nil, fmt.Errorf("list bookings for slot: %w", err)
	}
	return bookings, nil
}

// ListForUser returns a user's bookings, newest date first.
func (r *BookingRepository) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY calendar_date DESC, slot_template_id`
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, fmt.Errorf("list bookings for user: %w", err)
	}
	return bookings, nil
}

// ListRange returns bookings with occupant details for an inclusive date range.
func (r *BookingRepository) ListRange(ctx context.Context, from, to time.Time) ([]models.BookingDetail, error) {
	const query = `SELECT b.id, b.user_id, b.slot_template_id, b.calendar_date, b.status, b.created_at, u.full_name, u.email
FROM bookings b
JOIN users u ON u.id = b.user_id
WHERE b.calendar_date BETWEEN $1 AND $2
ORDER BY b.calendar_date, b.slot_template_id`
	var rows []models.BookingDetail
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("list bookings in range: %w", err)
	}
	return rows, nil
}
