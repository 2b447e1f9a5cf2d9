package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/pkg/database"
	appErrors "github.com/noah-isme/shift-booking-api/pkg/errors"
	"github.com/noah-isme/shift-booking-api/pkg/telemetry"
)

type bookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string, ownerID *string) (*models.Booking, bool, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	ListForSlot(ctx context.Context, slotID int, date time.Time) ([]models.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.BookingDetail, error)
}

// AuditSink receives one entry per ledger mutation.
type AuditSink interface {
	Append(ctx context.Context, userID *string, action, details string, ts time.Time) error
}

type weekInvalidator interface {
	InvalidateWeek(ctx context.Context, date time.Time)
}

// AuditNote describes the audit entry a mutation writes.
type AuditNote struct {
	Actor   *string
	Action  string
	Details string
}

// LedgerService owns booking occupancy. Uniqueness is enforced by the
// bookings_slot_date_key index, never by a prior read. The ledger does not
// evaluate calendar rules.
type LedgerService struct {
	bookings bookingStore
	audit    AuditSink
	cache    weekInvalidator
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewLedgerService builds the ledger. cache may be nil.
func NewLedgerService(bookings bookingStore, audit AuditSink, cache weekInvalidator, metrics *MetricsService, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		bookings: bookings,
		audit:    audit,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateBooking inserts a booking in one constraint-guarded statement. A
// concurrent or earlier booking of the same instance yields ErrSlotTaken.
func (s *LedgerService) CreateBooking(ctx context.Context, userID string, slotID int, date time.Time, note AuditNote) (*models.Booking, error) {
	ctx, span := telemetry.Start(ctx, "ledger.create_booking")
	defer span.End()

	booking := &models.Booking{
		ID:             s.newID(),
		UserID:         userID,
		SlotTemplateID: slotID,
		CalendarDate:   date,
		Status:         models.BookingStatusConfirmed,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		if database.IsUniqueViolation(err) {
			s.metrics.RecordBooking(OutcomeSlotTaken)
			return nil, appErrors.WithReasons(appErrors.ErrSlotTaken, []string{models.ReasonSlotTaken})
		}
		span.RecordError(err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	s.afterMutation(ctx, booking, note)
	s.metrics.RecordBooking(OutcomeBooked)
	return booking, nil
}

// CancelBooking deletes a booking. A non-nil requestingUserID restricts the
// delete to that owner. The bool is false when no row matched; the ledger is
// unchanged in that case.
func (s *LedgerService) CancelBooking(ctx context.Context, bookingID string, requestingUserID *string, note AuditNote) (*models.Booking, bool, error) {
	ctx, span := telemetry.Start(ctx, "ledger.cancel_booking")
	defer span.End()

	booking, deleted, err := s.bookings.Delete(ctx, bookingID, requestingUserID)
	if err != nil {
		span.RecordError(err)
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel booking")
	}
	if !deleted {
		return nil, false, nil
	}
	s.afterMutation(ctx, booking, note)
	return booking, true, nil
}

// Get returns a booking or ErrNotFound.
func (s *LedgerService) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

// BookingsFor lists the bookings of one slot instance, possibly empty.
func (s *LedgerService) BookingsFor(ctx context.Context, slotID int, date time.Time) ([]models.Booking, error) {
	bookings, err := s.bookings.ListForSlot(ctx, slotID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

// BookingsForUser lists a user's bookings, newest date first.
func (s *LedgerService) BookingsForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings, err := s.bookings.ListForUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

// ListRange returns bookings with occupants for an inclusive date range.
func (s *LedgerService) ListRange(ctx context.Context, from, to time.Time) ([]models.BookingDetail, error) {
	rows, err := s.bookings.ListRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return rows, nil
}

func (s *LedgerService) afterMutation(ctx context.Context, booking *models.Booking, note AuditNote) {
	if s.cache != nil {
		s.cache.InvalidateWeek(ctx, booking.CalendarDate)
	}
	s.emitAudit(ctx, booking, note)
}

// emitAudit writes synchronously. A failed write never undoes the mutation.
func (s *LedgerService) emitAudit(ctx context.Context, booking *models.Booking, note AuditNote) {
	if s.audit == nil || note.Action == "" {
		return
	}
	if note.Details == "" {
		note.Details = DescribeBooking(booking)
	}
	if err := s.audit.Append(ctx, note.Actor, note.Action, note.Details, s.now()); err != nil {
		s.metrics.RecordAuditFailure()
		s.logger.Warn("failed to write audit entry", zap.String("action", note.Action), zap.String("details", note.Details), zap.Error(err))
	}
}

// DescribeBooking is the default audit detail for a booking.
func DescribeBooking(b *models.Booking) string {
	return fmt.Sprintf("booking %s: slot %d on %s for user %s", b.ID, b.SlotTemplateID, b.CalendarDate.Format(models.DateLayout), b.UserID)
}
