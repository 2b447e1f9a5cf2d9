package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/shift-booking-api/internal/calendar"
	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/internal/notify"
	appErrors "github.com/noah-isme/shift-booking-api/pkg/errors"
	"github.com/noah-isme/shift-booking-api/pkg/telemetry"
)

type ledger interface {
	CreateBooking(ctx context.Context, userID string, slotID int, date time.Time, note AuditNote) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string, requestingUserID *string, note AuditNote) (*models.Booking, bool, error)
	BookingsFor(ctx context.Context, slotID int, date time.Time) ([]models.Booking, error)
	Get(ctx context.Context, bookingID string) (*models.Booking, error)
}

type notifier interface {
	Invite(ctx context.Context, to models.Recipient, slot models.SlotTemplate, date time.Time, method models.InviteMethod) *SoftFailure
	Broadcast(ctx context.Context, msg models.BroadcastMessage) ([]models.DeliveryResult, []SoftFailure)
}

type favoriteCleaner interface {
	RemoveMatching(ctx context.Context, userID string, slotID int, date time.Time) *SoftFailure
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// BookRequest asks for one slot instance.
type BookRequest struct {
	UserID string
	SlotID int
	Date   string
}

// CancelRequest is a self-service cancel by the booking owner.
type CancelRequest struct {
	BookingID string
	UserID    string
}

// AdminCancelRequest deletes a booking regardless of owner.
type AdminCancelRequest struct {
	BookingID string
	ActorID   string
}

// RescheduleRequest moves a booking. Zero fields keep the current value.
type RescheduleRequest struct {
	BookingID string
	ActorID   string
	UserID    string
	SlotID    int
	Date      string
}

// WorkflowService sequences ledger mutations with their best-effort side
// channels. Ledger steps succeed or abort cleanly; notification and watchlist
// steps are reported as warnings and never reverse a committed mutation.
type WorkflowService struct {
	gate      *EligibilityService
	ledger    ledger
	catalog   slotLookup
	favorites favoriteCleaner
	notifier  notifier
	users     userFinder
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewWorkflowService wires the orchestrator. favorites and notifier may be nil.
func NewWorkflowService(
	gate *EligibilityService,
	ledger ledger,
	catalog slotLookup,
	favorites favoriteCleaner,
	notifier notifier,
	users userFinder,
	metrics *MetricsService,
	logger *zap.Logger,
) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{
		gate:      gate,
		ledger:    ledger,
		catalog:   catalog,
		favorites: favorites,
		notifier:  notifier,
		users:     users,
		metrics:   metrics,
		logger:    logger,
	}
}

// Validate previews eligibility without mutating anything.
func (s *WorkflowService) Validate(req BookRequest) []models.ValidationReason {
	return s.gate.ValidateBookingRequest(req.UserID, req.SlotID, req.Date)
}

// Book runs gate, ledger insert, favorite cleanup and the REQUEST invite.
func (s *WorkflowService) Book(ctx context.Context, req BookRequest) (*WorkflowResult, error) {
	ctx, span := telemetry.Start(ctx, "workflow.book")
	defer span.End()

	date, tpl, reasons := s.gate.check(req.UserID, req.SlotID, req.Date)
	if len(reasons) > 0 {
		s.metrics.RecordBooking(OutcomeRejected)
		return rejected(appErrors.ErrValidation, reasons...), nil
	}

	booking, err := s.ledger.CreateBooking(ctx, req.UserID, tpl.ID, date, AuditNote{
		Actor:  &req.UserID,
		Action: models.AuditBookingCreated,
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrSlotTaken) {
			return rejected(appErrors.ErrSlotTaken, slotTakenReason(tpl, date)), nil
		}
		return nil, err
	}

	result := &WorkflowResult{Success: true, Booking: booking}
	if s.favorites != nil {
		result.warn(s.favorites.RemoveMatching(ctx, req.UserID, tpl.ID, date))
	}
	s.invite(ctx, result, booking.UserID, tpl, date, models.InviteRequest)

	s.logger.Info("booking confirmed",
		zap.String("booking_id", booking.ID),
		zap.String("user_id", booking.UserID),
		zap.Int("slot_template_id", tpl.ID),
		zap.String("date", req.Date),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

// Cancel deletes the caller's own booking and sends a CANCEL invite. Nothing
// is sent when the delete matched no row.
func (s *WorkflowService) Cancel(ctx context.Context, req CancelRequest) (*WorkflowResult, error) {
	ctx, span := telemetry.Start(ctx, "workflow.cancel")
	defer span.End()

	result, tpl, err := s.cancelOwned(ctx, req, models.AuditBookingCancelled)
	if err != nil || !result.Success {
		return result, err
	}
	s.metrics.RecordBooking(OutcomeCancelled)
	s.invite(ctx, result, result.Booking.UserID, tpl, result.Booking.CalendarDate, models.InviteCancel)
	return result, nil
}

// ReportSick cancels like Cancel and alerts every admin recipient that the
// slot is open again. A failed alert leaves the slot vacated.
func (s *WorkflowService) ReportSick(ctx context.Context, req CancelRequest) (*WorkflowResult, error) {
	ctx, span := telemetry.Start(ctx, "workflow.report_sick")
	defer span.End()

	result, tpl, err := s.cancelOwned(ctx, req, models.AuditSickReported)
	if err != nil || !result.Success {
		return result, err
	}
	s.metrics.RecordBooking(OutcomeSick)

	booking := result.Booking
	recipient, failure := s.recipient(ctx, booking.UserID)
	result.warn(failure)
	if failure == nil {
		result.warn(s.notify(ctx, recipient, tpl, booking.CalendarDate, models.InviteCancel))
	}

	if s.notifier != nil {
		name := recipient.Name
		if name == "" {
			name = booking.UserID
		}
		msg := notify.Message(notify.SickReportSubject, notify.SickReportBody, notify.VarsFor(name, tpl, booking.CalendarDate))
		_, failures := s.notifier.Broadcast(ctx, msg)
		result.Warnings = append(result.Warnings, failures...)
	}

	s.logger.Info("sick report recorded",
		zap.String("booking_id", booking.ID),
		zap.String("user_id", booking.UserID),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

// AdminCancel deletes any booking and sends a CANCEL invite to its occupant.
func (s *WorkflowService) AdminCancel(ctx context.Context, req AdminCancelRequest) (*WorkflowResult, error) {
	ctx, span := telemetry.Start(ctx, "workflow.admin_cancel")
	defer span.End()

	booking, ok, err := s.ledger.CancelBooking(ctx, req.BookingID, nil, AuditNote{
		Actor:  &req.ActorID,
		Action: models.AuditAdminCancelled,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return rejected(appErrors.ErrNotFound, notFoundReason(req.BookingID)), nil
	}
	s.metrics.RecordBooking(OutcomeCancelled)

	result := &WorkflowResult{Success: true, Booking: booking}
	s.invite(ctx, result, booking.UserID, s.template(booking.SlotTemplateID), booking.CalendarDate, models.InviteCancel)
	return result, nil
}

// AdminReschedule moves a booking to a new (user, slot, date) triple. The old
// booking is deleted before the new one is inserted. When the insert fails the
// slot stays vacant; no compensating re-insert is attempted and the result
// carries a slot_vacated reason.
func (s *WorkflowService) AdminReschedule(ctx context.Context, req RescheduleRequest) (*WorkflowResult, error) {
	ctx, span := telemetry.Start(ctx, "workflow.admin_reschedule")
	defer span.End()

	old, err := s.ledger.Get(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return rejected(appErrors.ErrNotFound, notFoundReason(req.BookingID)), nil
		}
		return nil, err
	}

	userID := req.UserID
	if userID == "" {
		userID = old.UserID
	}
	slotID := req.SlotID
	if slotID == 0 {
		slotID = old.SlotTemplateID
	}
	rawDate := req.Date
	if rawDate == "" {
		rawDate = old.CalendarDate.Format(models.DateLayout)
	}

	date, tpl, reasons := s.gate.check(userID, slotID, rawDate)
	if len(reasons) > 0 {
		return rejected(appErrors.ErrValidation, reasons...), nil
	}
	sameInstance := tpl.ID == old.SlotTemplateID && date.Equal(old.CalendarDate)
	if sameInstance && userID == old.UserID {
		return rejected(appErrors.ErrValidation, models.ValidationReason{
			Code:    models.ReasonSlotTaken,
			Message: "booking already matches the requested slot, date and user",
		}), nil
	}
	if !sameInstance {
		// Early rejection only; the unique index still decides the insert.
		occupied, err := s.ledger.BookingsFor(ctx, tpl.ID, date)
		if err != nil {
			return nil, err
		}
		if len(occupied) > 0 {
			return rejected(appErrors.ErrSlotTaken, slotTakenReason(tpl, date)), nil
		}
	}

	oldTpl := s.template(old.SlotTemplateID)
	result := &WorkflowResult{Previous: old}
	s.invite(ctx, result, old.UserID, oldTpl, old.CalendarDate, models.InviteCancel)

	_, ok, err := s.ledger.CancelBooking(ctx, old.ID, nil, AuditNote{
		Actor:  &req.ActorID,
		Action: models.AuditAdminRescheduleVacated,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		res := rejected(appErrors.ErrNotFound, notFoundReason(old.ID))
		res.Warnings = result.Warnings
		return res, nil
	}

	details := fmt.Sprintf("rescheduled booking %s: user %s slot %d on %s -> user %s slot %d on %s",
		old.ID, old.UserID, old.SlotTemplateID, old.CalendarDate.Format(models.DateLayout),
		userID, tpl.ID, date.Format(models.DateLayout))
	booking, err := s.ledger.CreateBooking(ctx, userID, tpl.ID, date, AuditNote{
		Actor:   &req.ActorID,
		Action:  models.AuditAdminRescheduled,
		Details: details,
	})
	if err != nil {
		s.metrics.RecordBooking(OutcomeVacated)
		s.logger.Error("reschedule left slot vacant",
			zap.String("booking_id", old.ID),
			zap.Int("old_slot_template_id", old.SlotTemplateID),
			zap.Time("old_date", old.CalendarDate),
			zap.Int("slot_template_id", tpl.ID),
			zap.Time("date", date),
			zap.Error(err),
		)
		return s.vacated(result, old, tpl, date, err), nil
	}
	s.metrics.RecordBooking(OutcomeRescheduled)

	result.Success = true
	result.Booking = booking
	s.invite(ctx, result, booking.UserID, tpl, date, models.InviteRequest)
	return result, nil
}

func (s *WorkflowService) cancelOwned(ctx context.Context, req CancelRequest, action string) (*WorkflowResult, models.SlotTemplate, error) {
	booking, ok, err := s.ledger.CancelBooking(ctx, req.BookingID, &req.UserID, AuditNote{
		Actor:  &req.UserID,
		Action: action,
	})
	if err != nil {
		return nil, models.SlotTemplate{}, err
	}
	if ok {
		return &WorkflowResult{Success: true, Booking: booking}, s.template(booking.SlotTemplateID), nil
	}

	// Nothing was deleted; tell a foreign booking apart from a missing one.
	existing, err := s.ledger.Get(ctx, req.BookingID)
	switch {
	case err == nil && existing.UserID != req.UserID:
		return rejected(appErrors.ErrNotOwner, models.ValidationReason{
			Code:    models.ReasonNotOwner,
			Message: fmt.Sprintf("booking %s belongs to another user", req.BookingID),
		}), models.SlotTemplate{}, nil
	case err == nil, errors.Is(err, appErrors.ErrNotFound):
		return rejected(appErrors.ErrNotFound, notFoundReason(req.BookingID)), models.SlotTemplate{}, nil
	default:
		return nil, models.SlotTemplate{}, err
	}
}

func (s *WorkflowService) vacated(result *WorkflowResult, old *models.Booking, tpl models.SlotTemplate, date time.Time, cause error) *WorkflowResult {
	reasons := []models.ValidationReason{{
		Code: models.ReasonSlotVacated,
		Message: fmt.Sprintf("booking %s was removed but the new booking for %s on %s could not be created; the slot is vacant",
			old.ID, tpl.Description(), date.Format(models.DateLayout)),
	}}
	base := appErrors.ErrInternal
	if errors.Is(cause, appErrors.ErrSlotTaken) {
		base = appErrors.ErrSlotTaken
		reasons = append(reasons, slotTakenReason(tpl, date))
	}
	res := rejected(base, reasons...)
	res.Previous = result.Previous
	res.Warnings = result.Warnings
	return res
}

// invite resolves the recipient and sends one invitation, collecting any
// soft failure on result.
func (s *WorkflowService) invite(ctx context.Context, result *WorkflowResult, userID string, tpl models.SlotTemplate, date time.Time, method models.InviteMethod) {
	if s.notifier == nil {
		return
	}
	to, failure := s.recipient(ctx, userID)
	if failure != nil {
		result.warn(failure)
		return
	}
	result.warn(s.notify(ctx, to, tpl, date, method))
}

func (s *WorkflowService) notify(ctx context.Context, to models.Recipient, tpl models.SlotTemplate, date time.Time, method models.InviteMethod) *SoftFailure {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.Invite(ctx, to, tpl, date, method)
}

func (s *WorkflowService) recipient(ctx context.Context, userID string) (models.Recipient, *SoftFailure) {
	if s.users == nil {
		return models.Recipient{UserID: userID}, nil
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to resolve notification recipient", zap.String("user_id", userID), zap.Error(err))
		return models.Recipient{UserID: userID}, &SoftFailure{
			Kind:    SoftFailureNotification,
			Step:    StepRecipient,
			Message: fmt.Sprintf("could not resolve user %s: %v", userID, err),
		}
	}
	return user.Recipient(), nil
}

func (s *WorkflowService) template(id int) models.SlotTemplate {
	if tpl, ok := s.catalog.Get(id); ok {
		return tpl
	}
	return models.SlotTemplate{ID: id}
}

func slotTakenReason(tpl models.SlotTemplate, date time.Time) models.ValidationReason {
	return models.ValidationReason{
		Code:    models.ReasonSlotTaken,
		Message: fmt.Sprintf("%s on %s is already taken", tpl.Description(), calendar.Civil(date).Format(models.DateLayout)),
	}
}

func notFoundReason(id string) models.ValidationReason {
	return models.ValidationReason{Code: models.ReasonNotFound, Message: fmt.Sprintf("booking %s not found", id)}
}
