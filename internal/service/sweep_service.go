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
	"github.com/noah-isme/shift-booking-api/pkg/jobs"
	"github.com/noah-isme/shift-booking-api/pkg/telemetry"
)

// JobUnfilledWarning is the job type carrying one PendingWarning.
const JobUnfilledWarning = "unfilled_warning"

type dedupStore interface {
	ClaimIfUnbooked(ctx context.Context, slotID int, date time.Time, kind models.NotificationType, sentAt time.Time) (bool, error)
}

type templateLister interface {
	All() []models.SlotTemplate
}

type broadcaster interface {
	Broadcast(ctx context.Context, msg models.BroadcastMessage) ([]models.DeliveryResult, []SoftFailure)
}

type jobQueue interface {
	Enqueue(job jobs.Job) error
}

// SweepReport summarises one sweep run.
type SweepReport struct {
	TargetDate time.Time               `json:"target_date"`
	Due        []models.PendingWarning `json:"due"`
	Queued     int                     `json:"queued"`
	Delivered  int                     `json:"delivered"`
	Warnings   []SoftFailure           `json:"warnings,omitempty"`
}

// SweepService finds unfilled slot instances at the warning horizon and
// alerts admins at most once per (slot, date, type).
type SweepService struct {
	rules    *calendar.Rules
	catalog  templateLister
	dedup    dedupStore
	notifier broadcaster
	audit    AuditSink
	queue    jobQueue
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweepService builds the sweep. now defaults to time.Now.
func NewSweepService(rules *calendar.Rules, catalog templateLister, dedup dedupStore, notifier broadcaster, audit AuditSink, metrics *MetricsService, logger *zap.Logger, now func() time.Time) *SweepService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &SweepService{
		rules:    rules,
		catalog:  catalog,
		dedup:    dedup,
		notifier: notifier,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		now:      now,
	}
}

// UseQueue routes warning delivery through a background queue. Without one,
// RunSweep delivers synchronously.
func (s *SweepService) UseQueue(q jobQueue) {
	s.queue = q
}

// CheckDueWarnings claims the dedup key of every unbooked instance exactly
// horizonDays ahead and returns the claimed ones. The claim and the booking
// check are one statement, so a second run for the same date returns nothing.
func (s *SweepService) CheckDueWarnings(ctx context.Context, horizonDays int) ([]models.PendingWarning, error) {
	ctx, span := telemetry.Start(ctx, "sweep.check_due_warnings")
	defer span.End()

	target := s.targetDate(horizonDays)
	due := []models.PendingWarning{}
	if !s.rules.IsBookable(target) {
		return due, nil
	}

	var errs []error
	sentAt := s.now().UTC()
	for _, tpl := range s.catalog.All() {
		if models.WeekdayOf(target) != tpl.Weekday {
			continue
		}
		claimed, err := s.dedup.ClaimIfUnbooked(ctx, tpl.ID, target, models.NotificationWarningUnfilled, sentAt)
		if err != nil {
			s.logger.Error("failed to claim warning dedup key", zap.Int("slot_template_id", tpl.ID), zap.Time("date", target), zap.Error(err))
			errs = append(errs, fmt.Errorf("slot %d: %w", tpl.ID, err))
			continue
		}
		if claimed {
			due = append(due, models.PendingWarning{Slot: tpl, Date: target, Type: models.NotificationWarningUnfilled})
		}
	}
	if len(errs) > 0 {
		span.RecordError(errors.Join(errs...))
		return due, appErrors.Wrap(errors.Join(errs...), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check due warnings")
	}
	return due, nil
}

// RunSweep is the single entry point for both the daily trigger and the
// manual admin trigger. Warnings that were claimed are dispatched even when
// other claims failed.
func (s *SweepService) RunSweep(ctx context.Context, horizonDays int) (*SweepReport, error) {
	due, err := s.CheckDueWarnings(ctx, horizonDays)
	report := &SweepReport{TargetDate: s.targetDate(horizonDays), Due: due}

	for _, w := range due {
		if s.queue != nil {
			job := jobs.Job{ID: "warning:" + models.SlotInstance{SlotTemplateID: w.Slot.ID, Date: w.Date}.Key(), Type: JobUnfilledWarning, Payload: w}
			qerr := s.queue.Enqueue(job)
			if qerr == nil {
				report.Queued++
				continue
			}
			s.logger.Warn("warning queue rejected job, delivering inline", zap.String("job_id", job.ID), zap.Error(qerr))
		}
		failures, derr := s.deliver(ctx, w)
		report.Warnings = append(report.Warnings, failures...)
		if derr == nil {
			report.Delivered++
		}
	}

	s.logger.Info("sweep finished",
		zap.Time("target_date", report.TargetDate),
		zap.Int("due", len(due)),
		zap.Int("queued", report.Queued),
		zap.Int("delivered", report.Delivered),
	)
	return report, err
}

// HandleJob delivers a queued warning. An error asks the queue to retry.
func (s *SweepService) HandleJob(ctx context.Context, job jobs.Job) error {
	w, ok := job.Payload.(models.PendingWarning)
	if !ok {
		s.logger.Error("unexpected job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	_, err := s.deliver(ctx, w)
	return err
}

// GiveUp is the queue's OnGiveUp hook.
func (s *SweepService) GiveUp(job jobs.Job, err error) {
	s.metrics.RecordJobAbandoned(job.Type)
	s.logger.Error("unfilled warning abandoned; dedup key stays claimed", zap.String("job_id", job.ID), zap.Error(err))
}

// deliver broadcasts one warning. It fails only when no recipient was reached.
func (s *SweepService) deliver(ctx context.Context, w models.PendingWarning) ([]SoftFailure, error) {
	msg := notify.Message(notify.UnfilledWarningSubject, notify.UnfilledWarningBody, notify.VarsFor("", w.Slot, w.Date))
	results, failures := s.notifier.Broadcast(ctx, msg)

	delivered := 0
	for _, r := range results {
		if r.OK() {
			delivered++
		}
	}
	if delivered == 0 {
		return failures, fmt.Errorf("warning for slot %d on %s reached no recipient", w.Slot.ID, w.Date.Format(models.DateLayout))
	}

	s.metrics.RecordSweepWarnings(1)
	if s.audit != nil {
		details := fmt.Sprintf("unfilled warning for %s on %s sent to %d recipient(s)", w.Slot.Description(), w.Date.Format(models.DateLayout), delivered)
		if err := s.audit.Append(ctx, nil, models.AuditSweepWarningSent, details, s.now()); err != nil {
			s.metrics.RecordAuditFailure()
			s.logger.Warn("failed to write audit entry", zap.String("action", models.AuditSweepWarningSent), zap.Error(err))
		}
	}
	return failures, nil
}

func (s *SweepService) targetDate(horizonDays int) time.Time {
	return s.rules.Today(s.now()).AddDate(0, 0, horizonDays)
}
