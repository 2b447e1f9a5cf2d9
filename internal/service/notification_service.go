package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/shift-booking-api/internal/models"
)

// Dispatcher is the outbound notification collaborator.
type Dispatcher interface {
	SendInvite(ctx context.Context, to models.Recipient, slot models.SlotTemplate, date time.Time, method models.InviteMethod) error
	SendAdminBroadcast(ctx context.Context, msg models.BroadcastMessage) []models.DeliveryResult
}

// NotificationService is the soft-failure boundary around the dispatcher.
// Every call is bounded by a timeout and every failure, including a panic in
// the transport, comes back as a SoftFailure.
type NotificationService struct {
	dispatcher Dispatcher
	timeout    time.Duration
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewNotificationService wraps dispatcher.
func NewNotificationService(dispatcher Dispatcher, timeout time.Duration, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, timeout: timeout, metrics: metrics, logger: logger}
}

// Invite sends a REQUEST or CANCEL invitation.
func (s *NotificationService) Invite(ctx context.Context, to models.Recipient, slot models.SlotTemplate, date time.Time, method models.InviteMethod) *SoftFailure {
	step := StepInviteRequest
	if method == models.InviteCancel {
		step = StepInviteCancel
	}
	if s == nil || s.dispatcher == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	err := s.guard(func() error {
		return s.dispatcher.SendInvite(ctx, to, slot, date, method)
	})
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		return s.fail(step, fmt.Sprintf("invite to %s failed: %v", to.Email, err),
			zap.String("recipient", to.Email), zap.Int("slot_template_id", slot.ID), zap.Time("date", date), zap.Error(err))
	}
	return nil
}

// Broadcast delivers msg to all admin recipients and returns one soft
// failure per failed delivery.
func (s *NotificationService) Broadcast(ctx context.Context, msg models.BroadcastMessage) ([]models.DeliveryResult, []SoftFailure) {
	if s == nil || s.dispatcher == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	var results []models.DeliveryResult
	err := s.guard(func() error {
		results = s.dispatcher.SendAdminBroadcast(ctx, msg)
		return nil
	})
	if err != nil {
		return nil, []SoftFailure{*s.fail(StepAdminBroadcast, "admin broadcast failed: "+err.Error(), zap.Error(err))}
	}

	var failures []SoftFailure
	var failed []string
	for _, r := range results {
		if r.OK() {
			continue
		}
		failed = append(failed, r.Recipient)
		failures = append(failures, *s.fail(StepAdminBroadcast, fmt.Sprintf("broadcast to %s via %s failed: %v", r.Recipient, r.Channel, r.Err),
			zap.String("recipient", r.Recipient), zap.String("channel", r.Channel), zap.Error(r.Err)))
	}
	if len(results) == 0 {
		s.logger.Warn("admin broadcast had no recipients", zap.String("subject", msg.Subject))
	} else if len(failed) > 0 {
		s.logger.Warn("admin broadcast partially failed", zap.String("failed", strings.Join(failed, ",")))
	}
	return results, failures
}

func (s *NotificationService) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatcher panic: %v", r)
		}
	}()
	return fn()
}

func (s *NotificationService) fail(step, message string, fields ...zap.Field) *SoftFailure {
	s.metrics.RecordNotificationFailure(step)
	s.logger.Warn("notification step failed", append([]zap.Field{zap.String("step", step)}, fields...)...)
	return &SoftFailure{Kind: SoftFailureNotification, Step: step, Message: message}
}
