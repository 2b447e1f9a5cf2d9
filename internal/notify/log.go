package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/shift-booking-api/internal/models"
)

// LogDispatcher writes notifications to the log instead of delivering them.
type LogDispatcher struct {
	directory Directory
	logger    *zap.Logger
}

// NewLogDispatcher builds a development dispatcher.
func NewLogDispatcher(directory Directory, logger *zap.Logger) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDispatcher{directory: directory, logger: logger.Named("notify")}
}

// SendInvite logs the rendered invitation.
func (d *LogDispatcher) SendInvite(ctx context.Context, to models.Recipient, slot models.SlotTemplate, date time.Time, method models.InviteMethod) error {
	subject, _ := inviteTemplates(method)
	d.logger.Info("invite",
		zap.String("method", string(method)),
		zap.String("to", to.Email),
		zap.String("subject", Render(subject, VarsFor(to.Name, slot, date))),
		zap.String("uid", EventUID(slot.ID, date)),
	)
	return nil
}

// SendAdminBroadcast logs one line per admin recipient.
func (d *LogDispatcher) SendAdminBroadcast(ctx context.Context, msg models.BroadcastMessage) []models.DeliveryResult {
	recipients, err := d.directory.AdminRecipients(ctx)
	if err != nil {
		return []models.DeliveryResult{{Recipient: "*", Channel: "log", Err: err}}
	}
	results := make([]models.DeliveryResult, 0, len(recipients))
	for _, r := range recipients {
		d.logger.Info("admin broadcast", zap.String("to", r.Email), zap.String("subject", msg.Subject))
		results = append(results, models.DeliveryResult{Recipient: r.Email, Channel: "log"})
	}
	return results
}
