package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/pkg/config"
	"github.com/noah-isme/shift-booking-api/pkg/mq"
)

// Dispatcher is implemented by every transport.
type Dispatcher interface {
	SendInvite(ctx context.Context, to models.Recipient, slot models.SlotTemplate, date time.Time, method models.InviteMethod) error
	SendAdminBroadcast(ctx context.Context, msg models.BroadcastMessage) []models.DeliveryResult
}

// New selects the transport named by cfg.Transport. The returned close
// function releases broker connections.
func New(cfg config.NotifyConfig, directory Directory, clock SlotClock, logger *zap.Logger) (Dispatcher, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Transport {
	case "", config.NotifyTransportLog:
		return NewLogDispatcher(directory, logger), noop, nil
	case config.NotifyTransportSMTP:
		mailer := NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
		var sms SMSSender
		if w := NewWebhookSMS(cfg.SMSWebhookURL, cfg.SMSWebhookToken); w != nil {
			sms = w
		}
		return NewMailDispatcher(mailer, sms, directory, clock, cfg.Organizer), noop, nil
	case config.NotifyTransportAMQP:
		pub, err := mq.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, nil, err
		}
		return NewBrokerDispatcher(pub, directory, clock, cfg.Organizer), pub.Close, nil
	case config.NotifyTransportKafka:
		pub, err := mq.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		return NewBrokerDispatcher(pub, directory, clock, cfg.Organizer), pub.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown notification transport %q", cfg.Transport)
	}
}
