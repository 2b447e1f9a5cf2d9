package notify

import (
	"context"
	"time"

	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/pkg/mq"
)

// Routing keys of published notification commands.
const (
	KeyInviteRequest  = "invite.request"
	KeyInviteCancel   = "invite.cancel"
	KeyAdminBroadcast = "broadcast.admin"
)

// InviteCommand asks an external mailer to deliver an invitation.
type InviteCommand struct {
	Method    models.InviteMethod `json:"method"`
	Recipient models.Recipient    `json:"recipient"`
	Subject   string              `json:"subject"`
	Body      string              `json:"body"`
	ICS       string              `json:"ics"`
	UID       string              `json:"uid"`
}

// BroadcastCommand asks an external mailer to deliver one admin message.
type BroadcastCommand struct {
	Recipient models.Recipient `json:"recipient"`
	Subject   string           `json:"subject"`
	Body      string           `json:"body"`
}

// BrokerDispatcher hands notifications to a message broker. Delivery is
// complete once the broker accepted the command.
type BrokerDispatcher struct {
	publisher mq.Publisher
	directory Directory
	clock     SlotClock
	organizer string
}

// NewBrokerDispatcher wires a broker-backed dispatcher.
func NewBrokerDispatcher(publisher mq.Publisher, directory Directory, clock SlotClock, organizer string) *BrokerDispatcher {
	return &BrokerDispatcher{publisher: publisher, directory: directory, clock: clock, organizer: organizer}
}

// SendInvite publishes an InviteCommand.
func (d *BrokerDispatcher) SendInvite(ctx context.Context, to models.Recipient, slot models.SlotTemplate, date time.Time, method models.InviteMethod) error {
	start, end := d.clock(slot, date)
	subject, body := inviteTemplates(method)
	vars := VarsFor(to.Name, slot, date)
	key := KeyInviteRequest
	if method == models.InviteCancel {
		key = KeyInviteCancel
	}
	return d.publisher.PublishJSON(ctx, key, InviteCommand{
		Method:    method,
		Recipient: to,
		Subject:   Render(subject, vars),
		Body:      Render(body, vars),
		ICS: BuildICS(Invite{
			Organizer: d.organizer, Recipient: to, Slot: slot, Date: date, Start: start, End: end, Method: method,
		}),
		UID: EventUID(slot.ID, date),
	})
}

// SendAdminBroadcast publishes one BroadcastCommand per admin recipient.
func (d *BrokerDispatcher) SendAdminBroadcast(ctx context.Context, msg models.BroadcastMessage) []models.DeliveryResult {
	recipients, err := d.directory.AdminRecipients(ctx)
	if err != nil {
		return []models.DeliveryResult{{Recipient: "*", Channel: "broker", Err: err}}
	}
	results := make([]models.DeliveryResult, 0, len(recipients))
	for _, r := range recipients {
		err := d.publisher.PublishJSON(ctx, KeyAdminBroadcast, BroadcastCommand{Recipient: r, Subject: msg.Subject, Body: msg.Body})
		results = append(results, models.DeliveryResult{Recipient: r.Email, Channel: "broker", Err: err})
	}
	return results
}
