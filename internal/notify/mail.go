package notify

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/shift-booking-api/internal/models"
)

// SlotClock turns a template and civil date into absolute start and end times.
type SlotClock func(slot models.SlotTemplate, date time.Time) (time.Time, time.Time)

// MailDispatcher sends invitations as mail with an iCalendar attachment and
// mirrors admin broadcasts to SMS when a gateway is configured.
type MailDispatcher struct {
	mailer    Mailer
	sms       SMSSender
	directory Directory
	clock     SlotClock
	organizer string
}

// NewMailDispatcher wires the dispatcher. sms may be nil.
func NewMailDispatcher(mailer Mailer, sms SMSSender, directory Directory, clock SlotClock, organizer string) *MailDispatcher {
	return &MailDispatcher{mailer: mailer, sms: sms, directory: directory, clock: clock, organizer: organizer}
}

// SendInvite mails a REQUEST or CANCEL invitation.
func (d *MailDispatcher) SendInvite(ctx context.Context, to models.Recipient, slot models.SlotTemplate, date time.Time, method models.InviteMethod) error {
	if to.Email == "" {
		return errors.New("recipient has no email address")
	}
	start, end := d.clock(slot, date)
	payload := BuildICS(Invite{
		Organizer: d.organizer,
		Recipient: to,
		Slot:      slot,
		Date:      date,
		Start:     start,
		End:       end,
		Method:    method,
	})
	subject, body := inviteTemplates(method)
	vars := VarsFor(to.Name, slot, date)
	return d.mailer.Send(ctx, to.Email, Render(subject, vars), Render(body, vars), Attachment{
		ContentType: "text/calendar; charset=utf-8; method=" + string(method),
		Filename:    "invite.ics",
		Body:        []byte(payload),
	})
}

// SendAdminBroadcast mails every admin recipient, and texts those with a phone.
func (d *MailDispatcher) SendAdminBroadcast(ctx context.Context, msg models.BroadcastMessage) []models.DeliveryResult {
	recipients, err := d.directory.AdminRecipients(ctx)
	if err != nil {
		return []models.DeliveryResult{{Recipient: "*", Channel: "email", Err: err}}
	}
	var results []models.DeliveryResult
	for _, r := range recipients {
		err := d.mailer.Send(ctx, r.Email, msg.Subject, msg.Body)
		results = append(results, models.DeliveryResult{Recipient: r.Email, Channel: "email", Err: err})
		if d.sms != nil && r.Phone != "" {
			err := d.sms.Send(ctx, r.Phone, msg.Subject)
			results = append(results, models.DeliveryResult{Recipient: r.Phone, Channel: "sms", Err: err})
		}
	}
	return results
}
