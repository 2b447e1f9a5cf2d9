// Package notify delivers invitations and admin broadcasts over the
// configured transport.
package notify

import (
	"strings"
	"time"

	"github.com/noah-isme/shift-booking-api/internal/models"
)

// Stored message templates. Placeholders are {name}, {date} and {slot_description}.
const (
	InviteRequestSubject = "Shift confirmed: {slot_description} on {date}"
	InviteRequestBody    = "Hello {name},\n\nyou are booked for {slot_description} on {date}. The attached invitation adds it to your calendar."
	InviteCancelSubject  = "Shift cancelled: {slot_description} on {date}"
	InviteCancelBody     = "Hello {name},\n\nyour booking for {slot_description} on {date} was cancelled. The attached update removes it from your calendar."

	SickReportSubject = "Sick report: {slot_description} on {date} is open"
	SickReportBody    = "{name} reported sick. The shift {slot_description} on {date} is open again and needs a replacement."

	UnfilledWarningSubject = "Unfilled shift: {slot_description} on {date}"
	UnfilledWarningBody    = "Nobody has booked {slot_description} on {date} yet. Please find someone to cover it."
)

// Vars is the variable set every template is rendered against.
type Vars struct {
	Name            string
	Date            time.Time
	SlotDescription string
}

// VarsFor builds the variables for a slot instance and person.
func VarsFor(name string, slot models.SlotTemplate, date time.Time) Vars {
	return Vars{Name: name, Date: date, SlotDescription: slot.Description()}
}

// Render substitutes the known placeholders in tpl. Unknown placeholders are
// left untouched.
func Render(tpl string, vars Vars) string {
	date := ""
	if !vars.Date.IsZero() {
		date = vars.Date.Format(models.DateLayout)
	}
	return strings.NewReplacer(
		"{name}", vars.Name,
		"{date}", date,
		"{slot_description}", vars.SlotDescription,
	).Replace(tpl)
}

// Message renders a subject/body template pair into a broadcast.
func Message(subject, body string, vars Vars) models.BroadcastMessage {
	return models.BroadcastMessage{Subject: Render(subject, vars), Body: Render(body, vars)}
}

func inviteTemplates(method models.InviteMethod) (string, string) {
	if method == models.InviteCancel {
		return InviteCancelSubject, InviteCancelBody
	}
	return InviteRequestSubject, InviteRequestBody
}
