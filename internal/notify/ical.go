package notify

import (
	"fmt"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/noah-isme/shift-booking-api/internal/models"
)

// Invite describes one calendar invitation for a slot instance.
type Invite struct {
	Organizer string
	Recipient models.Recipient
	Slot      models.SlotTemplate
	Date      time.Time
	Start     time.Time
	End       time.Time
	Method    models.InviteMethod
	Stamp     time.Time
}

// EventUID is stable per slot instance so a CANCEL replaces the earlier REQUEST.
func EventUID(slotID int, date time.Time) string {
	return fmt.Sprintf("slot-%d-%s@shift-booking", slotID, date.Format("20060102"))
}

// sequenceEpoch anchors invite sequence numbers so they fit in 32 bits.
var sequenceEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Sequence orders revisions of one event UID. It grows with the stamp, so a
// REQUEST sent after a CANCEL of the same instance supersedes it.
func Sequence(stamp time.Time) int64 {
	seq := int64(stamp.Sub(sequenceEpoch) / time.Second)
	if seq < 0 {
		return 0
	}
	return seq
}

// BuildICS renders the invitation as an iCalendar document.
func BuildICS(inv Invite) string {
	cal := ics.NewCalendar()
	cal.SetProductId("-//shift-booking//invites//EN")
	cal.SetVersion("2.0")
	if inv.Method == models.InviteCancel {
		cal.SetMethod(ics.MethodCancel)
	} else {
		cal.SetMethod(ics.MethodRequest)
	}

	event := cal.AddEvent(EventUID(inv.Slot.ID, inv.Date))
	stamp := inv.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	event.SetDtStampTime(stamp.UTC())
	event.SetProperty(ics.ComponentPropertySequence, strconv.FormatInt(Sequence(stamp), 10))
	event.SetStartAt(inv.Start.UTC())
	event.SetEndAt(inv.End.UTC())
	event.SetSummary(inv.Slot.Description())
	event.SetOrganizer("mailto:" + inv.Organizer)
	event.AddAttendee("mailto:"+inv.Recipient.Email,
		ics.CalendarUserTypeIndividual,
		ics.ParticipationRoleReqParticipant,
		ics.WithCN(inv.Recipient.Name),
	)
	if inv.Method == models.InviteCancel {
		event.SetStatus(ics.ObjectStatusCancelled)
	} else {
		event.SetStatus(ics.ObjectStatusConfirmed)
	}
	return cal.Serialize()
}
