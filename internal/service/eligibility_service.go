package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/shift-booking-api/internal/calendar"
	"github.com/noah-isme/shift-booking-api/internal/models"
)

// EligibilityService decides whether a slot instance may be booked. It never
// mutates anything and is safe for previews.
type EligibilityService struct {
	rules   *calendar.Rules
	catalog *calendar.Catalog
	now     func() time.Time
}

// NewEligibilityService builds the gate. now defaults to time.Now.
func NewEligibilityService(rules *calendar.Rules, catalog *calendar.Catalog, now func() time.Time) *EligibilityService {
	if now == nil {
		now = time.Now
	}
	return &EligibilityService{rules: rules, catalog: catalog, now: now}
}

// ValidateBookingRequest returns every violated rule; an empty list means
// eligible. A zero slotID counts as missing.
func (s *EligibilityService) ValidateBookingRequest(userID string, slotID int, rawDate string) []models.ValidationReason {
	_, _, reasons := s.check(userID, slotID, rawDate)
	return reasons
}

// check also returns the parsed date and template for callers that go on to
// mutate the ledger.
func (s *EligibilityService) check(userID string, slotID int, rawDate string) (time.Time, models.SlotTemplate, []models.ValidationReason) {
	reasons := []models.ValidationReason{}
	add := func(code, format string, args ...interface{}) {
		reasons = append(reasons, models.ValidationReason{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(userID) == "" {
		add(models.ReasonMissingUser, "user is required")
	}
	if slotID == 0 {
		add(models.ReasonMissingSlot, "slot is required")
	}

	var date time.Time
	dateOK := false
	rawDate = strings.TrimSpace(rawDate)
	if rawDate == "" {
		add(models.ReasonMissingDate, "date is required")
	} else if parsed, err := calendar.ParseDate(rawDate); err != nil {
		add(models.ReasonInvalidDate, "%q is not a valid date (expected YYYY-MM-DD)", rawDate)
	} else {
		date, dateOK = parsed, true
	}

	if dateOK {
		reasons = append(reasons, s.rules.Reasons(date)...)
		if date.Before(s.rules.Today(s.now())) {
			add(models.ReasonPastDate, "%s is in the past", rawDate)
		}
	}

	var tpl models.SlotTemplate
	tplOK := false
	if slotID != 0 {
		if tpl, tplOK = s.catalog.Get(slotID); !tplOK {
			add(models.ReasonUnknownSlot, "slot %d does not exist", slotID)
		}
	}

	if dateOK && tplOK && models.WeekdayOf(date) != tpl.Weekday {
		add(models.ReasonWeekdayMismatch, "slot %d runs on %s but %s is a %s", slotID, tpl.Weekday.Name(), rawDate, date.Weekday())
	}
	return date, tpl, reasons
}
