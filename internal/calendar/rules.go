// Package calendar evaluates the static calendar rules that decide whether a
// slot instance may be booked. Every function is pure given its configuration.
package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/pkg/config"
)

// Date builds a civil date. Civil dates are midnight UTC so that they compare
// and round-trip through DATE columns without timezone drift.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Civil drops the clock part of t, keeping the wall date in t's location.
func Civil(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}

// WeekStart returns the ISO Monday of the week containing date.
func WeekStart(date time.Time) time.Time {
	d := Civil(date)
	return d.AddDate(0, 0, -models.WeekdayOf(d).Offset())
}

// SlotDate maps an ISO week's Monday and a weekday to the date in that week.
func SlotDate(weekStart time.Time, weekday models.Weekday) time.Time {
	return Civil(weekStart).AddDate(0, 0, weekday.Offset())
}

// Rules holds the holiday list and seasonal closure window.
type Rules struct {
	loc         *time.Location
	holidays    map[string]string
	closedStart config.MonthDay
	closedEnd   config.MonthDay
	closedName  string
}

// NewRules validates the calendar configuration. An empty holiday list selects
// the built-in national holidays.
func NewRules(cfg config.CalendarConfig) (*Rules, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	if err := validMonthDay(cfg.ClosedStart); err != nil {
		return nil, fmt.Errorf("closed period start: %w", err)
	}
	if err := validMonthDay(cfg.ClosedEnd); err != nil {
		return nil, fmt.Errorf("closed period end: %w", err)
	}

	r := &Rules{
		loc:         loc,
		closedStart: cfg.ClosedStart,
		closedEnd:   cfg.ClosedEnd,
		closedName:  cfg.ClosedName,
	}
	if len(cfg.Holidays) > 0 {
		r.holidays = make(map[string]string, len(cfg.Holidays))
		for _, h := range cfg.Holidays {
			d, err := ParseDate(h.Date)
			if err != nil {
				return nil, err
			}
			r.holidays[d.Format(models.DateLayout)] = h.Name
		}
	}
	if r.closedName == "" {
		r.closedName = "closed period"
	}
	return r, nil
}

func validMonthDay(md config.MonthDay) error {
	if md.Month < time.January || md.Month > time.December {
		return fmt.Errorf("month %d out of range", md.Month)
	}
	probe := time.Date(2024, md.Month, md.Day, 0, 0, 0, 0, time.UTC)
	if md.Day < 1 || probe.Month() != md.Month {
		return fmt.Errorf("day %d out of range for %s", md.Day, md.Month)
	}
	return nil
}

// Location is the timezone civil dates are evaluated in.
func (r *Rules) Location() *time.Location {
	return r.loc
}

// Today is the server-local civil date at now.
func (r *Rules) Today(now time.Time) time.Time {
	return Civil(now.In(r.loc))
}

// HolidayName reports the holiday on date, if any.
func (r *Rules) HolidayName(date time.Time) (string, bool) {
	key := Civil(date).Format(models.DateLayout)
	if r.holidays != nil {
		name, ok := r.holidays[key]
		return name, ok
	}
	name, ok := nationalHolidays(date.Year())[key]
	return name, ok
}

// IsHoliday reports whether date is a holiday.
func (r *Rules) IsHoliday(date time.Time) bool {
	_, ok := r.HolidayName(date)
	return ok
}

// IsClosedPeriod reports whether date falls inside the inclusive seasonal
// window, evaluated against date's own year. A window whose end precedes its
// start spans the new year.
func (r *Rules) IsClosedPeriod(date time.Time) bool {
	md := config.MonthDay{Month: date.Month(), Day: date.Day()}
	if !before(r.closedEnd, r.closedStart) {
		return !before(md, r.closedStart) && !before(r.closedEnd, md)
	}
	return !before(md, r.closedStart) || !before(r.closedEnd, md)
}

// ClosedPeriodName labels the seasonal closure in rejection messages.
func (r *Rules) ClosedPeriodName() string {
	return r.closedName
}

// IsBookable is true when date is neither a holiday nor inside the closed period.
func (r *Rules) IsBookable(date time.Time) bool {
	return !r.IsHoliday(date) && !r.IsClosedPeriod(date)
}

// Reasons lists the calendar rules date violates, in evaluation order.
func (r *Rules) Reasons(date time.Time) []models.ValidationReason {
	var reasons []models.ValidationReason
	if name, ok := r.HolidayName(date); ok {
		reasons = append(reasons, models.ValidationReason{
			Code:    models.ReasonHoliday,
			Message: fmt.Sprintf("%s is a holiday (%s)", date.Format(models.DateLayout), name),
		})
	}
	if r.IsClosedPeriod(date) {
		reasons = append(reasons, models.ValidationReason{
			Code:    models.ReasonClosedPeriod,
			Message: fmt.Sprintf("%s falls within the %s", date.Format(models.DateLayout), r.closedName),
		})
	}
	return reasons
}

func before(a, b config.MonthDay) bool {
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	return a.Day < b.Day
}
