package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the civil date format used on the wire and in the catalog.
const DateLayout = "2006-01-02"

// Weekday identifies a day of the ISO week.
type Weekday string

const (
	WeekdayMonday    Weekday = "MON"
	WeekdayTuesday   Weekday = "TUE"
	WeekdayWednesday Weekday = "WED"
	WeekdayThursday  Weekday = "THU"
	WeekdayFriday    Weekday = "FRI"
	WeekdaySaturday  Weekday = "SAT"
	WeekdaySunday    Weekday = "SUN"
)

var weekdayTime = map[Weekday]time.Weekday{
	WeekdayMonday:    time.Monday,
	WeekdayTuesday:   time.Tuesday,
	WeekdayWednesday: time.Wednesday,
	WeekdayThursday:  time.Thursday,
	WeekdayFriday:    time.Friday,
	WeekdaySaturday:  time.Saturday,
	WeekdaySunday:    time.Sunday,
}

// ParseWeekday accepts the three letter form ("TUE") case-insensitively.
func ParseWeekday(raw string) (Weekday, error) {
	w := Weekday(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := weekdayTime[w]; !ok {
		return "", fmt.Errorf("unknown weekday %q", raw)
	}
	return w, nil
}

// WeekdayOf returns the Weekday of t.
func WeekdayOf(t time.Time) Weekday {
	for w, tw := range weekdayTime {
		if tw == t.Weekday() {
			return w
		}
	}
	return ""
}

// Time converts to the standard library weekday.
func (w Weekday) Time() time.Weekday {
	return weekdayTime[w]
}

// Offset is the number of days between Monday and w.
func (w Weekday) Offset() int {
	return (int(w.Time()) + 6) % 7
}

// Name returns the English day name, e.g. "Tuesday".
func (w Weekday) Name() string {
	return w.Time().String()
}

// SlotTemplate is a recurring weekly time window with capacity one.
type SlotTemplate struct {
	ID        int     `json:"id"`
	Weekday   Weekday `json:"weekday"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Capacity  int     `json:"capacity"`
}

// Description renders the template for humans, e.g. "Tuesday 17:00-20:00".
func (s SlotTemplate) Description() string {
	return fmt.Sprintf("%s %s-%s", s.Weekday.Name(), s.StartTime, s.EndTime)
}

// SlotInstance is the occurrence of a template on one calendar date. It is
// derived on demand and never persisted.
type SlotInstance struct {
	SlotTemplateID int       `json:"slot_template_id"`
	Date           time.Time `json:"date"`
}

// Key identifies the instance, e.g. "1@2025-01-07".
func (s SlotInstance) Key() string {
	return fmt.Sprintf("%d@%s", s.SlotTemplateID, s.Date.Format(DateLayout))
}
