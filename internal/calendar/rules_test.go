package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/pkg/config"
)

func defaultRules(t *testing.T, holidays ...config.HolidayEntry) *Rules {
	t.Helper()
	r, err := NewRules(config.CalendarConfig{
		Timezone:    "Europe/Berlin",
		Holidays:    holidays,
		ClosedStart: config.MonthDay{Month: time.June, Day: 1},
		ClosedEnd:   config.MonthDay{Month: time.September, Day: 30},
		ClosedName:  "summer break",
	})
	require.NoError(t, err)
	return r
}

func TestIsClosedPeriod(t *testing.T) {
	r := defaultRules(t)
	cases := []struct {
		date   time.Time
		closed bool
	}{
		{Date(2025, time.May, 31), false},
		{Date(2025, time.June, 1), true},
		{Date(2025, time.July, 8), true},
		{Date(2025, time.September, 30), true},
		{Date(2025, time.October, 1), false},
		{Date(2031, time.August, 15), true},
	}
	for _, tc := range cases {
		t.Run(tc.date.Format(models.DateLayout), func(t *testing.T) {
			assert.Equal(t, tc.closed, r.IsClosedPeriod(tc.date))
		})
	}
}

func TestIsClosedPeriodWrapsYearEnd(t *testing.T) {
	r, err := NewRules(config.CalendarConfig{
		ClosedStart: config.MonthDay{Month: time.December, Day: 20},
		ClosedEnd:   config.MonthDay{Month: time.January, Day: 6},
	})
	require.NoError(t, err)

	assert.True(t, r.IsClosedPeriod(Date(2025, time.December, 24)))
	assert.True(t, r.IsClosedPeriod(Date(2026, time.January, 6)))
	assert.False(t, r.IsClosedPeriod(Date(2026, time.January, 7)))
	assert.False(t, r.IsClosedPeriod(Date(2025, time.December, 19)))
}

func TestBuiltInHolidays(t *testing.T) {
	r := defaultRules(t)
	cases := map[string]string{
		"2025-01-01": "Neujahr",
		"2025-04-18": "Karfreitag",
		"2025-04-21": "Ostermontag",
		"2025-05-29": "Christi Himmelfahrt",
		"2025-06-09": "Pfingstmontag",
		"2024-03-29": "Karfreitag",
		"2025-10-03": "Tag der Deutschen Einheit",
		"2025-12-26": "2. Weihnachtstag",
	}
	for raw, want := range cases {
		d, err := ParseDate(raw)
		require.NoError(t, err)
		name, ok := r.HolidayName(d)
		assert.True(t, ok, raw)
		assert.Equal(t, want, name, raw)
	}
	assert.False(t, r.IsHoliday(Date(2025, time.January, 7)))
}

func TestConfiguredHolidaysReplaceBuiltIns(t *testing.T) {
	r := defaultRules(t, config.HolidayEntry{Date: "2025-01-07", Name: "Club anniversary"})

	name, ok := r.HolidayName(Date(2025, time.January, 7))
	assert.True(t, ok)
	assert.Equal(t, "Club anniversary", name)
	assert.False(t, r.IsHoliday(Date(2025, time.January, 1)))
}

func TestIsBookableIsDeterministic(t *testing.T) {
	r := defaultRules(t)
	dates := []time.Time{Date(2025, time.January, 7), Date(2025, time.July, 8), Date(2025, time.December, 25)}
	first := make([]bool, len(dates))
	for i, d := range dates {
		first[i] = r.IsBookable(d)
	}
	for i := len(dates) - 1; i >= 0; i-- {
		assert.Equal(t, first[i], r.IsBookable(dates[i]))
	}
	assert.Equal(t, []bool{true, false, false}, first)
}

func TestReasonsCollectsBothRules(t *testing.T) {
	r := defaultRules(t, config.HolidayEntry{Date: "2025-08-15", Name: "Assumption"})
	reasons := r.Reasons(Date(2025, time.August, 15))
	require.Len(t, reasons, 2)
	assert.Equal(t, models.ReasonHoliday, reasons[0].Code)
	assert.Contains(t, reasons[0].Message, "Assumption")
	assert.Equal(t, models.ReasonClosedPeriod, reasons[1].Code)
	assert.Contains(t, reasons[1].Message, "summer break")
}

func TestWeekStartAndSlotDate(t *testing.T) {
	cases := []struct {
		in      time.Time
		monday  time.Time
		weekday models.Weekday
		slot    time.Time
	}{
		{Date(2025, time.January, 7), Date(2025, time.January, 6), models.WeekdayTuesday, Date(2025, time.January, 7)},
		{Date(2025, time.January, 12), Date(2025, time.January, 6), models.WeekdaySunday, Date(2025, time.January, 12)},
		{Date(2025, time.January, 1), Date(2024, time.December, 30), models.WeekdaySaturday, Date(2025, time.January, 4)},
	}
	for _, tc := range cases {
		monday := WeekStart(tc.in)
		assert.Equal(t, tc.monday, monday)
		assert.Equal(t, tc.slot, SlotDate(monday, tc.weekday))
	}
}

func TestTodayUsesConfiguredTimezone(t *testing.T) {
	r := defaultRules(t)
	now := time.Date(2025, time.January, 6, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, Date(2025, time.January, 7), r.Today(now))
}

func TestNewRulesRejectsBadInput(t *testing.T) {
	_, err := NewRules(config.CalendarConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)

	_, err = NewRules(config.CalendarConfig{
		ClosedStart: config.MonthDay{Month: time.February, Day: 30},
		ClosedEnd:   config.MonthDay{Month: time.March, Day: 1},
	})
	assert.Error(t, err)
}
