package calendar

import (
	"time"

	"github.com/noah-isme/shift-booking-api/internal/models"
)

// nationalHolidays returns the German nationwide public holidays for year.
func nationalHolidays(year int) map[string]string {
	easter := easterSunday(year)
	days := map[time.Time]string{
		Date(year, time.January, 1):   "Neujahr",
		easter.AddDate(0, 0, -2):      "Karfreitag",
		easter.AddDate(0, 0, 1):       "Ostermontag",
		Date(year, time.May, 1):       "Tag der Arbeit",
		easter.AddDate(0, 0, 39):      "Christi Himmelfahrt",
		easter.AddDate(0, 0, 50):      "Pfingstmontag",
		Date(year, time.October, 3):   "Tag der Deutschen Einheit",
		Date(year, time.December, 25): "1. Weihnachtstag",
		Date(year, time.December, 26): "2. Weihnachtstag",
	}
	out := make(map[string]string, len(days))
	for d, name := range days {
		out[d.Format(models.DateLayout)] = name
	}
	return out
}

// easterSunday uses the anonymous Gregorian algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return Date(year, time.Month(month), day)
}
