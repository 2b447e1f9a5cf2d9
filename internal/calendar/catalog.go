package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/pkg/config"
)

const clockLayout = "15:04"

// Catalog is the fixed, ordered set of weekly slot templates.
type Catalog struct {
	templates []models.SlotTemplate
	byID      map[int]models.SlotTemplate
}

// NewCatalog validates the configured templates.
func NewCatalog(entries []config.SlotEntry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("slot catalog is empty")
	}
	c := &Catalog{byID: make(map[int]models.SlotTemplate, len(entries))}
	for _, e := range entries {
		if e.ID <= 0 {
			return nil, fmt.Errorf("slot %d: id must be positive", e.ID)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("slot %d: duplicate id", e.ID)
		}
		weekday, err := models.ParseWeekday(e.Weekday)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", e.ID, err)
		}
		start, err := time.Parse(clockLayout, e.Start)
		if err != nil {
			return nil, fmt.Errorf("slot %d: invalid start %q", e.ID, e.Start)
		}
		end, err := time.Parse(clockLayout, e.End)
		if err != nil {
			return nil, fmt.Errorf("slot %d: invalid end %q", e.ID, e.End)
		}
		if !end.After(start) {
			return nil, fmt.Errorf("slot %d: end %s must be after start %s", e.ID, e.End, e.Start)
		}
		tpl := models.SlotTemplate{
			ID:        e.ID,
			Weekday:   weekday,
			StartTime: start.Format(clockLayout),
			EndTime:   end.Format(clockLayout),
			Capacity:  1,
		}
		c.byID[tpl.ID] = tpl
		c.templates = append(c.templates, tpl)
	}
	sort.Slice(c.templates, func(i, j int) bool { return c.templates[i].ID < c.templates[j].ID })
	return c, nil
}

// All returns a copy of the templates ordered by id.
func (c *Catalog) All() []models.SlotTemplate {
	out := make([]models.SlotTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// Get looks a template up by id.
func (c *Catalog) Get(id int) (models.SlotTemplate, bool) {
	tpl, ok := c.byID[id]
	return tpl, ok
}

// Week lists every template instance of the ISO week starting at weekStart.
func (c *Catalog) Week(weekStart time.Time) []models.SlotInstance {
	monday := WeekStart(weekStart)
	out := make([]models.SlotInstance, 0, len(c.templates))
	for _, tpl := range c.templates {
		out = append(out, models.SlotInstance{SlotTemplateID: tpl.ID, Date: SlotDate(monday, tpl.Weekday)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Start returns the absolute start time of a template on date in loc.
func (c *Catalog) Start(tpl models.SlotTemplate, date time.Time, loc *time.Location) time.Time {
	return clockOn(tpl.StartTime, date, loc)
}

// End returns the absolute end time of a template on date in loc.
func (c *Catalog) End(tpl models.SlotTemplate, date time.Time, loc *time.Location) time.Time {
	return clockOn(tpl.EndTime, date, loc)
}

func clockOn(clock string, date time.Time, loc *time.Location) time.Time {
	t, _ := time.Parse(clockLayout, clock)
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}
