package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/shift-booking-api/internal/calendar"
	"github.com/noah-isme/shift-booking-api/internal/models"
	appErrors "github.com/noah-isme/shift-booking-api/pkg/errors"
)

type rangeLister interface {
	ListRange(ctx context.Context, from, to time.Time) ([]models.BookingDetail, error)
}

type weekCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Generation(key string) uint64
	SetIfCurrent(ctx context.Context, key string, value interface{}, ttl time.Duration, gen uint64) (bool, error)
}

// AvailabilityService builds week overviews.
type AvailabilityService struct {
	rules    *calendar.Rules
	catalog  *calendar.Catalog
	bookings rangeLister
	cache    weekCache
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewAvailabilityService constructs the overview service. cache may be nil.
func NewAvailabilityService(rules *calendar.Rules, catalog *calendar.Catalog, bookings rangeLister, cache weekCache, ttl time.Duration, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{rules: rules, catalog: catalog, bookings: bookings, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Week lists every template instance of the ISO week containing anyDate.
// Past instances are reported as not bookable.
func (s *AvailabilityService) Week(ctx context.Context, anyDate time.Time) (*models.WeekOverview, error) {
	monday := calendar.WeekStart(anyDate)
	key := WeekKey(monday)

	var gen uint64
	if s.cache != nil {
		gen = s.cache.Generation(key)
		var cached models.WeekOverview
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("week cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			s.markPast(&cached)
			return &cached, nil
		}
	}

	rows, err := s.bookings.ListRange(ctx, monday, monday.AddDate(0, 0, 6))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week bookings")
	}
	occupied := make(map[string]models.BookingDetail, len(rows))
	for _, row := range rows {
		occupied[row.Instance().Key()] = row
	}

	overview := &models.WeekOverview{WeekStart: monday, Slots: []models.SlotAvailability{}}
	for _, inst := range s.catalog.Week(monday) {
		tpl, _ := s.catalog.Get(inst.SlotTemplateID)
		reasons := ReasonCodes(s.rules.Reasons(inst.Date))
		entry := models.SlotAvailability{
			SlotTemplateID: tpl.ID,
			Description:    tpl.Description(),
			Date:           inst.Date,
			Bookable:       len(reasons) == 0,
			Reasons:        reasons,
		}
		if b, ok := occupied[inst.Key()]; ok {
			entry.Booked = true
			entry.Bookable = false
			entry.BookingID = b.ID
			entry.BookedBy = b.UserName
		}
		overview.Slots = append(overview.Slots, entry)
	}

	if s.cache != nil {
		if _, err := s.cache.SetIfCurrent(ctx, key, overview, s.ttl, gen); err != nil {
			s.logger.Warn("week cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	s.markPast(overview)
	return overview, nil
}

// markPast is applied after caching so a cached week never goes stale when
// the date rolls over.
func (s *AvailabilityService) markPast(w *models.WeekOverview) {
	today := s.rules.Today(s.now())
	for i := range w.Slots {
		if w.Slots[i].Date.Before(today) {
			w.Slots[i].Bookable = false
			if !contains(w.Slots[i].Reasons, models.ReasonPastDate) {
				w.Slots[i].Reasons = append(w.Slots[i].Reasons, models.ReasonPastDate)
			}
		}
	}
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
