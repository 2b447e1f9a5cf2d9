package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/shift-booking-api/internal/models"
	appErrors "github.com/noah-isme/shift-booking-api/pkg/errors"
)

type favoriteStore interface {
	Add(ctx context.Context, fav *models.Favorite) (bool, error)
	Remove(ctx context.Context, userID string, slotID int, date time.Time) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]models.Favorite, error)
}

type slotLookup interface {
	Get(id int) (models.SlotTemplate, bool)
}

// FavoriteService manages the advisory watchlist.
type FavoriteService struct {
	repo    favoriteStore
	catalog slotLookup
	audit   AuditSink
	logger  *zap.Logger
	now     func() time.Time
}

// NewFavoriteService constructs the watchlist service. audit may be nil.
func NewFavoriteService(repo favoriteStore, catalog slotLookup, audit AuditSink, logger *zap.Logger) *FavoriteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoriteService{repo: repo, catalog: catalog, audit: audit, logger: logger, now: time.Now}
}

// Add watches a slot instance. Adding an existing entry is a no-op.
func (s *FavoriteService) Add(ctx context.Context, userID string, slotID int, date time.Time) (*models.Favorite, error) {
	tpl, ok := s.catalog.Get(slotID)
	if !ok {
		return nil, appErrors.WithReasons(appErrors.ErrValidation, []string{fmt.Sprintf("slot %d does not exist", slotID)})
	}
	if models.WeekdayOf(date) != tpl.Weekday {
		return nil, appErrors.WithReasons(appErrors.ErrValidation, []string{fmt.Sprintf("slot %d does not run on %s", slotID, date.Format(models.DateLayout))})
	}

	fav := &models.Favorite{UserID: userID, SlotTemplateID: slotID, CalendarDate: date, CreatedAt: s.now().UTC()}
	created, err := s.repo.Add(ctx, fav)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add favorite")
	}
	if created {
		s.record(ctx, userID, models.AuditFavoriteAdded, slotID, date)
	}
	return fav, nil
}

// Remove drops a watchlist entry. ErrNotFound when it did not exist.
func (s *FavoriteService) Remove(ctx context.Context, userID string, slotID int, date time.Time) error {
	removed, err := s.repo.Remove(ctx, userID, slotID, date)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove favorite")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "favorite not found")
	}
	s.record(ctx, userID, models.AuditFavoriteRemoved, slotID, date)
	return nil
}

// ListForUser returns the user's watchlist.
func (s *FavoriteService) ListForUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	favs, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list favorites")
	}
	if favs == nil {
		favs = []models.Favorite{}
	}
	return favs, nil
}

// RemoveMatching clears the entry a fresh booking fulfils. An absent entry
// is not a failure.
func (s *FavoriteService) RemoveMatching(ctx context.Context, userID string, slotID int, date time.Time) *SoftFailure {
	if _, err := s.repo.Remove(ctx, userID, slotID, date); err != nil {
		s.logger.Warn("failed to clear favorite after booking",
			zap.String("user_id", userID), zap.Int("slot_template_id", slotID), zap.Time("date", date), zap.Error(err))
		return &SoftFailure{Kind: SoftFailureFavorite, Step: StepFavorite, Message: "could not clear watchlist entry: " + err.Error()}
	}
	return nil
}

func (s *FavoriteService) record(ctx context.Context, userID, action string, slotID int, date time.Time) {
	if s.audit == nil {
		return
	}
	details := fmt.Sprintf("slot %d on %s", slotID, date.Format(models.DateLayout))
	if err := s.audit.Append(ctx, &userID, action, details, s.now()); err != nil {
		s.logger.Warn("failed to write audit entry", zap.String("action", action), zap.Error(err))
	}
}
