package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-booking-api/internal/models"
)

// FavoriteRepository stores watchlist entries.
type FavoriteRepository struct {
	db *sqlx.DB
}

// NewFavoriteRepository creates a new instance of FavoriteRepository.
func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add stores a favorite. It reports false when the entry already existed.
func (r *FavoriteRepository) Add(ctx context.Context, fav *models.Favorite) (bool, error) {
	const query = `INSERT INTO favorites (user_id, slot_template_id, calendar_date, created_at)
VALUES (:user_id, :slot_template_id, :calendar_date, :created_at)
ON CONFLICT (user_id, slot_template_id, calendar_date) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, fav)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add favorite rows affected: %w", err)
	}
	return affected > 0, nil
}

// Remove deletes a favorite. It reports false when none matched.
func (r *FavoriteRepository) Remove(ctx context.Context, userID string, slotID int, date time.Time) (bool, error) {
	const query = `DELETE FROM favorites WHERE user_id = $1 AND slot_template_id = $2 AND calendar_date = $3`
	res, err := r.db.ExecContext(ctx, query, userID, slotID, date)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove favorite rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListForUser returns a user's favorites in date order.
func (r *FavoriteRepository) ListForUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	const query = `SELECT user_id, slot_template_id, calendar_date, created_at FROM favorites WHERE user_id = $1 ORDER BY calendar_date, slot_template_id`
	var favorites []models.Favorite
	if err := r.db.SelectContext(ctx, &favorites, query, userID); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favorites, nil
}
