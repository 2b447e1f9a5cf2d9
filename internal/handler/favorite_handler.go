package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/shift-booking-api/internal/calendar"
	"github.com/noah-isme/shift-booking-api/internal/dto"
	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/pkg/response"
)

type favoriteService interface {
	Add(ctx context.Context, userID string, slotID int, date time.Time) (*models.Favorite, error)
	Remove(ctx context.Context, userID string, slotID int, date time.Time) error
	ListForUser(ctx context.Context, userID string) ([]models.Favorite, error)
}

// FavoriteHandler manages the caller's watchlist.
type FavoriteHandler struct {
	favorites favoriteService
	validate  *validator.Validate
}

// NewFavoriteHandler builds a new handler.
func NewFavoriteHandler(favorites favoriteService, validate *validator.Validate) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, validate: newValidator(validate)}
}

// List godoc
// @Summary List watched slot instances
// @Tags Favorites
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /favorites [get]
func (h *FavoriteHandler) List(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	favs, err := h.favorites.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, favs, nil)
}

// Add godoc
// @Summary Watch a slot instance
// @Tags Favorites
// @Accept json
// @Produce json
// @Param payload body dto.FavoriteRequest true "Slot instance"
// @Success 201 {object} response.Envelope
// @Router /favorites [post]
func (h *FavoriteHandler) Add(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.FavoriteRequest
	if !bindJSON(c, h.validate, &req, "invalid favorite payload") {
		return
	}
	date, _ := calendar.ParseDate(req.Date)
	fav, err := h.favorites.Add(c.Request.Context(), claims.UserID, req.SlotTemplateID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fav)
}

// Remove godoc
// @Summary Stop watching a slot instance
// @Tags Favorites
// @Param slot query int true "Slot template ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 204
// @Router /favorites [delete]
func (h *FavoriteHandler) Remove(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var q dto.SlotDateQuery
	if !bindQuery(c, h.validate, &q, "invalid favorite query") {
		return
	}
	date, _ := calendar.ParseDate(q.Date)
	if err := h.favorites.Remove(c.Request.Context(), claims.UserID, q.SlotTemplateID, date); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
