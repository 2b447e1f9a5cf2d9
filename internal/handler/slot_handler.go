package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shift-booking-api/internal/dto"
	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/pkg/response"
)

type slotCatalog interface {
	All() []models.SlotTemplate
}

type weekService interface {
	Week(ctx context.Context, anyDate time.Time) (*models.WeekOverview, error)
}

// SlotHandler exposes the static catalog and week overviews.
type SlotHandler struct {
	catalog slotCatalog
	weeks   weekService
	today   func() time.Time
}

// NewSlotHandler builds a new handler. today yields the local civil date.
func NewSlotHandler(catalog slotCatalog, weeks weekService, today func() time.Time) *SlotHandler {
	return &SlotHandler{catalog: catalog, weeks: weeks, today: today}
}

// List godoc
// @Summary List weekly slot templates
// @Tags Slots
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slots [get]
func (h *SlotHandler) List(c *gin.Context) {
	templates := h.catalog.All()
	out := make([]dto.SlotResponse, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, dto.NewSlotResponse(tpl))
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Week godoc
// @Summary Week overview with availability per slot instance
// @Tags Slots
// @Produce json
// @Param start query string false "Any date in the week (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /slots/week [get]
func (h *SlotHandler) Week(c *gin.Context) {
	date := h.today()
	if raw := c.Query("start"); raw != "" {
		parsed, ok := parseDate(c, raw, "start")
		if !ok {
			return
		}
		date = parsed
	}
	week, err := h.weeks.Week(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}
