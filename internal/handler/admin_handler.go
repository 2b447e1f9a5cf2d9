package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/shift-booking-api/internal/calendar"
	"github.com/noah-isme/shift-booking-api/internal/dto"
	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/internal/service"
	"github.com/noah-isme/shift-booking-api/pkg/response"
)

type sweepRunner interface {
	RunSweep(ctx context.Context, horizonDays int) (*service.SweepReport, error)
}

type rosterExporter interface {
	PDF(ctx context.Context, from, to time.Time) ([]byte, error)
}

type auditReader interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, *models.Pagination, error)
}

// AdminHandler exposes privileged booking management.
type AdminHandler struct {
	workflow workflowService
	bookings bookingReader
	sweep    sweepRunner
	roster   rosterExporter
	audit    auditReader
	horizon  int
	validate *validator.Validate
}

// NewAdminHandler builds a new handler. horizon is the default sweep horizon in days.
func NewAdminHandler(workflow workflowService, bookings bookingReader, sweep sweepRunner, roster rosterExporter, audit auditReader, horizon int, validate *validator.Validate) *AdminHandler {
	return &AdminHandler{
		workflow: workflow,
		bookings: bookings,
		sweep:    sweep,
		roster:   roster,
		audit:    audit,
		horizon:  horizon,
		validate: newValidator(validate),
	}
}

// ListBookings godoc
// @Summary List bookings of one slot instance or a date range
// @Tags Admin
// @Produce json
// @Param slot query int false "Slot template ID"
// @Param date query string false "Date (YYYY-MM-DD), with slot"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /admin/bookings [get]
func (h *AdminHandler) ListBookings(c *gin.Context) {
	if c.Query("slot") != "" {
		var q dto.SlotDateQuery
		if !bindQuery(c, h.validate, &q, "invalid booking query") {
			return
		}
		date, _ := calendar.ParseDate(q.Date)
		bookings, err := h.bookings.BookingsFor(c.Request.Context(), q.SlotTemplateID, date)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, bookings, nil)
		return
	}

	var q dto.DateRangeQuery
	if !bindQuery(c, h.validate, &q, "invalid booking query") {
		return
	}
	from, _ := calendar.ParseDate(q.From)
	to, _ := calendar.ParseDate(q.To)
	rows, err := h.bookings.ListRange(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Cancel godoc
// @Summary Cancel any booking
// @Tags Admin
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /admin/bookings/{id} [delete]
func (h *AdminHandler) Cancel(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := bookingID(c, h.validate)
	if !ok {
		return
	}
	res, err := h.workflow.AdminCancel(c.Request.Context(), service.AdminCancelRequest{BookingID: id, ActorID: claims.UserID})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeResult(c, http.StatusOK, res)
}

// Reschedule godoc
// @Summary Move a booking to another user, slot or date
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.RescheduleRequest true "New triple; omitted fields are kept"
// @Success 200 {object} response.Envelope
// @Router /admin/bookings/{id}/reschedule [post]
func (h *AdminHandler) Reschedule(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := bookingID(c, h.validate)
	if !ok {
		return
	}
	var req dto.RescheduleRequest
	if !bindJSON(c, h.validate, &req, "invalid reschedule payload") {
		return
	}
	res, err := h.workflow.AdminReschedule(c.Request.Context(), service.RescheduleRequest{
		BookingID: id,
		ActorID:   claims.UserID,
		UserID:    req.UserID,
		SlotID:    req.SlotTemplateID,
		Date:      req.Date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeResult(c, http.StatusOK, res)
}

// Sweep godoc
// @Summary Run the unfilled-slot warning sweep now
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.SweepRequest false "Optional horizon override"
// @Success 200 {object} response.Envelope
// @Router /admin/sweep [post]
func (h *AdminHandler) Sweep(c *gin.Context) {
	horizon := h.horizon
	if c.Request.ContentLength > 0 {
		var req dto.SweepRequest
		if !bindJSON(c, h.validate, &req, "invalid sweep payload") {
			return
		}
		if req.HorizonDays != nil {
			horizon = *req.HorizonDays
		}
	}
	report, err := h.sweep.RunSweep(c.Request.Context(), horizon)
	if err != nil {
		response.Failure(c, err, report)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Roster godoc
// @Summary Download the booking roster as PDF
// @Tags Admin
// @Produce application/pdf
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /admin/roster.pdf [get]
func (h *AdminHandler) Roster(c *gin.Context) {
	var q dto.DateRangeQuery
	if !bindQuery(c, h.validate, &q, "invalid roster query") {
		return
	}
	from, _ := calendar.ParseDate(q.From)
	to, _ := calendar.ParseDate(q.To)
	pdf, err := h.roster.PDF(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Binary(c, "application/pdf", fmt.Sprintf("roster_%s_%s.pdf", q.From, q.To), pdf)
}

// Audit godoc
// @Summary Page through the audit trail
// @Tags Admin
// @Produce json
// @Param user_id query string false "Actor filter"
// @Param action query string false "Action tag filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/audit [get]
func (h *AdminHandler) Audit(c *gin.Context) {
	var q dto.AuditQuery
	if !bindQuery(c, h.validate, &q, "invalid audit query") {
		return
	}
	entries, page, err := h.audit.List(c.Request.Context(), models.AuditFilter{
		UserID:   q.UserID,
		Action:   q.Action,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, page)
}
