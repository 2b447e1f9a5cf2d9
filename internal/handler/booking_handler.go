package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/shift-booking-api/internal/dto"
	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/internal/service"
	"github.com/noah-isme/shift-booking-api/pkg/response"
)

type workflowService interface {
	Validate(req service.BookRequest) []models.ValidationReason
	Book(ctx context.Context, req service.BookRequest) (*service.WorkflowResult, error)
	Cancel(ctx context.Context, req service.CancelRequest) (*service.WorkflowResult, error)
	ReportSick(ctx context.Context, req service.CancelRequest) (*service.WorkflowResult, error)
	AdminCancel(ctx context.Context, req service.AdminCancelRequest) (*service.WorkflowResult, error)
	AdminReschedule(ctx context.Context, req service.RescheduleRequest) (*service.WorkflowResult, error)
}

type bookingReader interface {
	BookingsForUser(ctx context.Context, userID string) ([]models.Booking, error)
	BookingsFor(ctx context.Context, slotID int, date time.Time) ([]models.Booking, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.BookingDetail, error)
}

// BookingHandler exposes member booking endpoints.
type BookingHandler struct {
	workflow workflowService
	bookings bookingReader
	validate *validator.Validate
}

// NewBookingHandler builds a new handler.
func NewBookingHandler(workflow workflowService, bookings bookingReader, validate *validator.Validate) *BookingHandler {
	return &BookingHandler{workflow: workflow, bookings: bookings, validate: newValidator(validate)}
}

// Validate godoc
// @Summary Preview booking eligibility
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.BookingRequest true "Slot instance"
// @Success 200 {object} response.Envelope
// @Router /bookings/validate [post]
func (h *BookingHandler) Validate(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.BookingRequest
	if !bindJSON(c, h.validate, &req, "invalid booking payload") {
		return
	}
	reasons := h.workflow.Validate(service.BookRequest{UserID: claims.UserID, SlotID: req.SlotTemplateID, Date: req.Date})
	response.JSON(c, http.StatusOK, dto.ValidationResponse{Eligible: len(reasons) == 0, Reasons: reasons}, nil)
}

// Create godoc
// @Summary Book a slot instance
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.BookingRequest true "Slot instance"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.BookingRequest
	if !bindJSON(c, h.validate, &req, "invalid booking payload") {
		return
	}
	res, err := h.workflow.Book(c.Request.Context(), service.BookRequest{UserID: claims.UserID, SlotID: req.SlotTemplateID, Date: req.Date})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeResult(c, http.StatusCreated, res)
}

// Mine godoc
// @Summary List the caller's bookings, newest date first
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bookings/me [get]
func (h *BookingHandler) Mine(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	bookings, err := h.bookings.BookingsForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, nil)
}

// Cancel godoc
// @Summary Cancel one of the caller's bookings
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.cancel(c, h.workflow.Cancel)
}

// ReportSick godoc
// @Summary Cancel a booking due to illness and alert admins
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/sick [post]
func (h *BookingHandler) ReportSick(c *gin.Context) {
	h.cancel(c, h.workflow.ReportSick)
}

func (h *BookingHandler) cancel(c *gin.Context, run func(context.Context, service.CancelRequest) (*service.WorkflowResult, error)) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := bookingID(c, h.validate)
	if !ok {
		return
	}
	res, err := run(c.Request.Context(), service.CancelRequest{BookingID: id, UserID: claims.UserID})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeResult(c, http.StatusOK, res)
}
