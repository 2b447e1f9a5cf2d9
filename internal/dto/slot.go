package dto

import "github.com/noah-isme/shift-booking-api/internal/models"

// SlotResponse is a catalog entry.
type SlotResponse struct {
	ID          int            `json:"id"`
	Weekday     models.Weekday `json:"weekday"`
	StartTime   string         `json:"start_time"`
	EndTime     string         `json:"end_time"`
	Capacity    int            `json:"capacity"`
	Description string         `json:"description"`
}

// NewSlotResponse maps a template.
func NewSlotResponse(tpl models.SlotTemplate) SlotResponse {
	return SlotResponse{
		ID:          tpl.ID,
		Weekday:     tpl.Weekday,
		StartTime:   tpl.StartTime,
		EndTime:     tpl.EndTime,
		Capacity:    tpl.Capacity,
		Description: tpl.Description(),
	}
}

// ValidationResponse is the eligibility preview.
type ValidationResponse struct {
	Eligible bool                      `json:"eligible"`
	Reasons  []models.ValidationReason `json:"reasons"`
}
