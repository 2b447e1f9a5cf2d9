package dto

// BookingRequest asks for one slot instance. Semantic checks are left to the
// eligibility gate so every reason is reported at once.
type BookingRequest struct {
	SlotTemplateID int    `json:"slot_template_id" validate:"gte=0"`
	Date           string `json:"date" validate:"max=32"`
}

// RescheduleRequest moves a booking. Omitted fields keep their value.
type RescheduleRequest struct {
	UserID         string `json:"user_id" validate:"omitempty,uuid"`
	SlotTemplateID int    `json:"slot_template_id" validate:"omitempty,min=1"`
	Date           string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// FavoriteRequest identifies a watched slot instance.
type FavoriteRequest struct {
	SlotTemplateID int    `json:"slot_template_id" validate:"required,min=1"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
}

// SweepRequest triggers the unfilled-slot sweep manually.
type SweepRequest struct {
	HorizonDays *int `json:"horizon_days" validate:"omitempty,min=0,max=365"`
}

// DateRangeQuery bounds exports and listings.
type DateRangeQuery struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to" validate:"required,datetime=2006-01-02"`
}

// SlotDateQuery selects one slot instance.
type SlotDateQuery struct {
	SlotTemplateID int    `form:"slot" validate:"required,min=1"`
	Date           string `form:"date" validate:"required,datetime=2006-01-02"`
}

// AuditQuery filters the audit trail.
type AuditQuery struct {
	UserID   string `form:"user_id" validate:"omitempty,uuid"`
	Action   string `form:"action" validate:"omitempty,max=64"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=200"`
}
