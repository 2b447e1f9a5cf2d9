package service

import (
	"github.com/noah-isme/shift-booking-api/internal/models"
	appErrors "github.com/noah-isme/shift-booking-api/pkg/errors"
)

// Soft failure kinds.
const (
	SoftFailureNotification = "notification"
	SoftFailureFavorite     = "favorite"
)

// Workflow steps that can fail softly.
const (
	StepInviteRequest  = "invite_request"
	StepInviteCancel   = "invite_cancel"
	StepAdminBroadcast = "admin_broadcast"
	StepRecipient      = "recipient_lookup"
	StepFavorite       = "favorite_cleanup"
)

// SoftFailure is a best-effort step that failed after the ledger mutation
// committed. It never changes the primary outcome.
type SoftFailure struct {
	Kind    string `json:"kind"`
	Step    string `json:"step"`
	Message string `json:"message"`
}

// WorkflowResult is returned by every workflow entry point. Success reports
// the primary ledger outcome; Warnings lists soft failures.
type WorkflowResult struct {
	Success  bool                      `json:"success"`
	Booking  *models.Booking           `json:"booking,omitempty"`
	Previous *models.Booking           `json:"previous,omitempty"`
	Reasons  []models.ValidationReason `json:"reasons,omitempty"`
	Warnings []SoftFailure             `json:"warnings,omitempty"`

	// Error classifies a failed result for transport layers.
	Error *appErrors.Error `json:"-"`
}

func (r *WorkflowResult) warn(f *SoftFailure) {
	if f != nil {
		r.Warnings = append(r.Warnings, *f)
	}
}

func rejected(base *appErrors.Error, reasons ...models.ValidationReason) *WorkflowResult {
	return &WorkflowResult{Success: false, Reasons: reasons, Error: appErrors.WithReasons(base, ReasonCodes(reasons))}
}

// ReasonCodes lists the codes of reasons, in order.
func ReasonCodes(reasons []models.ValidationReason) []string {
	codes := make([]string, 0, len(reasons))
	for _, r := range reasons {
		codes = append(codes, r.Code)
	}
	return codes
}
