package service

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/shift-booking-api/internal/models"
	appErrors "github.com/noah-isme/shift-booking-api/pkg/errors"
	"github.com/noah-isme/shift-booking-api/pkg/export"
)

// maxRosterDays bounds a single export.
const maxRosterDays = 366

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// RosterService exports booked shifts as a printable PDF.
type RosterService struct {
	bookings rangeLister
	catalog  slotLookup
	renderer pdfRenderer
	now      func() time.Time
}

// NewRosterService constructs the roster exporter.
func NewRosterService(bookings rangeLister, catalog slotLookup, renderer pdfRenderer) *RosterService {
	return &RosterService{bookings: bookings, catalog: catalog, renderer: renderer, now: time.Now}
}

// PDF renders all bookings between from and to inclusive.
func (s *RosterService) PDF(ctx context.Context, from, to time.Time) ([]byte, error) {
	if to.Before(from) {
		return nil, appErrors.WithReasons(appErrors.ErrValidation, []string{"to must not be before from"})
	}
	if to.Sub(from) > maxRosterDays*24*time.Hour {
		return nil, appErrors.WithReasons(appErrors.ErrValidation, []string{fmt.Sprintf("range must not exceed %d days", maxRosterDays)})
	}

	rows, err := s.bookings.ListRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	table := export.Table{
		Headers: []string{"Date", "Weekday", "Shift", "Name", "Email"},
		Widths:  []float64{1, 1, 2, 2, 3},
	}
	for _, row := range rows {
		shift := fmt.Sprintf("slot %d", row.SlotTemplateID)
		weekday := row.CalendarDate.Weekday().String()
		if tpl, ok := s.catalog.Get(row.SlotTemplateID); ok {
			shift = fmt.Sprintf("%s-%s", tpl.StartTime, tpl.EndTime)
		}
		table.Rows = append(table.Rows, []string{
			row.CalendarDate.Format(models.DateLayout),
			weekday,
			shift,
			row.UserName,
			row.UserEmail,
		})
	}

	out, err := s.renderer.Render(export.Document{
		Title:       "Shift roster",
		Subtitle:    fmt.Sprintf("%s to %s", from.Format(models.DateLayout), to.Format(models.DateLayout)),
		Table:       table,
		GeneratedAt: s.now(),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	return out, nil
}
