package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-booking-api/internal/calendar"
	"github.com/noah-isme/shift-booking-api/internal/models"
	appErrors "github.com/noah-isme/shift-booking-api/pkg/errors"
	"github.com/noah-isme/shift-booking-api/pkg/export"
)

type rendererStub struct {
	doc export.Document
	err error
}

func (r *rendererStub) Render(doc export.Document) ([]byte, error) {
	r.doc = doc
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-stub"), nil
}

func TestRosterPDF(t *testing.T) {
	bookings := newMemBookings()
	bookings.users = map[string]models.User(defaultUsers())
	ctx := context.Background()
	require.NoError(t, bookings.Create(ctx, &models.Booking{ID: "b1", UserID: "user-a", SlotTemplateID: 1, CalendarDate: calendar.Date(2025, time.January, 7)}))
	require.NoError(t, bookings.Create(ctx, &models.Booking{ID: "b2", UserID: "user-b", SlotTemplateID: 3, CalendarDate: calendar.Date(2025, time.January, 11)}))
	renderer := &rendererStub{}
	svc := NewRosterService(bookings, testCatalog(t), renderer)

	out, err := svc.PDF(ctx, calendar.Date(2025, time.January, 6), calendar.Date(2025, time.January, 12))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-stub"), out)

	rows := renderer.doc.Table.Rows
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2025-01-07", "Tuesday", "17:00-20:00", "Alice", "a@example.com"}, rows[0])
	assert.Equal(t, "Saturday", rows[1][1])
	assert.Equal(t, "2025-01-06 to 2025-01-12", renderer.doc.Subtitle)
}

func TestRosterPDFValidatesRange(t *testing.T) {
	svc := NewRosterService(newMemBookings(), testCatalog(t), &rendererStub{})

	_, err := svc.PDF(context.Background(), calendar.Date(2025, time.January, 12), calendar.Date(2025, time.January, 6))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.PDF(context.Background(), calendar.Date(2024, time.January, 1), calendar.Date(2025, time.June, 1))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRosterPDFRenderFailure(t *testing.T) {
	svc := NewRosterService(newMemBookings(), testCatalog(t), &rendererStub{err: errBoom})

	_, err := svc.PDF(context.Background(), calendar.Date(2025, time.January, 6), calendar.Date(2025, time.January, 12))
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
