package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-booking-api/internal/models"
)

func TestClaimIfUnbooked(t *testing.T) {
	date := time.Date(2025, time.January, 14, 0, 0, 0, 0, time.UTC)
	sentAt := time.Date(2025, time.January, 7, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"claimed", 1, true},
		{"already recorded or booked", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, cleanup := newMock(t)
			defer cleanup()
			repo := NewNotificationRepository(db)

			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notification_dedup")).
				WithArgs(1, date, "warning_unfilled", sentAt).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			claimed, err := repo.ClaimIfUnbooked(context.Background(), 1, date, models.NotificationWarningUnfilled, sentAt)
			require.NoError(t, err)
			assert.Equal(t, tc.want, claimed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNotificationExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	date := time.Date(2025, time.January, 14, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(1, date, "warning_unfilled").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), 1, date, models.NotificationWarningUnfilled)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationListSince(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	since := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"slot_template_id", "calendar_date", "notification_type", "sent_at"}).
		AddRow(1, since.AddDate(0, 0, 13), "warning_unfilled", since.AddDate(0, 0, 6))
	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_dedup WHERE sent_at >= $1")).
		WithArgs(since).
		WillReturnRows(rows)

	records, err := repo.ListSince(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.NotificationWarningUnfilled, records[0].NotificationType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
