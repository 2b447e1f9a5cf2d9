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

func TestFavoriteAddIgnoresDuplicates(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFavoriteRepository(db)

	fav := &models.Favorite{UserID: "u1", SlotTemplateID: 1, CalendarDate: time.Date(2025, time.January, 7, 0, 0, 0, 0, time.UTC), CreatedAt: time.Now()}
	mock.ExpectExec("INSERT INTO favorites").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO favorites").WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.Add(context.Background(), fav)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Add(context.Background(), fav)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRemove(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFavoriteRepository(db)

	date := time.Date(2025, time.January, 7, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM favorites WHERE user_id = $1 AND slot_template_id = $2 AND calendar_date = $3")).
		WithArgs("u1", 1, date).
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Remove(context.Background(), "u1", 1, date)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteListForUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFavoriteRepository(db)

	rows := sqlmock.NewRows([]string{"user_id", "slot_template_id", "calendar_date", "created_at"}).
		AddRow("u1", 2, time.Date(2025, time.January, 9, 0, 0, 0, 0, time.UTC), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM favorites WHERE user_id = $1")).WithArgs("u1").WillReturnRows(rows)

	favorites, err := repo.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, 2, favorites[0].SlotTemplateID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
