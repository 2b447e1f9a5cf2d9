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
)

func TestFavoriteLifecycle(t *testing.T) {
	store := newMemFavorites()
	audit := &auditSpy{}
	svc := NewFavoriteService(store, testCatalog(t), audit, nil)
	ctx := context.Background()
	date := calendar.Date(2025, time.January, 7)

	_, err := svc.Add(ctx, "user-a", 1, date)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "user-a", 1, date)
	require.NoError(t, err)

	favs, err := svc.ListForUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, favs, 1)

	require.NoError(t, svc.Remove(ctx, "user-a", 1, date))
	err = svc.Remove(ctx, "user-a", 1, date)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	assert.Equal(t, []string{models.AuditFavoriteAdded, models.AuditFavoriteRemoved}, audit.actions())

	favs, err = svc.ListForUser(ctx, "user-b")
	require.NoError(t, err)
	assert.NotNil(t, favs)
	assert.Empty(t, favs)
}

func TestFavoriteAddValidatesInstance(t *testing.T) {
	svc := NewFavoriteService(newMemFavorites(), testCatalog(t), nil, nil)

	_, err := svc.Add(context.Background(), "user-a", 9, calendar.Date(2025, time.January, 7))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Add(context.Background(), "user-a", 2, calendar.Date(2025, time.January, 7))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRemoveMatching(t *testing.T) {
	store := newMemFavorites()
	svc := NewFavoriteService(store, testCatalog(t), nil, nil)
	date := calendar.Date(2025, time.January, 7)

	assert.Nil(t, svc.RemoveMatching(context.Background(), "user-a", 1, date))

	store.removeErr = errBoom
	failure := svc.RemoveMatching(context.Background(), "user-a", 1, date)
	require.NotNil(t, failure)
	assert.Equal(t, SoftFailureFavorite, failure.Kind)
	assert.Equal(t, StepFavorite, failure.Step)
}
