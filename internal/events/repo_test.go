package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
)

func setupEventsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	events := `
CREATE TABLE IF NOT EXISTS raffle_events (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  start_date DATETIME NOT NULL,
  end_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  created_at DATETIME,
  updated_at DATETIME
);`
	settings := `
CREATE TABLE IF NOT EXISTS event_settings (
  event_id TEXT PRIMARY KEY,
  header_image_url TEXT,
  allow_international_orders INTEGER NOT NULL DEFAULT 0,
  require_age_confirmation INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(events).Error)
	require.NoError(t, db.Exec(settings).Error)
	t.Cleanup(func() {
		db.Exec("DELETE FROM event_settings")
		db.Exec("DELETE FROM raffle_events")
	})
	return db
}

func createTestEvent(t *testing.T, db *gorm.DB, status enums.EventStatus, start, end time.Time) *models.RaffleEvent {
	t.Helper()

	event := &models.RaffleEvent{
		ID:        uuid.New(),
		Name:      "Fall Fundraiser",
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
	require.NoError(t, db.Omit("Settings").Create(event).Error)
	return event
}

func TestRepoFindCurrentPicksActiveWindow(t *testing.T) {
	db := setupEventsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	createTestEvent(t, db, enums.EventStatusActive, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	createTestEvent(t, db, enums.EventStatusDraft, now.Add(-time.Hour), now.Add(time.Hour))
	want := createTestEvent(t, db, enums.EventStatusActive, now.Add(-time.Hour), now.Add(time.Hour))

	got, err := repo.FindCurrent(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
}

func TestRepoFindCurrentPrefersLatestStart(t *testing.T) {
	db := setupEventsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	createTestEvent(t, db, enums.EventStatusActive, now.Add(-72*time.Hour), now.Add(72*time.Hour))
	newer := createTestEvent(t, db, enums.EventStatusActive, now.Add(-time.Hour), now.Add(time.Hour))

	got, err := repo.FindCurrent(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
}

func TestRepoFindCurrentNoActiveEvent(t *testing.T) {
	db := setupEventsTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	createTestEvent(t, db, enums.EventStatusCompleted, now.Add(-2*time.Hour), now.Add(-time.Hour))

	_, err := repo.FindCurrent(context.Background(), now)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoFindCurrentPreloadsSettings(t *testing.T) {
	db := setupEventsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	event := createTestEvent(t, db, enums.EventStatusActive, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, repo.UpsertSettings(ctx, &models.EventSettings{
		EventID:                  event.ID,
		AllowInternationalOrders: true,
	}))

	got, err := repo.FindCurrent(ctx, now)
	require.NoError(t, err)
	require.NotNil(t, got.Settings)
	assert.True(t, got.Settings.AllowInternationalOrders)
}

func TestRepoUpsertSettingsOverwrites(t *testing.T) {
	db := setupEventsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	event := createTestEvent(t, db, enums.EventStatusDraft, time.Now(), time.Now().Add(time.Hour))

	require.NoError(t, repo.UpsertSettings(ctx, &models.EventSettings{
		EventID:                event.ID,
		RequireAgeConfirmation: true,
	}))
	require.NoError(t, repo.UpsertSettings(ctx, &models.EventSettings{
		EventID:                  event.ID,
		AllowInternationalOrders: true,
	}))

	got, err := repo.FindSettings(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, got.AllowInternationalOrders)
	assert.False(t, got.RequireAgeConfirmation)
}

func TestRepoDueForActivationAndCompletion(t *testing.T) {
	db := setupEventsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	due := createTestEvent(t, db, enums.EventStatusScheduled, now.Add(-time.Minute), now.Add(time.Hour))
	createTestEvent(t, db, enums.EventStatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour))
	ended := createTestEvent(t, db, enums.EventStatusActive, now.Add(-2*time.Hour), now.Add(-time.Minute))
	createTestEvent(t, db, enums.EventStatusActive, now.Add(-time.Hour), now.Add(time.Hour))

	toActivate, err := repo.FindDueForActivation(ctx, now)
	require.NoError(t, err)
	require.Len(t, toActivate, 1)
	assert.Equal(t, due.ID, toActivate[0].ID)

	toComplete, err := repo.FindDueForCompletion(ctx, now)
	require.NoError(t, err)
	require.Len(t, toComplete, 1)
	assert.Equal(t, ended.ID, toComplete[0].ID)
}
