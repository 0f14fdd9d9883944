package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"github.com/angelmondragon/attribution-backend/pkg/db/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAnalyticsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS ga_events (
  ga_user_pseudo_id TEXT NOT NULL,
  event_name TEXT NOT NULL,
  event_timestamp DATETIME NOT NULL,
  event_timestamp_numeric INTEGER NOT NULL,
  utm_source TEXT,
  utm_campaign TEXT,
  utm_medium TEXT,
  utm_term TEXT,
  event_params TEXT,
  PRIMARY KEY (ga_user_pseudo_id, event_timestamp)
);`
	require.NoError(t, gdb.Exec(schema).Error)
	return gdb
}

func strPtr(s string) *string { return &s }

func taggedEvent(pseudoID string, at time.Time, source, campaign string) models.GAEvent {
	event := models.GAEvent{
		GAUserPseudoID:        pseudoID,
		EventName:             "page_view",
		EventTimestamp:        at,
		EventTimestampNumeric: at.UnixMicro(),
	}
	if source != "" {
		event.UTMSource = strPtr(source)
	}
	if campaign != "" {
		event.UTMCampaign = strPtr(campaign)
	}
	return event
}

func TestInsertEventsIgnoresDuplicates(t *testing.T) {
	gdb := setupAnalyticsTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	at := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	events := []models.GAEvent{
		{
			GAUserPseudoID:        "user-1",
			EventName:             "purchase",
			EventTimestamp:        at,
			EventTimestampNumeric: at.UnixMicro(),
			EventParams: &types.EventParams{
				OrderTotal:    107.48,
				ShippingValue: 12.50,
				Products:      []types.ProductLine{{ItemID: 111, Price: 44.99, Quantity: 2}},
			},
		},
	}

	inserted, err := repo.InsertEvents(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	// Re-ingestion of the same (pseudo id, timestamp) pair is a no-op.
	inserted, err = repo.InsertEvents(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)

	var count int64
	require.NoError(t, gdb.Model(&models.GAEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInsertEventsEmptySlice(t *testing.T) {
	repo := NewRepository(setupAnalyticsTestDB(t))

	inserted, err := repo.InsertEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestFindTaggedEventsFiltersReferral(t *testing.T) {
	gdb := setupAnalyticsTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	base := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	seed := []models.GAEvent{
		taggedEvent("user-1", base, "google", "spring_sale"),
		taggedEvent("user-1", base.Add(time.Hour), "shop.app", referralCampaign),
		taggedEvent("user-1", base.Add(2*time.Hour), "bing", ""),
		taggedEvent("user-1", base.Add(3*time.Hour), "", ""),
		taggedEvent("user-2", base, "google", "other"),
	}
	_, err := repo.InsertEvents(ctx, seed)
	require.NoError(t, err)

	strict, err := repo.FindTaggedEvents(ctx, "user-1", false)
	require.NoError(t, err)
	require.Len(t, strict, 2, "untagged and referral rows are excluded")
	assert.Equal(t, "bing", *strict[0].UTMSource, "newest first")
	assert.Equal(t, "google", *strict[1].UTMSource)

	relaxed, err := repo.FindTaggedEvents(ctx, "user-1", true)
	require.NoError(t, err)
	require.Len(t, relaxed, 3)
	assert.Equal(t, referralCampaign, *relaxed[1].UTMCampaign)
}

func TestLatestEventTimestamp(t *testing.T) {
	gdb := setupAnalyticsTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	latest, err := repo.LatestEventTimestamp(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest, "empty table yields nil")

	base := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	_, err = repo.InsertEvents(ctx, []models.GAEvent{
		taggedEvent("user-1", base, "google", ""),
		taggedEvent("user-1", base.Add(time.Hour), "google", ""),
	})
	require.NoError(t, err)

	latest, err = repo.LatestEventTimestamp(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Equal(base.Add(time.Hour)))
}
