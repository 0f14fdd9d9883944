package attribution

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/attribution-backend/internal/analytics"
	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEventStore struct {
	candidates []models.GAEvent
	strict     []models.GAEvent
	relaxed    []models.GAEvent
	candErr    error
}

func (s *stubEventStore) FindPurchaseCandidates(context.Context, analytics.CandidateQuery) ([]models.GAEvent, error) {
	return s.candidates, s.candErr
}

func (s *stubEventStore) FindTaggedEvents(_ context.Context, _ string, includeReferral bool) ([]models.GAEvent, error) {
	if includeReferral {
		return s.relaxed, nil
	}
	return s.strict, nil
}

func taggedAt(at time.Time, source, campaign string) models.GAEvent {
	event := models.GAEvent{
		GAUserPseudoID: "user-1",
		EventName:      "page_view",
		EventTimestamp: at,
	}
	if source != "" {
		event.UTMSource = &source
	}
	if campaign != "" {
		event.UTMCampaign = &campaign
	}
	return event
}

func TestResolvePicksClosestPriorTouchpoint(t *testing.T) {
	purchase := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	store := &stubEventStore{strict: []models.GAEvent{
		taggedAt(purchase.Add(-time.Hour), "bing", "brand"),        // 3600s before
		taggedAt(purchase.Add(-30*time.Minute), "google", "sale"),  // 1800s before, wins
		taggedAt(purchase.Add(-10*24*time.Hour), "email", "drip"),  // far out
		taggedAt(purchase.Add(10*time.Minute), "direct", "late"),   // after, never credited
	}}

	attr, err := NewResolver(store).Resolve(context.Background(), "user-1", purchase)
	require.NoError(t, err)
	assert.Equal(t, "user-1", attr.PseudoID)
	require.NotNil(t, attr.Source)
	assert.Equal(t, "google", *attr.Source)
	require.NotNil(t, attr.Campaign)
	assert.Equal(t, "sale", *attr.Campaign)
}

func TestResolveFallsBackToReferral(t *testing.T) {
	purchase := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	store := &stubEventStore{
		// Strict pass only sees touchpoints after the purchase.
		strict: []models.GAEvent{taggedAt(purchase.Add(time.Hour), "google", "sale")},
		relaxed: []models.GAEvent{
			taggedAt(purchase.Add(time.Hour), "google", "sale"),
			taggedAt(purchase.Add(-20*time.Minute), "shop.app", "(referral)"),
		},
	}

	attr, err := NewResolver(store).Resolve(context.Background(), "user-1", purchase)
	require.NoError(t, err)
	require.NotNil(t, attr.Campaign)
	assert.Equal(t, "(referral)", *attr.Campaign)
}

func TestResolveStrictPassBeatsReferral(t *testing.T) {
	purchase := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	store := &stubEventStore{
		strict: []models.GAEvent{taggedAt(purchase.Add(-2*time.Hour), "google", "sale")},
		relaxed: []models.GAEvent{
			// A referral sits closer to the purchase, but the strict pass
			// already produced a winner so this is never consulted.
			taggedAt(purchase.Add(-5*time.Minute), "shop.app", "(referral)"),
			taggedAt(purchase.Add(-2*time.Hour), "google", "sale"),
		},
	}

	attr, err := NewResolver(store).Resolve(context.Background(), "user-1", purchase)
	require.NoError(t, err)
	require.NotNil(t, attr.Source)
	assert.Equal(t, "google", *attr.Source)
}

func TestResolveNoTouchpointKeepsIdentity(t *testing.T) {
	purchase := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	store := &stubEventStore{}

	attr, err := NewResolver(store).Resolve(context.Background(), "user-1", purchase)
	require.NoError(t, err)
	assert.Equal(t, "user-1", attr.PseudoID)
	assert.Nil(t, attr.Source)
	assert.Nil(t, attr.Campaign)
	assert.Nil(t, attr.Medium)
	assert.Nil(t, attr.Term)
}

func TestClosestPriorScansAllEvents(t *testing.T) {
	purchase := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	// Newest-first ordering as produced by the store; the first rows sit
	// after the purchase and must not short-circuit the scan.
	events := []models.GAEvent{
		taggedAt(purchase.Add(2*time.Hour), "late-a", ""),
		taggedAt(purchase.Add(time.Hour), "late-b", ""),
		taggedAt(purchase.Add(-45*time.Minute), "winner", ""),
		taggedAt(purchase.Add(-3*time.Hour), "older", ""),
	}

	winner, ok := closestPrior(purchase, events)
	require.True(t, ok)
	assert.Equal(t, "winner", *winner.UTMSource)
}
