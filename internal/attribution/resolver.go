package attribution

import (
	"context"
	"time"

	"github.com/angelmondragon/attribution-backend/internal/orders"
	"github.com/angelmondragon/attribution-backend/pkg/db/models"
)

// Resolver picks the marketing touchpoint that gets credit for a purchase.
type Resolver struct {
	events EventStore
}

// NewResolver builds a Resolver over the given event store.
func NewResolver(events EventStore) *Resolver {
	return &Resolver{events: events}
}

// Resolve walks the visitor's traffic-tagged events and credits the one
// closest before the purchase. Referral-campaign touchpoints only count when
// no other tagged event precedes the purchase. When the visitor has no
// usable touchpoint at all, the attribution carries the identity with empty
// UTM fields.
func (r *Resolver) Resolve(ctx context.Context, pseudoID string, purchaseTime time.Time) (orders.Attribution, error) {
	for _, includeReferral := range []bool{false, true} {
		events, err := r.events.FindTaggedEvents(ctx, pseudoID, includeReferral)
		if err != nil {
			return orders.Attribution{}, err
		}
		if winner, ok := closestPrior(purchaseTime, events); ok {
			return orders.Attribution{
				PseudoID: pseudoID,
				Source:   winner.UTMSource,
				Campaign: winner.UTMCampaign,
				Medium:   winner.UTMMedium,
				Term:     winner.UTMTerm,
			}, nil
		}
	}
	return orders.Attribution{PseudoID: pseudoID}, nil
}

// closestPrior scans every event and keeps the one with the smallest
// strictly-positive gap before the purchase. Events at or after the purchase
// time never receive credit.
func closestPrior(purchaseTime time.Time, events []models.GAEvent) (models.GAEvent, bool) {
	found := false
	var winner models.GAEvent
	var best time.Duration
	for _, event := range events {
		gap := purchaseTime.Sub(event.EventTimestamp)
		if gap <= 0 {
			continue
		}
		if !found || gap < best {
			winner = event
			best = gap
			found = true
		}
	}
	return winner, found
}
