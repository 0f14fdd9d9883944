package attribution

import (
	"context"

	"github.com/angelmondragon/attribution-backend/internal/analytics"
	"github.com/angelmondragon/attribution-backend/pkg/db/models"
)

// BuildCandidateQuery shapes the event lookup for one order: a window of one
// calendar day either side of the order date, exact monetary fields and the
// order's product triples as the containment probe.
func BuildCandidateQuery(order models.Order) analytics.CandidateQuery {
	orderDate := order.ShopifyOrderDate.UTC()
	return analytics.CandidateQuery{
		StartDate:     orderDate.AddDate(0, 0, -1),
		EndDate:       orderDate.AddDate(0, 0, 1),
		OrderTotal:    order.ShopifyOrderTotal,
		ShippingValue: order.ShopifyDeliveryPrice,
		Products:      order.ShopifyOrderProducts.Lines(),
	}
}

// Matcher finds the purchase-family events that can explain an order.
type Matcher struct {
	events EventStore
}

// NewMatcher builds a Matcher over the given event store.
func NewMatcher(events EventStore) *Matcher {
	return &Matcher{events: events}
}

// Candidates returns the events matching the order's window, totals and
// products, ordered oldest first.
func (m *Matcher) Candidates(ctx context.Context, order models.Order) ([]models.GAEvent, error) {
	return m.events.FindPurchaseCandidates(ctx, BuildCandidateQuery(order))
}
