package attribution

import (
	"context"
	"time"

	"github.com/angelmondragon/attribution-backend/internal/analytics"
	"github.com/angelmondragon/attribution-backend/internal/orders"
	"github.com/angelmondragon/attribution-backend/pkg/db/models"
)

// EventStore is the slice of the analytics repository the engine needs.
type EventStore interface {
	FindPurchaseCandidates(ctx context.Context, query analytics.CandidateQuery) ([]models.GAEvent, error)
	FindTaggedEvents(ctx context.Context, pseudoID string, includeReferral bool) ([]models.GAEvent, error)
}

// OrderStore is the slice of the orders repository the engine needs.
type OrderStore interface {
	FindUnattributed(ctx context.Context, floor time.Time) ([]models.Order, error)
	SetAttribution(ctx context.Context, orderID int64, attr orders.Attribution) (bool, error)
}
