package analytics

import (
	"context"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"github.com/angelmondragon/attribution-backend/pkg/db/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CandidateQuery narrows ga_events to rows that can explain a given order.
// StartDate/EndDate are inclusive calendar-day bounds.
type CandidateQuery struct {
	StartDate     time.Time
	EndDate       time.Time
	OrderTotal    decimal.Decimal
	ShippingValue decimal.Decimal
	Products      []types.ProductLine
}

// Repository defines persistence operations for the ga_events table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertEvents(ctx context.Context, events []models.GAEvent) (int64, error)
	FindPurchaseCandidates(ctx context.Context, query CandidateQuery) ([]models.GAEvent, error)
	FindTaggedEvents(ctx context.Context, pseudoID string, includeReferral bool) ([]models.GAEvent, error)
	LatestEventTimestamp(ctx context.Context) (*time.Time, error)
}

// EventSource supplies raw events from the warehouse export.
type EventSource interface {
	FetchEvents(ctx context.Context, window Window) ([]RawEvent, error)
}
