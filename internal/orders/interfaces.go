package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the orders/customers tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpsertCustomer(ctx context.Context, customer *models.Customer) error
	InsertOrder(ctx context.Context, order *models.Order) (bool, error)
	LatestOrderDate(ctx context.Context) (*time.Time, error)
	FindUnattributed(ctx context.Context, floor time.Time) ([]models.Order, error)
	SetAttribution(ctx context.Context, orderID int64, attr Attribution) (bool, error)
	RevenueByCampaign(ctx context.Context, since time.Time) ([]CampaignRevenue, error)
}

// OrderSource supplies raw orders from the storefront.
type OrderSource interface {
	FetchOrders(ctx context.Context, since time.Time) ([]RawOrder, error)
}
