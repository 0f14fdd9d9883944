package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"github.com/angelmondragon/attribution-backend/pkg/db/types"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// bootstrapLookback bounds the first fetch when the orders table is empty.
const bootstrapLookback = 30 * 24 * time.Hour

// txRunner matches the db client's transaction helper.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// IngestorParams wires the order ingestor's dependencies.
type IngestorParams struct {
	Source OrderSource
	Repo   Repository
	Tx     txRunner
	Logger *logger.Logger
}

// Ingestor copies storefront orders into the local orders table.
type Ingestor struct {
	source   OrderSource
	repo     Repository
	tx       txRunner
	logg     *logger.Logger
	validate *validator.Validate
	now      func() time.Time
}

// IngestResult summarizes one order ingestion run.
type IngestResult struct {
	Fetched  int
	Inserted int
	Skipped  int
}

// NewIngestor validates params and builds an Ingestor.
func NewIngestor(params IngestorParams) (*Ingestor, error) {
	if params.Source == nil {
		return nil, errors.New("order source is required")
	}
	if params.Repo == nil {
		return nil, errors.New("orders repository is required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Ingestor{
		source:   params.Source,
		repo:     params.Repo,
		tx:       params.Tx,
		logg:     params.Logger,
		validate: validator.New(),
		now:      time.Now,
	}, nil
}

// WithNow overrides the clock, used by tests.
func (i *Ingestor) WithNow(now func() time.Time) *Ingestor {
	if now != nil {
		i.now = now
	}
	return i
}

// Run fetches orders created since the newest stored order and persists each
// one with its customer. Orders that fail validation or price parsing are
// skipped, not fatal.
func (i *Ingestor) Run(ctx context.Context) (IngestResult, error) {
	since, err := i.fetchFloor(ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("resolving fetch floor: %w", err)
	}

	raws, err := i.source.FetchOrders(ctx, since)
	if err != nil {
		return IngestResult{}, fmt.Errorf("fetching storefront orders: %w", err)
	}

	result := IngestResult{Fetched: len(raws)}
	for _, raw := range raws {
		octx := i.logg.WithOrderID(ctx, raw.ID)
		inserted, err := i.ingestOne(octx, raw)
		if err != nil {
			i.logg.Warn(octx, fmt.Sprintf("skipping order: %v", err))
			result.Skipped++
			continue
		}
		if inserted {
			result.Inserted++
		}
	}

	i.logg.Info(ctx, fmt.Sprintf("order ingestion done: fetched=%d inserted=%d skipped=%d",
		result.Fetched, result.Inserted, result.Skipped))
	return result, nil
}

func (i *Ingestor) fetchFloor(ctx context.Context) (time.Time, error) {
	latest, err := i.repo.LatestOrderDate(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if latest == nil {
		return i.now().UTC().Add(-bootstrapLookback), nil
	}
	return *latest, nil
}

func (i *Ingestor) ingestOne(ctx context.Context, raw RawOrder) (bool, error) {
	if err := i.validate.Struct(raw); err != nil {
		return false, fmt.Errorf("invalid order payload: %w", err)
	}

	order, err := buildOrder(raw)
	if err != nil {
		return false, err
	}

	var inserted bool
	err = i.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := i.repo.WithTx(tx)
		if raw.Customer != nil {
			customer := buildCustomer(raw)
			if err := repo.UpsertCustomer(ctx, customer); err != nil {
				return err
			}
			order.ShopifyCustomerID = &customer.ShopifyCustomerID
		}
		var err error
		inserted, err = repo.InsertOrder(ctx, order)
		return err
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func buildCustomer(raw RawOrder) *models.Customer {
	return &models.Customer{
		ShopifyCustomerID: raw.Customer.ID,
		Email:             raw.Customer.Email,
		Phone:             raw.Phone,
		FirstName:         raw.Customer.FirstName,
		LastName:          raw.Customer.LastName,
		CustomerCreatedAt: raw.Customer.CreatedAt,
	}
}

// buildOrder shapes a raw order for persistence. The delivery price is not
// on the payload, so it is derived as total minus the product sum.
func buildOrder(raw RawOrder) (*models.Order, error) {
	total, err := decimal.NewFromString(raw.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("parsing order total %q: %w", raw.TotalPrice, err)
	}

	products := make(types.OrderProducts, 0, len(raw.LineItems))
	productSum := decimal.Zero
	for _, item := range raw.LineItems {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("parsing line item price %q: %w", item.Price, err)
		}
		productSum = productSum.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		products = append(products, types.OrderProduct{
			ItemID:   item.ProductID,
			Name:     item.Name,
			URL:      item.URL,
			Price:    price.InexactFloat64(),
			Quantity: item.Quantity,
		})
	}

	return &models.Order{
		ShopifyOrderID:       raw.ID,
		ShopifyOrderDate:     raw.CreatedAt.UTC(),
		ShopifyOrderTotal:    total.Round(2),
		ShopifyDeliveryPrice: total.Sub(productSum).Round(2),
		ShopifyOrderProducts: products,
	}, nil
}
