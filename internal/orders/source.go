package orders

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/shopify"
)

// storefront is the slice of the admin API client the source needs.
type storefront interface {
	FetchOrders(ctx context.Context, since time.Time) ([]shopify.Order, error)
	ProductURL(productID int64) string
}

type shopifySource struct {
	client storefront
}

// NewShopifySource builds an OrderSource backed by the admin API client.
func NewShopifySource(client storefront) (OrderSource, error) {
	if client == nil {
		return nil, errors.New("storefront client is required")
	}
	return &shopifySource{client: client}, nil
}

func (s *shopifySource) FetchOrders(ctx context.Context, since time.Time) ([]RawOrder, error) {
	wireOrders, err := s.client.FetchOrders(ctx, since)
	if err != nil {
		return nil, err
	}

	raws := make([]RawOrder, 0, len(wireOrders))
	for _, wire := range wireOrders {
		raws = append(raws, s.toRaw(wire))
	}
	return raws, nil
}

func (s *shopifySource) toRaw(wire shopify.Order) RawOrder {
	raw := RawOrder{
		ID:         wire.ID,
		CreatedAt:  wire.CreatedAt,
		TotalPrice: wire.TotalPrice,
	}
	if wire.BillingAddress != nil {
		raw.Phone = wire.BillingAddress.Phone
	}
	if wire.Customer != nil {
		raw.Customer = &RawCustomer{
			ID:        wire.Customer.ID,
			Email:     wire.Customer.Email,
			FirstName: wire.Customer.FirstName,
			LastName:  wire.Customer.LastName,
			CreatedAt: wire.Customer.CreatedAt,
		}
	}
	raw.LineItems = make([]RawLineItem, 0, len(wire.LineItems))
	for _, item := range wire.LineItems {
		raw.LineItems = append(raw.LineItems, RawLineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			URL:       s.client.ProductURL(item.ProductID),
		})
	}
	return raw
}
