package orders

import "time"

// RawOrder is a storefront order as received from the admin API, before any
// persistence shaping.
type RawOrder struct {
	ID         int64         `json:"id" validate:"required"`
	CreatedAt  time.Time     `json:"created_at" validate:"required"`
	TotalPrice string        `json:"total_price" validate:"required"`
	Phone      *string       `json:"phone"`
	Customer   *RawCustomer  `json:"customer"`
	LineItems  []RawLineItem `json:"line_items" validate:"dive"`
}

// RawCustomer is the customer block attached to a raw order.
type RawCustomer struct {
	ID        int64      `json:"id" validate:"required"`
	Email     *string    `json:"email"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	CreatedAt *time.Time `json:"created_at"`
}

// RawLineItem is a purchased product line on a raw order. URL is resolved by
// the source from the product id.
type RawLineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	URL       string `json:"url"`
}

// Attribution is the analytics identity written onto an order once the
// resolver picks a winning touchpoint.
type Attribution struct {
	PseudoID string
	Source   *string
	Campaign *string
	Medium   *string
	Term     *string
}

// CampaignRevenue aggregates attributed order revenue per campaign.
type CampaignRevenue struct {
	Campaign string
	Orders   int64
	Revenue  float64
}
