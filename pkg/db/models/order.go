package models

import (
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db/types"
	"github.com/shopspring/decimal"
)

// Order is a storefront order awaiting (or holding) marketing attribution.
// GAUserPseudoID and the UTM fields start NULL and are written exactly once
// by the attribution resolver.
type Order struct {
	ShopifyOrderID       int64               `gorm:"column:shopify_order_id;primaryKey;autoIncrement:false"`
	ShopifyCustomerID    *int64              `gorm:"column:shopify_customer_id"`
	ShopifyOrderDate     time.Time           `gorm:"column:shopify_order_date;not null"`
	ShopifyOrderTotal    decimal.Decimal     `gorm:"column:shopify_order_total;type:numeric(12,2);not null"`
	ShopifyDeliveryPrice decimal.Decimal     `gorm:"column:shopify_delivery_price;type:numeric(12,2);not null"`
	ShopifyOrderProducts types.OrderProducts `gorm:"column:shopify_order_products;type:jsonb;serializer:json"`
	GAUserPseudoID       *string             `gorm:"column:ga_user_pseudo_id"`
	UTMSource            *string             `gorm:"column:utm_source"`
	UTMCampaign          *string             `gorm:"column:utm_campaign"`
	UTMMedium            *string             `gorm:"column:utm_medium"`
	UTMTerm              *string             `gorm:"column:utm_term"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

// Attributed reports whether the order already has an analytics identity.
func (o Order) Attributed() bool {
	return o.GAUserPseudoID != nil && *o.GAUserPseudoID != ""
}
