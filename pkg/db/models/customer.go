package models

import "time"

// Customer mirrors the storefront customer attached to ingested orders.
type Customer struct {
	ShopifyCustomerID int64      `gorm:"column:shopify_customer_id;primaryKey;autoIncrement:false"`
	Email             *string    `gorm:"column:shopify_customer_email"`
	Phone             *string    `gorm:"column:shopify_customer_phone"`
	FirstName         *string    `gorm:"column:shopify_customer_first_name"`
	LastName          *string    `gorm:"column:shopify_customer_last_name"`
	CustomerCreatedAt *time.Time `gorm:"column:shopify_customer_created_at"`
}

func (Customer) TableName() string { return "customers" }
