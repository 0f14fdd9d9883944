package orders

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db"
	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// UpsertCustomer inserts the customer or refreshes its contact fields when
// the storefront id already exists.
func (r *repository) UpsertCustomer(ctx context.Context, customer *models.Customer) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "shopify_customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"shopify_customer_email",
				"shopify_customer_phone",
				"shopify_customer_first_name",
				"shopify_customer_last_name",
			}),
		}).
		Create(customer).Error
	if err != nil {
		return db.MapIntegrityError(err, "upserting customer")
	}
	return nil
}

// InsertOrder persists the order unless its storefront id is already known.
// Returns true when a row was written.
func (r *repository) InsertOrder(ctx context.Context, order *models.Order) (bool, error) {
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shopify_order_id"}},
			DoNothing: true,
		}).
		Create(order)
	if tx.Error != nil {
		return false, db.MapIntegrityError(tx.Error, "inserting order")
	}
	return tx.RowsAffected > 0, nil
}

// LatestOrderDate returns the newest stored order date, or nil when the
// table is empty.
func (r *repository) LatestOrderDate(ctx context.Context) (*time.Time, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Order("shopify_order_date DESC").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	latest := order.ShopifyOrderDate
	return &latest, nil
}

// FindUnattributed returns orders without an analytics identity placed at or
// after floor, oldest first.
func (r *repository) FindUnattributed(ctx context.Context, floor time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("ga_user_pseudo_id IS NULL").
		Where("shopify_order_date >= ?", floor).
		Order("shopify_order_date ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// utmValue coalesces a missing UTM field to the empty string. Attributed
// orders always carry non-null UTM columns, so a row with '' values reads as
// "resolved, no touchpoint found" while NULL means "not yet processed".
func utmValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SetAttribution writes the analytics identity onto an order. The guard on
// ga_user_pseudo_id keeps the write one-shot: an order attributed by an
// earlier run (or a concurrent one) is left untouched. Returns true when the
// row was updated.
func (r *repository) SetAttribution(ctx context.Context, orderID int64, attr Attribution) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("shopify_order_id = ?", orderID).
		Where("ga_user_pseudo_id IS NULL").
		Updates(map[string]any{
			"ga_user_pseudo_id": attr.PseudoID,
			"utm_source":        utmValue(attr.Source),
			"utm_campaign":      utmValue(attr.Campaign),
			"utm_medium":        utmValue(attr.Medium),
			"utm_term":          utmValue(attr.Term),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// RevenueByCampaign aggregates attributed order revenue per campaign for
// orders placed at or after since. Orders attributed without a touchpoint
// carry an empty campaign and are left out.
func (r *repository) RevenueByCampaign(ctx context.Context, since time.Time) ([]CampaignRevenue, error) {
	var rows []CampaignRevenue
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("utm_campaign AS campaign, COUNT(*) AS orders, SUM(shopify_order_total) AS revenue").
		Where("ga_user_pseudo_id IS NOT NULL").
		Where("utm_campaign IS NOT NULL").
		Where("utm_campaign <> ''").
		Where("shopify_order_date >= ?", since).
		Group("utm_campaign").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
