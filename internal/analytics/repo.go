package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db"
	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const referralCampaign = "(referral)"

const insertBatchSize = 500

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ga_events repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// InsertEvents persists events, silently skipping rows whose
// (pseudo id, timestamp) pair already exists. Returns the number of rows
// actually written.
func (r *repository) InsertEvents(ctx context.Context, events []models.GAEvent) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "ga_user_pseudo_id"},
				{Name: "event_timestamp"},
			},
			DoNothing: true,
		}).
		CreateInBatches(&events, insertBatchSize)
	if tx.Error != nil {
		return 0, db.MapIntegrityError(tx.Error, "inserting ga events")
	}
	return tx.RowsAffected, nil
}

// FindPurchaseCandidates returns purchase-family events inside the query's
// day window whose monetary fields match exactly and whose product list
// contains every queried line. Requires postgres (jsonb containment).
func (r *repository) FindPurchaseCandidates(ctx context.Context, query CandidateQuery) ([]models.GAEvent, error) {
	probe, err := json.Marshal(query.Products)
	if err != nil {
		return nil, fmt.Errorf("encoding product probe: %w", err)
	}

	var events []models.GAEvent
	err = r.db.WithContext(ctx).
		Raw(`
SELECT *
FROM ga_events
WHERE event_name IN ?
  AND DATE(event_timestamp) BETWEEN ? AND ?
  AND (event_params->>'order_total')::numeric = ?
  AND (event_params->>'shipping_value')::numeric = ?
  AND event_params->'products' @> ?::jsonb
ORDER BY event_timestamp ASC`,
			models.PurchaseFamilyEvents,
			query.StartDate.Format("2006-01-02"),
			query.EndDate.Format("2006-01-02"),
			query.OrderTotal,
			query.ShippingValue,
			string(probe),
		).
		Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// FindTaggedEvents returns a visitor's events that carry a traffic source,
// newest first. Referral-campaign rows are excluded unless requested.
func (r *repository) FindTaggedEvents(ctx context.Context, pseudoID string, includeReferral bool) ([]models.GAEvent, error) {
	tx := r.db.WithContext(ctx).
		Where("ga_user_pseudo_id = ?", pseudoID).
		Where("utm_source IS NOT NULL")
	if !includeReferral {
		tx = tx.Where("utm_campaign IS DISTINCT FROM ?", referralCampaign)
	}

	var events []models.GAEvent
	err := tx.Order("event_timestamp DESC").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// LatestEventTimestamp returns the newest stored event time, or nil when the
// table is empty.
func (r *repository) LatestEventTimestamp(ctx context.Context) (*time.Time, error) {
	var event models.GAEvent
	err := r.db.WithContext(ctx).
		Order("event_timestamp DESC").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	latest := event.EventTimestamp
	return &latest, nil
}
