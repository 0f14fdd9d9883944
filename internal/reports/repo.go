package reports

import (
	"context"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db"
	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampaignSpend aggregates stored ad spend per campaign.
type CampaignSpend struct {
	Campaign string
	Spend    int64
}

// Repository defines persistence operations for the ad_spend table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpsertSpend(ctx context.Context, rows []models.AdSpendRow) error
	SpendByCampaign(ctx context.Context, since time.Time) ([]CampaignSpend, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an ad spend repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// UpsertSpend persists report rows, replacing the metrics of a
// (report date, campaign) pair that was pulled before.
func (r *repository) UpsertSpend(ctx context.Context, rows []models.AdSpendRow) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "report_date"},
				{Name: "campaign_name"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"impressions",
				"clicks",
				"cost",
				"purchases",
				"revenue",
			}),
		}).
		Create(&rows).Error
	if err != nil {
		return db.MapIntegrityError(err, "upserting ad spend")
	}
	return nil
}

// SpendByCampaign sums stored spend per campaign for report dates at or
// after since, highest spend first.
func (r *repository) SpendByCampaign(ctx context.Context, since time.Time) ([]CampaignSpend, error) {
	var rows []CampaignSpend
	err := r.db.WithContext(ctx).
		Model(&models.AdSpendRow{}).
		Select("campaign_name AS campaign, SUM(cost) AS spend").
		Where("report_date >= ?", since).
		Group("campaign_name").
		Order("spend DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
