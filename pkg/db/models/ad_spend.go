package models

import "time"

// AdSpendRow is one day of ads performance for a campaign, pulled from the
// analytics reporting API. Read-only input for the efficiency report.
type AdSpendRow struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ReportDate   time.Time `gorm:"column:report_date;not null;index:idx_ad_spend_date_campaign,unique"`
	CampaignName string    `gorm:"column:campaign_name;not null;index:idx_ad_spend_date_campaign,unique"`
	Impressions  int64     `gorm:"column:impressions;not null"`
	Clicks       int64     `gorm:"column:clicks;not null"`
	Cost         int64     `gorm:"column:cost;not null"`
	Purchases    int64     `gorm:"column:purchases;not null"`
	Revenue      int64     `gorm:"column:revenue;not null"`
}

func (AdSpendRow) TableName() string { return "ad_spend" }
