package reports

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
)

// reporter is the slice of the GA4 Data API client the service needs.
type reporter interface {
	FetchYesterday(ctx context.Context) ([]CampaignMetrics, error)
}

// AdSpendParams wires the ad spend service's dependencies.
type AdSpendParams struct {
	Reporter reporter
	Repo     Repository
	Logger   *logger.Logger
	CSVPath  string
}

// AdSpendService refreshes the ad_spend table from the reporting API and,
// when configured, an exported ads CSV.
type AdSpendService struct {
	reporter reporter
	repo     Repository
	logg     *logger.Logger
	csvPath  string
	now      func() time.Time
}

// NewAdSpendService validates params and builds an AdSpendService.
func NewAdSpendService(params AdSpendParams) (*AdSpendService, error) {
	if params.Reporter == nil {
		return nil, errors.New("ads reporter is required")
	}
	if params.Repo == nil {
		return nil, errors.New("ad spend repository is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &AdSpendService{
		reporter: params.Reporter,
		repo:     params.Repo,
		logg:     params.Logger,
		csvPath:  params.CSVPath,
		now:      time.Now,
	}, nil
}

// WithNow overrides the clock, used by tests.
func (s *AdSpendService) WithNow(now func() time.Time) *AdSpendService {
	if now != nil {
		s.now = now
	}
	return s
}

// Run pulls yesterday's campaign performance and upserts one spend row per
// campaign. A configured CSV export is folded in afterwards; its rows carry
// their own dates.
func (s *AdSpendService) Run(ctx context.Context) error {
	metrics, err := s.reporter.FetchYesterday(ctx)
	if err != nil {
		return fmt.Errorf("fetching ads report: %w", err)
	}

	yesterday := s.now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	rows := make([]models.AdSpendRow, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, models.AdSpendRow{
			ReportDate:   yesterday,
			CampaignName: NormalizeCampaign(m.CampaignName),
			Impressions:  m.Impressions,
			Clicks:       m.Clicks,
			Cost:         m.Cost,
			Purchases:    m.Purchases,
			Revenue:      m.Revenue,
		})
	}
	if err := s.repo.UpsertSpend(ctx, rows); err != nil {
		return err
	}
	s.logg.Info(ctx, fmt.Sprintf("stored %d ad spend rows for %s", len(rows), yesterday.Format("2006-01-02")))

	if s.csvPath == "" {
		return nil
	}
	return s.foldInCSV(ctx)
}

func (s *AdSpendService) foldInCSV(ctx context.Context) error {
	csvRows, err := LoadAdsCSV(s.csvPath)
	if err != nil {
		return fmt.Errorf("loading ads csv: %w", err)
	}

	rows := aggregateCSV(csvRows)
	if err := s.repo.UpsertSpend(ctx, rows); err != nil {
		return err
	}
	s.logg.Info(ctx, fmt.Sprintf("folded %d csv spend rows from %s", len(rows), s.csvPath))
	return nil
}

// aggregateCSV collapses per-URL csv rows to one row per day and campaign.
// Spend is summed fractionally and rounded once per row, so sub-unit costs
// spread over many URLs still add up.
func aggregateCSV(csvRows []AdsCSVRow) []models.AdSpendRow {
	type key struct {
		date     time.Time
		campaign string
	}
	type totals struct {
		impressions int64
		clicks      int64
		cost        float64
	}
	grouped := map[key]*totals{}
	order := make([]key, 0, len(csvRows))
	for _, row := range csvRows {
		k := key{date: row.Date, campaign: row.CampaignName}
		agg, ok := grouped[k]
		if !ok {
			agg = &totals{}
			grouped[k] = agg
			order = append(order, k)
		}
		agg.impressions += row.Impressions
		agg.clicks += row.Clicks
		agg.cost += row.Cost
	}

	rows := make([]models.AdSpendRow, 0, len(grouped))
	for _, k := range order {
		agg := grouped[k]
		rows = append(rows, models.AdSpendRow{
			ReportDate:   k.date,
			CampaignName: k.campaign,
			Impressions:  agg.impressions,
			Clicks:       agg.clicks,
			Cost:         int64(math.Round(agg.cost)),
		})
	}
	return rows
}
