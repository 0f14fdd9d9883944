package reports

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/angelmondragon/attribution-backend/pkg/config"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// AdsReporter pulls ads performance from the GA4 Data API.
type AdsReporter struct {
	svc        *analyticsdata.Service
	propertyID string
}

// NewAdsReporter builds a GA4 Data API reporter for the configured property.
func NewAdsReporter(ctx context.Context, gcp config.GCPConfig, cfg config.AdsReportConfig) (*AdsReporter, error) {
	propertyID := strings.TrimSpace(cfg.GA4PropertyID)
	if propertyID == "" {
		return nil, errors.New("ga4 property id is required")
	}

	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}

	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating analytics data service: %w", err)
	}
	return &AdsReporter{svc: svc, propertyID: propertyID}, nil
}

// FetchYesterday runs the campaign performance report for yesterday and
// returns one row per Google Ads campaign.
func (r *AdsReporter) FetchYesterday(ctx context.Context) ([]CampaignMetrics, error) {
	request := &analyticsdata.RunReportRequest{
		Dimensions: []*analyticsdata.Dimension{
			{Name: "googleAdsCampaignName"},
		},
		Metrics: []*analyticsdata.Metric{
			{Name: "advertiserAdImpressions"},
			{Name: "advertiserAdClicks"},
			{Name: "advertiserAdCost"},
			{Name: "totalPurchasers"},
			{Name: "purchaseRevenue"},
		},
		DateRanges: []*analyticsdata.DateRange{
			{StartDate: "yesterday", EndDate: "yesterday"},
		},
	}

	response, err := r.svc.Properties.
		RunReport("properties/"+r.propertyID, request).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("running ads report: %w", err)
	}

	return parseReportRows(response)
}

func parseReportRows(response *analyticsdata.RunReportResponse) ([]CampaignMetrics, error) {
	metrics := make([]CampaignMetrics, 0, len(response.Rows))
	for _, row := range response.Rows {
		if len(row.DimensionValues) < 1 || len(row.MetricValues) < 5 {
			continue
		}
		metrics = append(metrics, CampaignMetrics{
			CampaignName: row.DimensionValues[0].Value,
			Impressions:  metricInt(row.MetricValues[0].Value),
			Clicks:       metricInt(row.MetricValues[1].Value),
			Cost:         metricRounded(row.MetricValues[2].Value),
			Purchases:    metricInt(row.MetricValues[3].Value),
			Revenue:      metricRounded(row.MetricValues[4].Value),
		})
	}
	return metrics, nil
}

func metricInt(value string) int64 {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return metricRounded(value)
	}
	return n
}

// metricRounded parses a float-typed metric and rounds it to whole units.
func metricRounded(value string) int64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f))
}
