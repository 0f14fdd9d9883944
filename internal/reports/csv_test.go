package reports

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adsCSVFixture = `segments.date,campaign.name,expanded_landing_page_view.expanded_final_url,metrics.impressions,metrics.clicks,metrics.conversions,metrics.cost_micros
2025-01-09,Spring Sale 10.01.2025,https://shop.example.com/products/lamp?gbraid=0AAbb&gad_campaignid=987,1200,45,3.5,12500000
2025-01-09,Brand,https://shop.example.com/,300,12,1.0,4000000
2025-01-09,Broken,https://shop.example.com/x,not-a-number,1,1.0,100
`

func writeAdsCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ads_url_report.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAdsCSV(t *testing.T) {
	rows, err := LoadAdsCSV(writeAdsCSV(t, adsCSVFixture))
	require.NoError(t, err)
	require.Len(t, rows, 2, "rows with unparseable numbers are dropped")

	first := rows[0]
	assert.Equal(t, time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "spring_sale_1001", first.CampaignName)
	assert.Equal(t, "https://shop.example.com/products/lamp", first.CleanURL)
	assert.Equal(t, "/products/lamp", first.TargetPage)
	assert.Equal(t, "0AAbb", first.Gbraid)
	assert.Equal(t, "987", first.GadCampaignID)
	assert.Equal(t, int64(1200), first.Impressions)
	assert.Equal(t, int64(45), first.Clicks)
	assert.Equal(t, 3.5, first.Conversions)
	assert.InDelta(t, 12.5, first.Cost, 1e-9, "cost micros keep their fractional part")
}

func TestParseAdsCSVRowKeepsSubUnitCost(t *testing.T) {
	fixture := `segments.date,campaign.name,expanded_landing_page_view.expanded_final_url,metrics.impressions,metrics.clicks,metrics.conversions,metrics.cost_micros
2025-01-09,Brand,https://shop.example.com/,300,12,1.0,1500000
`
	rows, err := LoadAdsCSV(writeAdsCSV(t, fixture))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 1.5, rows[0].Cost, 1e-9, "1,500,000 micros is 1.5 units, not 1")
}

func TestAggregateCSVRoundsSummedCost(t *testing.T) {
	date := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	rows := aggregateCSV([]AdsCSVRow{
		{Date: date, CampaignName: "brand", Impressions: 100, Clicks: 4, Cost: 0.75},
		{Date: date, CampaignName: "brand", Impressions: 50, Clicks: 1, Cost: 0.75},
		{Date: date, CampaignName: "other", Impressions: 10, Clicks: 1, Cost: 0.40},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "brand", rows[0].CampaignName)
	assert.Equal(t, int64(150), rows[0].Impressions)
	assert.Equal(t, int64(5), rows[0].Clicks)
	assert.Equal(t, int64(2), rows[0].Cost, "two 0.75 rows round to 2 after summing, not 0+0")
	assert.Equal(t, int64(0), rows[1].Cost, "0.40 alone rounds down")
}

func TestLoadAdsCSVMissingColumn(t *testing.T) {
	_, err := LoadAdsCSV(writeAdsCSV(t, "segments.date,campaign.name\n2025-01-09,Brand\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestLoadAdsCSVMissingFile(t *testing.T) {
	_, err := LoadAdsCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestQueryParamAndCleanURL(t *testing.T) {
	raw := "https://shop.example.com/products/lamp?utm_source=google&gbraid=abc"
	assert.Equal(t, "abc", QueryParam(raw, "gbraid"))
	assert.Equal(t, "", QueryParam(raw, "gad_campaignid"))
	assert.Equal(t, "https://shop.example.com/products/lamp", CleanURL(raw))
}

func TestTargetPageStripsNoise(t *testing.T) {
	assert.Equal(t, "/products/lamp-2", TargetPage("https://shop.example.com/products/lamp%20-2?x=1"))
	assert.Equal(t, "", TargetPage("://bad"))
}

func TestNormalizeCampaign(t *testing.T) {
	assert.Equal(t, "spring_sale_1001", NormalizeCampaign("Spring Sale 10.01.2025"))
	assert.Equal(t, "brand", NormalizeCampaign("Brand"))
	assert.Equal(t, "promo_v2", NormalizeCampaign("Promo v.2"))
}
