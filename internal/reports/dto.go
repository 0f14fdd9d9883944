package reports

import "time"

// CampaignMetrics is one row of the ads performance report, already rounded
// to whole currency units the way the dashboard consumes them.
type CampaignMetrics struct {
	CampaignName string
	Impressions  int64
	Clicks       int64
	Cost         int64
	Purchases    int64
	Revenue      int64
}

// AdsCSVRow is one parsed line of the ads landing-page export.
type AdsCSVRow struct {
	Date          time.Time
	CampaignName  string
	FinalURL      string
	CleanURL      string
	TargetPage    string
	Gbraid        string
	GadCampaignID string
	Impressions   int64
	Clicks        int64
	Conversions   float64
	Cost          float64
}

// EfficiencyRow joins one campaign's spend against its attributed revenue.
type EfficiencyRow struct {
	Campaign string  `json:"campaign"`
	Spend    float64 `json:"spend"`
	Revenue  float64 `json:"revenue"`
	Orders   int64   `json:"orders"`
	Verdict  Verdict `json:"verdict"`
}

// Verdict classifies a campaign's spend efficiency.
type Verdict string

const (
	VerdictProfitable Verdict = "profitable"
	VerdictBreakEven  Verdict = "break_even"
	VerdictWaste      Verdict = "waste"
)
