package reports

import (
	"encoding/csv"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const costMicrosPerUnit = 1_000_000

var adsCSVColumns = []string{
	"segments.date",
	"campaign.name",
	"expanded_landing_page_view.expanded_final_url",
	"metrics.impressions",
	"metrics.clicks",
	"metrics.conversions",
	"metrics.cost_micros",
}

// LoadAdsCSV parses an ads landing-page export. Rows with unparseable
// numbers or dates are dropped rather than failing the whole file.
func LoadAdsCSV(path string) ([]AdsCSVRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ads csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ads csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ads csv is empty")
	}

	columns := map[string]int{}
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range adsCSVColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("ads csv is missing column %q", required)
		}
	}

	var rows []AdsCSVRow
	for _, record := range records[1:] {
		row, err := parseAdsCSVRow(record, columns)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseAdsCSVRow(record []string, columns map[string]int) (AdsCSVRow, error) {
	field := func(name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := time.Parse("2006-01-02", field("segments.date"))
	if err != nil {
		return AdsCSVRow{}, err
	}
	impressions, err := strconv.ParseInt(field("metrics.impressions"), 10, 64)
	if err != nil {
		return AdsCSVRow{}, err
	}
	clicks, err := strconv.ParseInt(field("metrics.clicks"), 10, 64)
	if err != nil {
		return AdsCSVRow{}, err
	}
	conversions, err := strconv.ParseFloat(field("metrics.conversions"), 64)
	if err != nil {
		return AdsCSVRow{}, err
	}
	costMicros, err := strconv.ParseInt(field("metrics.cost_micros"), 10, 64)
	if err != nil {
		return AdsCSVRow{}, err
	}

	finalURL := field("expanded_landing_page_view.expanded_final_url")
	return AdsCSVRow{
		Date:          date,
		CampaignName:  NormalizeCampaign(field("campaign.name")),
		FinalURL:      finalURL,
		CleanURL:      CleanURL(finalURL),
		TargetPage:    TargetPage(finalURL),
		Gbraid:        QueryParam(finalURL, "gbraid"),
		GadCampaignID: QueryParam(finalURL, "gad_campaignid"),
		Impressions:   impressions,
		Clicks:        clicks,
		Conversions:   conversions,
		Cost:          float64(costMicros) / costMicrosPerUnit,
	}, nil
}

// QueryParam returns the first value of a query parameter on url, or "".
func QueryParam(raw, key string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Query().Get(key)
}

// CleanURL strips the query string from a url.
func CleanURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.RawQuery = ""
	return parsed.String()
}

var targetPageCleaner = regexp.MustCompile(`[^a-zA-Z0-9/\-]`)

// TargetPage reduces a url to its path with only portable characters kept.
func TargetPage(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return targetPageCleaner.ReplaceAllString(parsed.Path, "")
}

var campaignDatePattern = regexp.MustCompile(`(\d{2})\.(\d{2})\.\d{4}`)

// NormalizeCampaign lowers the campaign name, replaces spaces with
// underscores and collapses dd.mm.yyyy date stamps to ddmm so spend rows
// line up with the utm_campaign values seen in analytics.
func NormalizeCampaign(name string) string {
	normalized := strings.ToLower(name)
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = campaignDatePattern.ReplaceAllString(normalized, "$1$2")
	normalized = strings.ReplaceAll(normalized, ".", "")
	return normalized
}
