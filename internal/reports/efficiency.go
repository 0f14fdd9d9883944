package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/attribution-backend/internal/orders"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
)

// Campaigns inside this band of their spend are treated as break-even.
const (
	profitableROAS = 1.2
	breakEvenROAS  = 0.8
)

// revenueStore is the slice of the orders repository the report needs.
type revenueStore interface {
	RevenueByCampaign(ctx context.Context, since time.Time) ([]orders.CampaignRevenue, error)
}

// spendStore is the slice of the ad spend repository the report needs.
type spendStore interface {
	SpendByCampaign(ctx context.Context, since time.Time) ([]CampaignSpend, error)
}

// EfficiencyParams wires the efficiency report's dependencies.
type EfficiencyParams struct {
	Revenue revenueStore
	Spend   spendStore
	Logger  *logger.Logger
}

// EfficiencyService joins ad spend against attributed order revenue per
// campaign. Read-only: it never mutates orders or events.
type EfficiencyService struct {
	revenue revenueStore
	spend   spendStore
	logg    *logger.Logger
}

// NewEfficiencyService validates params and builds an EfficiencyService.
func NewEfficiencyService(params EfficiencyParams) (*EfficiencyService, error) {
	if params.Revenue == nil {
		return nil, errors.New("revenue store is required")
	}
	if params.Spend == nil {
		return nil, errors.New("spend store is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &EfficiencyService{
		revenue: params.Revenue,
		spend:   params.Spend,
		logg:    params.Logger,
	}, nil
}

// Build joins spend and revenue since the given time, campaign by campaign.
// Campaigns appearing on either side only still get a row.
func (s *EfficiencyService) Build(ctx context.Context, since time.Time) ([]EfficiencyRow, error) {
	spends, err := s.spend.SpendByCampaign(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("loading campaign spend: %w", err)
	}
	revenues, err := s.revenue.RevenueByCampaign(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("loading campaign revenue: %w", err)
	}

	byCampaign := map[string]*EfficiencyRow{}
	for _, spend := range spends {
		byCampaign[spend.Campaign] = &EfficiencyRow{
			Campaign: spend.Campaign,
			Spend:    float64(spend.Spend),
		}
	}
	for _, revenue := range revenues {
		campaign := NormalizeCampaign(revenue.Campaign)
		row, ok := byCampaign[campaign]
		if !ok {
			row = &EfficiencyRow{Campaign: campaign}
			byCampaign[campaign] = row
		}
		row.Revenue += revenue.Revenue
		row.Orders += revenue.Orders
	}

	rows := make([]EfficiencyRow, 0, len(byCampaign))
	for _, row := range byCampaign {
		row.Verdict = Classify(row.Spend, row.Revenue)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Spend != rows[j].Spend {
			return rows[i].Spend > rows[j].Spend
		}
		return rows[i].Campaign < rows[j].Campaign
	})

	s.logg.Info(ctx, fmt.Sprintf("efficiency report built for %d campaigns", len(rows)))
	return rows, nil
}

// Classify buckets a campaign by its return on ad spend. Unpaid campaigns
// with revenue count as profitable; paid campaigns without revenue are
// waste.
func Classify(spend, revenue float64) Verdict {
	if spend <= 0 {
		if revenue > 0 {
			return VerdictProfitable
		}
		return VerdictBreakEven
	}
	roas := revenue / spend
	switch {
	case roas >= profitableROAS:
		return VerdictProfitable
	case roas >= breakEvenROAS:
		return VerdictBreakEven
	default:
		return VerdictWaste
	}
}
