package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/attribution-backend/api/responses"
	"github.com/angelmondragon/attribution-backend/api/validators"
	"github.com/angelmondragon/attribution-backend/internal/reports"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
)

const (
	defaultReportDays = 7
	maxReportDays     = 90
)

// EfficiencyBuilder builds the campaign efficiency report.
type EfficiencyBuilder interface {
	Build(ctx context.Context, since time.Time) ([]reports.EfficiencyRow, error)
}

// EfficiencyReport serves spend-versus-revenue rows for the last N days.
func EfficiencyReport(logg *logger.Logger, builder EfficiencyBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		days, err := validators.ParseQueryInt(r, "days", defaultReportDays, 1, maxReportDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		since := time.Now().UTC().AddDate(0, 0, -days)
		rows, err := builder.Build(ctx, since)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"since":     since.Format("2006-01-02"),
			"campaigns": rows,
		})
	}
}
