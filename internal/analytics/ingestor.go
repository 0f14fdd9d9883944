package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
)

const defaultLookback = 48 * time.Hour

// IngestorParams wires the event ingestor's dependencies.
type IngestorParams struct {
	Source   EventSource
	Repo     Repository
	Logger   *logger.Logger
	Lookback time.Duration
}

// Ingestor copies warehouse events into the local ga_events table.
type Ingestor struct {
	source   EventSource
	repo     Repository
	logg     *logger.Logger
	lookback time.Duration
	now      func() time.Time
}

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Fetched  int
	Inserted int64
	Skipped  int
}

// NewIngestor validates params and builds an Ingestor.
func NewIngestor(params IngestorParams) (*Ingestor, error) {
	if params.Source == nil {
		return nil, errors.New("event source is required")
	}
	if params.Repo == nil {
		return nil, errors.New("analytics repository is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	lookback := params.Lookback
	if lookback <= 0 {
		lookback = defaultLookback
	}
	return &Ingestor{
		source:   params.Source,
		repo:     params.Repo,
		logg:     params.Logger,
		lookback: lookback,
		now:      time.Now,
	}, nil
}

// WithNow overrides the clock, used by tests.
func (i *Ingestor) WithNow(now func() time.Time) *Ingestor {
	if now != nil {
		i.now = now
	}
	return i
}

// Run fetches the lookback window from the warehouse, normalizes each event
// and persists the batch. Rows without an identity (pseudo id and timestamp)
// cannot participate in matching and are skipped.
func (i *Ingestor) Run(ctx context.Context) (IngestResult, error) {
	end := i.now().UTC()
	window := Window{Start: end.Add(-i.lookback), End: end}

	raws, err := i.source.FetchEvents(ctx, window)
	if err != nil {
		return IngestResult{}, fmt.Errorf("fetching warehouse events: %w", err)
	}

	result := IngestResult{Fetched: len(raws)}
	batch := make([]models.GAEvent, 0, len(raws))
	for _, raw := range raws {
		norm := Normalize(raw)
		if norm.UserPseudoID == "" || norm.TimestampMicros == 0 {
			result.Skipped++
			continue
		}
		batch = append(batch, models.GAEvent{
			GAUserPseudoID:        norm.UserPseudoID,
			EventName:             norm.EventName,
			EventTimestamp:        time.UnixMicro(norm.TimestampMicros).UTC().Truncate(time.Second),
			EventTimestampNumeric: norm.TimestampMicros,
			UTMSource:             norm.UTMSource,
			UTMCampaign:           norm.UTMCampaign,
			UTMMedium:             norm.UTMMedium,
			UTMTerm:               norm.UTMTerm,
			EventParams:           norm.Commerce,
		})
	}

	inserted, err := i.repo.InsertEvents(ctx, batch)
	if err != nil {
		return result, fmt.Errorf("persisting events: %w", err)
	}
	result.Inserted = inserted

	i.logg.Info(ctx, fmt.Sprintf("event ingestion done: fetched=%d inserted=%d skipped=%d",
		result.Fetched, result.Inserted, result.Skipped))
	return result, nil
}
