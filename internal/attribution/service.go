package attribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
	"github.com/angelmondragon/attribution-backend/pkg/metrics"
	"go.uber.org/multierr"
)

const defaultOrderLookback = 24 * time.Hour

// ServiceParams wires the attribution service's dependencies.
type ServiceParams struct {
	Orders   OrderStore
	Events   EventStore
	Logger   *logger.Logger
	Metrics  *metrics.PipelineMetrics
	Lookback time.Duration
}

// Service runs the match/disambiguate/resolve pipeline over fresh orders.
type Service struct {
	orders   OrderStore
	matcher  *Matcher
	resolver *Resolver
	logg     *logger.Logger
	metrics  *metrics.PipelineMetrics
	lookback time.Duration
	now      func() time.Time
}

// ProcessResult summarizes one attribution run.
type ProcessResult struct {
	Processed  int
	Attributed int
	Unmatched  int
	Skipped    int
	Failed     int
}

// NewService validates params and builds a Service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, errors.New("order store is required")
	}
	if params.Events == nil {
		return nil, errors.New("event store is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	lookback := params.Lookback
	if lookback <= 0 {
		lookback = defaultOrderLookback
	}
	return &Service{
		orders:   params.Orders,
		matcher:  NewMatcher(params.Events),
		resolver: NewResolver(params.Events),
		logg:     params.Logger,
		metrics:  params.Metrics,
		lookback: lookback,
		now:      time.Now,
	}, nil
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// ProcessOrders attributes every unattributed order inside the lookback
// window, one at a time. A failing order is logged and counted but never
// stops the run; the per-order errors come back aggregated.
func (s *Service) ProcessOrders(ctx context.Context) (ProcessResult, error) {
	floor := s.now().UTC().Add(-s.lookback)
	fresh, err := s.orders.FindUnattributed(ctx, floor)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("loading unattributed orders: %w", err)
	}

	result := ProcessResult{Processed: len(fresh)}
	var errs error
	for _, order := range fresh {
		octx := s.logg.WithOrderID(ctx, order.ShopifyOrderID)
		outcome, err := s.processOne(octx, order)
		if err != nil {
			result.Failed++
			s.logg.Error(octx, "order attribution failed", err)
			errs = multierr.Append(errs, fmt.Errorf("order %d: %w", order.ShopifyOrderID, err))
			continue
		}
		switch outcome {
		case outcomeAttributed:
			result.Attributed++
			if s.metrics != nil {
				s.metrics.IncAttributed()
			}
		case outcomeUnmatched:
			result.Unmatched++
			if s.metrics != nil {
				s.metrics.IncUnmatched()
			}
		case outcomeSkipped:
			result.Skipped++
			if s.metrics != nil {
				s.metrics.IncSkipped()
			}
		}
	}

	s.logg.Info(ctx, fmt.Sprintf("attribution run done: processed=%d attributed=%d unmatched=%d skipped=%d failed=%d",
		result.Processed, result.Attributed, result.Unmatched, result.Skipped, result.Failed))
	return result, errs
}

type outcome int

const (
	outcomeAttributed outcome = iota
	outcomeUnmatched
	outcomeSkipped
)

func (s *Service) processOne(ctx context.Context, order models.Order) (outcome, error) {
	candidates, err := s.matcher.Candidates(ctx, order)
	if err != nil {
		return 0, fmt.Errorf("matching candidates: %w", err)
	}

	winner, ok := PickClosest(order.ShopifyOrderDate, candidates)
	if !ok {
		return outcomeUnmatched, nil
	}

	ctx = s.logg.WithPseudoID(ctx, winner.GAUserPseudoID)
	attr, err := s.resolver.Resolve(ctx, winner.GAUserPseudoID, winner.EventTimestamp)
	if err != nil {
		return 0, fmt.Errorf("resolving touchpoint: %w", err)
	}

	written, err := s.orders.SetAttribution(ctx, order.ShopifyOrderID, attr)
	if err != nil {
		return 0, fmt.Errorf("writing attribution: %w", err)
	}
	if !written {
		// Another run attributed the order between the load and the write.
		return outcomeSkipped, nil
	}

	s.logg.Info(ctx, "order attributed")
	return outcomeAttributed, nil
}
