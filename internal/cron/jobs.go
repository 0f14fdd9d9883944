package cron

import (
	"context"
	"errors"

	"github.com/angelmondragon/attribution-backend/internal/analytics"
	"github.com/angelmondragon/attribution-backend/internal/attribution"
	"github.com/angelmondragon/attribution-backend/internal/orders"
)

// Job names used in logs and metric labels.
const (
	JobIngestEvents = "ingest-ga-events"
	JobIngestOrders = "ingest-orders"
	JobMatchOrders  = "match-orders"
	JobAdSpend      = "ad-spend-report"
)

type eventIngestor interface {
	Run(ctx context.Context) (analytics.IngestResult, error)
}

type orderIngestor interface {
	Run(ctx context.Context) (orders.IngestResult, error)
}

type orderProcessor interface {
	ProcessOrders(ctx context.Context) (attribution.ProcessResult, error)
}

type spendRefresher interface {
	Run(ctx context.Context) error
}

type ingestEventsJob struct {
	ingestor eventIngestor
}

// NewIngestEventsJob wraps the analytics ingestor as a pipeline job.
func NewIngestEventsJob(ingestor eventIngestor) (Job, error) {
	if ingestor == nil {
		return nil, errors.New("event ingestor required")
	}
	return &ingestEventsJob{ingestor: ingestor}, nil
}

func (j *ingestEventsJob) Name() string { return JobIngestEvents }

func (j *ingestEventsJob) Run(ctx context.Context) error {
	_, err := j.ingestor.Run(ctx)
	return err
}

type ingestOrdersJob struct {
	ingestor orderIngestor
}

// NewIngestOrdersJob wraps the order ingestor as a pipeline job.
func NewIngestOrdersJob(ingestor orderIngestor) (Job, error) {
	if ingestor == nil {
		return nil, errors.New("order ingestor required")
	}
	return &ingestOrdersJob{ingestor: ingestor}, nil
}

func (j *ingestOrdersJob) Name() string { return JobIngestOrders }

func (j *ingestOrdersJob) Run(ctx context.Context) error {
	_, err := j.ingestor.Run(ctx)
	return err
}

type matchOrdersJob struct {
	processor orderProcessor
}

// NewMatchOrdersJob wraps the attribution service as a pipeline job.
func NewMatchOrdersJob(processor orderProcessor) (Job, error) {
	if processor == nil {
		return nil, errors.New("order processor required")
	}
	return &matchOrdersJob{processor: processor}, nil
}

func (j *matchOrdersJob) Name() string { return JobMatchOrders }

func (j *matchOrdersJob) Run(ctx context.Context) error {
	_, err := j.processor.ProcessOrders(ctx)
	return err
}

type adSpendJob struct {
	refresher spendRefresher
}

// NewAdSpendJob wraps the ad spend service as a pipeline job.
func NewAdSpendJob(refresher spendRefresher) (Job, error) {
	if refresher == nil {
		return nil, errors.New("spend refresher required")
	}
	return &adSpendJob{refresher: refresher}, nil
}

func (j *adSpendJob) Name() string { return JobAdSpend }

func (j *adSpendJob) Run(ctx context.Context) error {
	return j.refresher.Run(ctx)
}
