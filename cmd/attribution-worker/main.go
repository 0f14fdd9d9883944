package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/attribution-backend/api/routes"
	"github.com/angelmondragon/attribution-backend/internal/analytics"
	"github.com/angelmondragon/attribution-backend/internal/attribution"
	"github.com/angelmondragon/attribution-backend/internal/cron"
	"github.com/angelmondragon/attribution-backend/internal/orders"
	"github.com/angelmondragon/attribution-backend/internal/reports"
	"github.com/angelmondragon/attribution-backend/pkg/bigquery"
	"github.com/angelmondragon/attribution-backend/pkg/config"
	"github.com/angelmondragon/attribution-backend/pkg/db"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
	"github.com/angelmondragon/attribution-backend/pkg/metrics"
	"github.com/angelmondragon/attribution-backend/pkg/migrate"
	"github.com/angelmondragon/attribution-backend/pkg/redis"
	"github.com/angelmondragon/attribution-backend/pkg/shopify"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "attribution-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "attribution-worker"

	logg = logger.New(logger.Options{
		ServiceName: "attribution-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	bqClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap bigquery", err)
		os.Exit(1)
	}
	defer func() {
		if err := bqClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing bigquery", err)
		}
	}()

	shopifyClient, err := shopify.NewClient(cfg.Shopify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shopify client", err)
		os.Exit(1)
	}

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)

	eventRepo := analytics.NewRepository(dbClient.DB())
	eventSource, err := analytics.NewBigQuerySource(bqClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create event source", err)
		os.Exit(1)
	}
	eventIngestor, err := analytics.NewIngestor(analytics.IngestorParams{
		Source:   eventSource,
		Repo:     eventRepo,
		Logger:   logg,
		Lookback: cfg.BigQuery.Lookback,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create event ingestor", err)
		os.Exit(1)
	}

	orderRepo := orders.NewRepository(dbClient.DB())
	orderSource, err := orders.NewShopifySource(shopifyClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order source", err)
		os.Exit(1)
	}
	orderIngestor, err := orders.NewIngestor(orders.IngestorParams{
		Source: orderSource,
		Repo:   orderRepo,
		Tx:     dbClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order ingestor", err)
		os.Exit(1)
	}

	matcherService, err := attribution.NewService(attribution.ServiceParams{
		Orders:   orderRepo,
		Events:   eventRepo,
		Logger:   logg,
		Metrics:  pipelineMetrics,
		Lookback: cfg.Pipeline.OrderLookback,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create attribution service", err)
		os.Exit(1)
	}

	spendRepo := reports.NewRepository(dbClient.DB())

	// Ad spend reporting is optional; without a GA4 property the pipeline
	// still ingests and attributes, it just skips the spend refresh.
	var adSpendService *reports.AdSpendService
	if cfg.AdsReport.GA4PropertyID != "" {
		adsReporter, err := reports.NewAdsReporter(context.Background(), cfg.GCP, cfg.AdsReport)
		if err != nil {
			logg.Error(context.Background(), "failed to create ads reporter", err)
			os.Exit(1)
		}
		adSpendService, err = reports.NewAdSpendService(reports.AdSpendParams{
			Reporter: adsReporter,
			Repo:     spendRepo,
			Logger:   logg,
			CSVPath:  cfg.AdsReport.AdsCSVPath,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create ad spend service", err)
			os.Exit(1)
		}
	}

	efficiencyService, err := reports.NewEfficiencyService(reports.EfficiencyParams{
		Revenue: orderRepo,
		Spend:   spendRepo,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create efficiency service", err)
		os.Exit(1)
	}

	registry, err := buildRegistry(eventIngestor, orderIngestor, matcherService, adSpendService)
	if err != nil {
		logg.Error(context.Background(), "failed to build job registry", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("pipeline"), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create pipeline lock", err)
		os.Exit(1)
	}

	pipeline, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  pipelineMetrics,
		Interval: cfg.Pipeline.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pipeline service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Redis:      redisClient,
		BigQuery:   bqClient,
		Pipeline:   pipeline,
		Efficiency: efficiencyService,
		Gatherer:   prometheus.DefaultGatherer,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"addr":        addr,
	})
	logg.Info(ctx, "starting attribution worker")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	pipelineErr := make(chan error, 1)
	go func() {
		pipelineErr <- pipeline.Run(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			logg.Error(ctx, "http server stopped unexpectedly", err)
		}
		stop()
	case err := <-pipelineErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "pipeline stopped unexpectedly", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "error shutting down http server", err)
	}

	logg.Info(ctx, "attribution worker shutting down gracefully")
}

func buildRegistry(
	eventIngestor *analytics.Ingestor,
	orderIngestor *orders.Ingestor,
	matcher *attribution.Service,
	spend *reports.AdSpendService,
) (*cron.Registry, error) {
	ingestEvents, err := cron.NewIngestEventsJob(eventIngestor)
	if err != nil {
		return nil, err
	}
	ingestOrders, err := cron.NewIngestOrdersJob(orderIngestor)
	if err != nil {
		return nil, err
	}
	matchOrders, err := cron.NewMatchOrdersJob(matcher)
	if err != nil {
		return nil, err
	}

	// Ingestion jobs run before matching so fresh orders see fresh events.
	registry := cron.NewRegistry(ingestEvents, ingestOrders, matchOrders)
	if spend != nil {
		adSpend, err := cron.NewAdSpendJob(spend)
		if err != nil {
			return nil, err
		}
		registry.Register(adSpend)
	}
	return registry, nil
}
