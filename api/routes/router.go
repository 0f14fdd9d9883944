package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/attribution-backend/api/controllers"
	"github.com/angelmondragon/attribution-backend/api/middleware"
	"github.com/angelmondragon/attribution-backend/pkg/config"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
)

// RouterParams collects everything the HTTP surface depends on. Optional
// fields (nil pingers, nil gatherer) simply disable their endpoints' checks.
type RouterParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         controllers.Pinger
	Redis      controllers.Pinger
	BigQuery   controllers.Pinger
	Pipeline   controllers.PipelineTrigger
	Efficiency controllers.EfficiencyBuilder
	Gatherer   prometheus.Gatherer
}

// NewRouter wires the worker's HTTP surface: health probes, the manual run
// trigger, the efficiency report and prometheus metrics.
func NewRouter(params RouterParams) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID(params.Logger))
	router.Use(middleware.Logging(params.Logger))
	router.Use(middleware.Recoverer(params.Logger))

	router.Get("/healthz", controllers.HealthLive(params.Config))
	router.Get("/readyz", controllers.HealthReady(params.Config, params.Logger, map[string]controllers.Pinger{
		"postgres": params.DB,
		"redis":    params.Redis,
		"bigquery": params.BigQuery,
	}))

	if params.Pipeline != nil {
		router.Post("/runs", controllers.TriggerRun(params.Logger, params.Pipeline))
	}
	if params.Efficiency != nil {
		router.Get("/reports/efficiency", controllers.EfficiencyReport(params.Logger, params.Efficiency))
	}

	gatherer := params.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.Method("GET", "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return router
}
