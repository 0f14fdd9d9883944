package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records metadata for scheduled pipeline jobs and the
// per-run attribution outcomes.
type PipelineMetrics struct {
	duration   *prometheus.HistogramVec
	success    *prometheus.CounterVec
	failure    *prometheus.CounterVec
	attributed prometheus.Counter
	unmatched  prometheus.Counter
	skipped    prometheus.Counter
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of pipeline jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_success",
		Help: "Successful pipeline job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_failure",
		Help: "Failed pipeline job executions.",
	}, []string{"job"})
	attributed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_attributed_total",
		Help: "Orders that received an analytics identity and UTM fields.",
	})
	unmatched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_unmatched_total",
		Help: "Orders left unattributed because no candidate event qualified.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_skipped_total",
		Help: "Orders skipped because processing failed on the record.",
	})
	reg.MustRegister(duration, success, failure, attributed, unmatched, skipped)
	return &PipelineMetrics{
		duration:   duration,
		success:    success,
		failure:    failure,
		attributed: attributed,
		unmatched:  unmatched,
		skipped:    skipped,
	}
}

// ObserveDuration records the duration for the named job.
func (m *PipelineMetrics) ObserveDuration(job string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (m *PipelineMetrics) IncSuccess(job string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (m *PipelineMetrics) IncFailure(job string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncAttributed counts one successfully attributed order.
func (m *PipelineMetrics) IncAttributed() {
	if m == nil || m.attributed == nil {
		return
	}
	m.attributed.Inc()
}

// IncUnmatched counts one order with no qualifying candidates this run.
func (m *PipelineMetrics) IncUnmatched() {
	if m == nil || m.unmatched == nil {
		return
	}
	m.unmatched.Inc()
}

// IncSkipped counts one order whose processing failed and was isolated.
func (m *PipelineMetrics) IncSkipped() {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.Inc()
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
