// Package metrics exposes Prometheus counters and histograms for tailoring
// runs on a registry owned by the Recorder.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder records pipeline activity. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration     *prometheus.HistogramVec
	guardrailRejected *prometheus.CounterVec
	providerRequests  *prometheus.CounterVec
	runsTotal         *prometheus.CounterVec
}

// New creates a Recorder with its own registry. Go runtime and process
// collectors are registered alongside the tailoring metrics.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tailor_stage_duration_seconds",
				Help:    "Duration of each tailoring pipeline stage in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"stage"},
		),
		guardrailRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tailor_guardrail_rejections_total",
				Help: "Total number of bullet edits and skills dropped by the guardrail",
			},
			[]string{"kind", "reason"},
		),
		providerRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tailor_provider_requests_total",
				Help: "Total number of generation provider requests",
			},
			[]string{"task", "outcome"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tailor_runs_total",
				Help: "Total number of tailoring runs",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// GuardrailRejection counts one dropped item.
func (r *Recorder) GuardrailRejection(kind, reason string) {
	if r == nil {
		return
	}
	r.guardrailRejected.WithLabelValues(kind, reason).Inc()
}

// ProviderRequest counts one generator call.
func (r *Recorder) ProviderRequest(task string, err error) {
	if r == nil {
		return
	}
	r.providerRequests.WithLabelValues(task, outcome(err)).Inc()
}

// RunFinished counts one completed or failed run.
func (r *Recorder) RunFinished(err error) {
	if r == nil {
		return
	}
	r.runsTotal.WithLabelValues(outcome(err)).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
