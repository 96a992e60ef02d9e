// Package metrics exports extraction telemetry in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.Metrics = (*Recorder)(nil)

const namespace = "cartographer"

// Recorder holds the extraction collectors on its own registry.
type Recorder struct {
	registry    *prometheus.Registry
	extractions *prometheus.CounterVec
	subtypes    *prometheus.CounterVec
	tokens      *prometheus.CounterVec
	cost        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates a recorder. Go runtime and process collectors are
// registered alongside the extraction metrics.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Model calls and debug runs, by mode and outcome.",
		}, []string{"mode", "model", "status"}),
		subtypes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subtypes_total",
			Help:      "Subtypes covered by finished extractions.",
		}, []string{"mode", "status"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens reported by the API, by direction.",
		}, []string{"model", "direction"}),
		cost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cost_usd_total",
			Help:      "Estimated spend in USD.",
		}, []string{"model"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Wall time of one extraction call.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"mode"}),
	}

	r.registry.MustRegister(
		r.extractions, r.subtypes, r.tokens, r.cost, r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveExtraction records one finished model call or debug run.
func (r *Recorder) ObserveExtraction(obs driven.ExtractionObservation) {
	r.extractions.WithLabelValues(obs.Mode, obs.Model, obs.Status).Inc()
	r.subtypes.WithLabelValues(obs.Mode, obs.Status).Add(float64(obs.Subtypes))
	r.tokens.WithLabelValues(obs.Model, "input").Add(float64(obs.InputTokens))
	r.tokens.WithLabelValues(obs.Model, "output").Add(float64(obs.OutputTokens))
	if obs.Cost > 0 {
		r.cost.WithLabelValues(obs.Model).Add(obs.Cost)
	}
	r.duration.WithLabelValues(obs.Mode).Observe(obs.Duration.Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
