// Package metrics exposes Prometheus instrumentation for RNC resolution.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the resolver's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Successful resolutions by provenance ("csv", "web")
	Resolutions *prometheus.CounterVec

	// Failed resolutions by error kind
	Failures *prometheus.CounterVec

	// DGII round-trip latency by phase ("fetch", "submit")
	RemotePhaseLatency *prometheus.HistogramVec

	// Records in the published local index
	IndexRecords prometheus.Gauge

	// Company lookups that failed during enrichment
	EnrichmentFailures prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rnc_resolutions_total",
			Help: "Successful RNC resolutions by source",
		}, []string{"source"}),

		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rnc_resolution_failures_total",
			Help: "Failed RNC resolutions by error kind",
		}, []string{"kind"}),

		RemotePhaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rnc_dgii_phase_duration_seconds",
			Help:    "Duration of DGII form round trips by phase",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"phase"}),

		IndexRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rnc_index_records",
			Help: "Number of identifiers in the local RNC index",
		}),

		EnrichmentFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "rnc_enrichment_failures_total",
			Help: "Company lookups that failed while enriching a resolution",
		}),
	}
}

// IncResolution records a successful resolution.
func (m *Metrics) IncResolution(source string) {
	if m != nil {
		m.Resolutions.WithLabelValues(source).Inc()
	}
}

// IncFailure records a failed resolution.
func (m *Metrics) IncFailure(kind string) {
	if m != nil {
		m.Failures.WithLabelValues(kind).Inc()
	}
}

// ObserveRemotePhase records the duration of one DGII round trip.
func (m *Metrics) ObserveRemotePhase(phase string, d time.Duration) {
	if m != nil {
		m.RemotePhaseLatency.WithLabelValues(phase).Observe(d.Seconds())
	}
}

// SetIndexRecords publishes the local index size.
func (m *Metrics) SetIndexRecords(n int) {
	if m != nil {
		m.IndexRecords.Set(float64(n))
	}
}

// IncEnrichmentFailure records a swallowed company lookup failure.
func (m *Metrics) IncEnrichmentFailure() {
	if m != nil {
		m.EnrichmentFailures.Inc()
	}
}
