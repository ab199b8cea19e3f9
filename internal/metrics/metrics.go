// Package metrics holds the prometheus collectors shared by all sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	registry *prometheus.Registry

	ClassificationsTotal *prometheus.CounterVec
	SubsetSize           *prometheus.HistogramVec
	LastThreshold        prometheus.Gauge
	SessionsActive       prometheus.Gauge
	SessionMessagesTotal *prometheus.CounterVec
	EnrichmentDuration   *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.ClassificationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protnet_hub_classifications_total",
			Help: "Total number of hub classifications",
		},
		[]string{"mode", "status"},
	)

	r.SubsetSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "protnet_hub_subset_nodes",
			Help:    "Number of nodes kept by a hub classification",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"mode"},
	)

	r.LastThreshold = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "protnet_hub_threshold_last",
			Help: "Degree threshold of the most recent hub classification",
		},
	)

	r.SessionsActive = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "protnet_sessions_active",
			Help: "Number of open websocket sessions",
		},
	)

	r.SessionMessagesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protnet_session_messages_total",
			Help: "Client messages received, by type and outcome",
		},
		[]string{"type", "status"},
	)

	r.EnrichmentDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "protnet_enrichment_request_duration_seconds",
			Help:    "Duration of functional enrichment requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
		},
		[]string{"status"},
	)

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveClassification records one call to the hub classifier.
func (r *Registry) ObserveClassification(mode string, kept int, threshold int, err error) {
	r.ClassificationsTotal.WithLabelValues(mode, status(err)).Inc()
	if err != nil {
		return
	}
	r.SubsetSize.WithLabelValues(mode).Observe(float64(kept))
	r.LastThreshold.Set(float64(threshold))
}

func (r *Registry) ObserveMessage(msgType string, err error) {
	r.SessionMessagesTotal.WithLabelValues(msgType, status(err)).Inc()
}

func (r *Registry) ObserveEnrichment(start time.Time, err error) {
	r.EnrichmentDuration.WithLabelValues(status(err)).Observe(time.Since(start).Seconds())
}

// Gatherer exposes the underlying registry, mostly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
