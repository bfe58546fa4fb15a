// Package metrics provides Prometheus metrics for the preview server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mdcat"

// Result labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds all Prometheus metrics for one server instance.
type Metrics struct {
	registry *prometheus.Registry

	// Render metrics
	RendersTotal   *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	DocumentBytes  prometheus.Gauge

	// Search metrics
	SearchesTotal prometheus.Counter
	SearchMatches prometheus.Histogram

	// Document lifecycle
	ReloadsTotal *prometheus.CounterVec
	SavesTotal   *prometheus.CounterVec
	ModeToggles  prometheus.Counter

	// Transport
	ClientsConnected prometheus.Gauge
	BroadcastsTotal  prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
}

// New creates all metrics on a private registry, alongside the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RendersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Total number of document renders",
			},
			[]string{"status"},
		),
		RenderDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Duration of document renders in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		DocumentBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "document_bytes",
				Help:      "Size of the current document in bytes",
			},
		),
		SearchesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Total number of search queries",
			},
		),
		SearchMatches: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_matches",
				Help:      "Number of matches per search query",
				Buckets:   []float64{0, 1, 5, 10, 50, 100, 500},
			},
		),
		ReloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Total number of file change notifications by outcome",
			},
			[]string{"outcome"},
		),
		SavesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saves_total",
				Help:      "Total number of document saves",
			},
			[]string{"status"},
		),
		ModeToggles: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mode_toggles_total",
				Help:      "Total number of view mode toggles",
			},
		),
		ClientsConnected: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "clients_connected",
				Help:      "Number of connected WebSocket clients",
			},
		),
		BroadcastsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "broadcasts_total",
				Help:      "Total number of state broadcasts",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"route", "code"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRender records one render and its duration.
func (m *Metrics) RecordRender(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.RendersTotal.WithLabelValues(status(err)).Inc()
	m.RenderDuration.Observe(duration.Seconds())
}

// RecordSearch records one search query and its match count.
func (m *Metrics) RecordSearch(matches int) {
	if m == nil {
		return
	}
	m.SearchesTotal.Inc()
	m.SearchMatches.Observe(float64(matches))
}

// RecordReload records the outcome of a file change notification:
// "applied", "ignored" or "error".
func (m *Metrics) RecordReload(outcome string) {
	if m == nil {
		return
	}
	m.ReloadsTotal.WithLabelValues(outcome).Inc()
}

// RecordSave records one save attempt.
func (m *Metrics) RecordSave(err error) {
	if m == nil {
		return
	}
	m.SavesTotal.WithLabelValues(status(err)).Inc()
}

// RecordToggle records one view mode toggle.
func (m *Metrics) RecordToggle() {
	if m == nil {
		return
	}
	m.ModeToggles.Inc()
}

// SetDocumentBytes records the current document size.
func (m *Metrics) SetDocumentBytes(n int) {
	if m == nil {
		return
	}
	m.DocumentBytes.Set(float64(n))
}

// ClientConnected adjusts the connected client gauge by delta.
func (m *Metrics) ClientConnected(delta int) {
	if m == nil {
		return
	}
	m.ClientsConnected.Add(float64(delta))
}

// RecordBroadcast records one state broadcast.
func (m *Metrics) RecordBroadcast() {
	if m == nil {
		return
	}
	m.BroadcastsTotal.Inc()
}

// RecordRequest records one API request.
func (m *Metrics) RecordRequest(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, http.StatusText(code)).Inc()
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
