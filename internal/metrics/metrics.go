// Package metrics exposes Prometheus instrumentation for the dashboard
// services.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	updateDuration *prometheus.HistogramVec
	updateRows     prometheus.Histogram
	panelRecords   prometheus.Gauge
	panelRefresh   *prometheus.CounterVec
	requests       *prometheus.CounterVec
}

// New registers the dashboard collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		updateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sp500_update_duration_seconds",
			Help:    "Time spent computing a dashboard bundle.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"surface"}),
		updateRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sp500_update_rows",
			Help:    "Rows left in the filtered view per update.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		}),
		panelRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sp500_panel_records",
			Help: "Records held by the loaded panel.",
		}),
		panelRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sp500_panel_refresh_total",
			Help: "Panel reloads by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sp500_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	m.registry.MustRegister(
		m.updateDuration, m.updateRows, m.panelRecords, m.panelRefresh, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveUpdate records one bundle computation served on surface
// ("http", "grpc", "cli").
func (m *Metrics) ObserveUpdate(surface string, elapsed time.Duration, rows int) {
	if m == nil {
		return
	}
	m.updateDuration.WithLabelValues(surface).Observe(elapsed.Seconds())
	m.updateRows.Observe(float64(rows))
}

// PanelLoaded records a reload attempt. records is ignored when err is set.
func (m *Metrics) PanelLoaded(records int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.panelRefresh.WithLabelValues("error").Inc()
		return
	}
	m.panelRefresh.WithLabelValues("ok").Inc()
	m.panelRecords.Set(float64(records))
}

// ObserveRequest counts one HTTP response.
func (m *Metrics) ObserveRequest(route, code string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, code).Inc()
}

// Registry returns the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
