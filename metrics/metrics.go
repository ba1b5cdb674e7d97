// Package metrics provides Prometheus metrics for story_weaver.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector. Each instance owns its registry so tests can
// build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	GenerationsTotal  *prometheus.CounterVec
	TranslationsTotal *prometheus.CounterVec
	ClearsTotal       prometheus.Counter
	LLMDuration       *prometheus.HistogramVec

	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec

	ActiveSessions prometheus.Gauge
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		GenerationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "story_weaver_generations_total",
			Help: "Generation requests by mode (template, custom) and status",
		}, []string{"mode", "status"}),
		TranslationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "story_weaver_translations_total",
			Help: "Translation requests by status",
		}, []string{"status"}),
		ClearsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "story_weaver_history_clears_total",
			Help: "History clears requested by users",
		}),
		LLMDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "story_weaver_llm_request_duration_seconds",
			Help:    "Duration of model calls in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"operation"}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "story_weaver_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "story_weaver_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "story_weaver_active_sessions",
			Help: "Sessions currently holding a history store",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordGeneration counts one generation and observes its model latency.
func (m *Metrics) RecordGeneration(mode string, duration time.Duration, err error) {
	m.GenerationsTotal.WithLabelValues(mode, status(err)).Inc()
	m.LLMDuration.WithLabelValues("generate").Observe(duration.Seconds())
}

// RecordTranslation counts one translation and observes its model latency.
func (m *Metrics) RecordTranslation(duration time.Duration, err error) {
	m.TranslationsTotal.WithLabelValues(status(err)).Inc()
	m.LLMDuration.WithLabelValues("translate").Observe(duration.Seconds())
}

// RecordHTTP counts a finished request.
func (m *Metrics) RecordHTTP(route, code string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, code).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
}
