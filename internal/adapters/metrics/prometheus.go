package metrics

import (
	"net/http"
	"strconv"
	"time"

	"homiio/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - все метрики сервиса на собственном реестре.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	requestsInFlight   prometheus.Gauge
	viewingTransitions *prometheus.CounterVec
	eventsPublished    *prometheus.CounterVec
	eventsConsumed     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "homiio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "homiio_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "homiio_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		viewingTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "homiio_viewing_transitions_total",
				Help: "Viewing request status transitions",
			},
			[]string{"status"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "homiio_events_published_total",
				Help: "Domain events published to the broker",
			},
			[]string{"routing_key", "result"},
		),
		eventsConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "homiio_events_consumed_total",
				Help: "Domain events handled by the notification consumer",
			},
			[]string{"event_type", "result"},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) IncRequestsInFlight() { m.requestsInFlight.Inc() }
func (m *Metrics) DecRequestsInFlight() { m.requestsInFlight.Dec() }

// ViewingTransition реализует port.MetricsPort.
func (m *Metrics) ViewingTransition(status domain.ViewingStatus) {
	m.viewingTransitions.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) EventPublished(routingKey string, err error) {
	m.eventsPublished.WithLabelValues(routingKey, result(err)).Inc()
}

func (m *Metrics) EventConsumed(eventType string, err error) {
	m.eventsConsumed.WithLabelValues(eventType, result(err)).Inc()
}

// Handler отдает метрики для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry нужен тестам и для регистрации сторонних коллекторов.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
