package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arecanut"

// Metrics: счётчики телеметрии, событий клапанов и HTTP.
// Методы безопасны на nil-получателе, чтобы сервисы работали без метрик.
type Metrics struct {
	readings    *prometheus.CounterVec
	valveEvents *prometheus.CounterVec
	publishes   *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New регистрирует коллекторы в собственном реестре.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Telemetry rows by device class and outcome.",
		}, []string{"class", "result"}),
		valveEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valve_events_total",
			Help:      "Appended valve events by source.",
		}, []string{"source"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valve_publish_total",
			Help:      "MQTT valve command publishes by outcome.",
		}, []string{"result"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
		gatherer: reg,
	}
	reg.MustRegister(m.readings, m.valveEvents, m.publishes, m.httpLatency)
	return m
}

func (m *Metrics) ObserveReadings(class string, accepted, rejected int) {
	if m == nil {
		return
	}
	m.readings.WithLabelValues(class, "accepted").Add(float64(accepted))
	m.readings.WithLabelValues(class, "rejected").Add(float64(rejected))
}

func (m *Metrics) ObserveValveEvents(source string, n int) {
	if m == nil {
		return
	}
	m.valveEvents.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) ObservePublish(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.publishes.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpLatency.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}

// Handler: /metrics в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
