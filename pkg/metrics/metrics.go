package metrics

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/picklenerd/counterfeit/pkg/mapper"
)

// Namespace prefixes every metric name.
const Namespace = "counterfeit"

// StatusAborted is the status label of requests that got no response.
const StatusAborted = "aborted"

// DurationBuckets covers file-backed responses, from sub-millisecond reads
// up to responses slowed down by delay mutations.
var DurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// Metrics holds the collectors of one server.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	NotFoundTotal       prometheus.Counter
	AbortedTotal        prometheus.Counter
	PlaceholdersCreated prometheus.Counter
	AdminRequestsTotal  *prometheus.CounterVec
}

// Option configures New.
type Option func(*options)

type options struct {
	runtime bool
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors(enabled bool) Option {
	return func(o *options) {
		o.runtime = enabled
	}
}

// New creates the collectors and registers them on a new registry.
func New(opts ...Option) *Metrics {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "requests_total",
				Help:      "Total mapped requests",
			},
			[]string{"method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "request_duration_seconds",
				Help:      "Time spent mapping a request to its response",
				Buckets:   DurationBuckets,
			},
			[]string{"method"},
		),
		NotFoundTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "not_found_total",
			Help:      "Requests with no matching directory or file",
		}),
		AbortedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "aborted_requests_total",
			Help:      "Requests dropped without a response",
		}),
		PlaceholdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "placeholders_created_total",
			Help:      "Empty response files created for unmatched methods",
		}),
		AdminRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "admin_requests_total",
				Help:      "Admin endpoint requests by matched route",
			},
			[]string{"route", "status"},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.NotFoundTotal,
		m.AbortedTotal,
		m.PlaceholdersCreated,
		m.AdminRequestsTotal,
	)
	if o.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TrackCursors exports the number of directories with a cursor, read from fn
// at scrape time. It may be called once.
func (m *Metrics) TrackCursors(fn func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "cursor_directories",
			Help:      "Directories with a round-robin cursor",
		},
		func() float64 { return float64(fn()) },
	))
}

// Observe records a handled request. It has the mapper.Observer signature.
func (m *Metrics) Observe(ev mapper.Event) {
	method := strings.ToUpper(ev.Request.Method)
	m.RequestDuration.WithLabelValues(method).Observe(ev.Duration.Seconds())

	if ev.Err != nil {
		m.AbortedTotal.Inc()
		m.RequestsTotal.WithLabelValues(method, StatusAborted).Inc()
		return
	}

	status := ev.Output.Response.Status
	if mapper.IsNotFound(ev.Output.Err()) {
		m.NotFoundTotal.Inc()
	}
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// PlaceholderCreated counts a created placeholder. It fits
// mapper.WithCreateHook.
func (m *Metrics) PlaceholderCreated(string) {
	m.PlaceholdersCreated.Inc()
}
