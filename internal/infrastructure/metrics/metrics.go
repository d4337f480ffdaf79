package metrics

import (
	"net/http"
	"strconv"
	"time"

	"yfquote-service/internal/scraper"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal      *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	chartSamples    prometheus.Histogram
	samplingAborted *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	updateJobsTotal *prometheus.CounterVec
}

var _ scraper.Recorder = (*Metrics)(nil)

// New creates collectors registered on a fresh registry together with the
// Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quote_fetch_total",
				Help: "Quote fetches by outcome",
			},
			[]string{"outcome"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quote_fetch_duration_seconds",
				Help:    "Wall-clock time of a quote fetch including chart sampling",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
			},
		),
		chartSamples: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chart_samples",
				Help:    "Samples collected per chart sweep",
				Buckets: []float64{0, 1, 10, 25, 50, 100, 200, 400, 800, 1200},
			},
		),
		samplingAborted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chart_sampling_aborted_total",
				Help: "Chart sweeps that ended early",
			},
			[]string{"reason"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		updateJobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quote_update_jobs_total",
				Help: "Processed quote update jobs by final status",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetchTotal,
		m.fetchDuration,
		m.chartSamples,
		m.samplingAborted,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.updateJobsTotal,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) FetchObserved(outcome string, elapsed time.Duration) {
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ChartSampled(samples int) {
	m.chartSamples.Observe(float64(samples))
}

func (m *Metrics) SamplingAborted(reason string) {
	m.samplingAborted.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) UpdateJobFinished(status string) {
	m.updateJobsTotal.WithLabelValues(status).Inc()
}
