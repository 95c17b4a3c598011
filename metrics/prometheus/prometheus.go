// Package prometheus provides a Prometheus implementation of metrics.Recorder.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/karupanerura/sweepcache/metrics"
)

// timer wraps a Prometheus histogram to implement the Timer interface.
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) metrics.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// Default histogram buckets for operation latency (in seconds).
// Cache operations are in-memory, so the buckets start well below a millisecond.
var defaultBuckets = []float64{
	.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1,
}

type recorder struct {
	operationDuration *prometheus.HistogramVec
	entries           prometheus.Gauge
	evictedTotal      prometheus.Counter
	sweepsTotal       prometheus.Counter
	handler           http.Handler
}

// New creates a Prometheus recorder registered on reg and exposed from reg.
// It panics if the metrics are already registered on reg.
func New(reg *prometheus.Registry) metrics.Recorder {
	m := &recorder{
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sweepcache_operation_duration_seconds",
			Help:    "Cache operation latency in seconds",
			Buckets: defaultBuckets,
		}, []string{"op"}),

		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sweepcache_entries",
			Help: "Number of resident cache entries; approximate between sweeps",
		}),

		evictedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sweepcache_evicted_entries_total",
			Help: "Total number of entries removed by sweeps",
		}),

		sweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sweepcache_sweeps_total",
			Help: "Total number of completed sweeps",
		}),

		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}

	reg.MustRegister(
		m.operationDuration,
		m.entries,
		m.evictedTotal,
		m.sweepsTotal,
	)

	return m
}

func (m *recorder) OperationDuration(op metrics.Op) metrics.Timer {
	return newTimer(m.operationDuration.WithLabelValues(string(op)))
}

func (m *recorder) SetSize(n int) {
	m.entries.Set(float64(n))
}

func (m *recorder) IncSize() {
	m.entries.Inc()
}

func (m *recorder) Evicted(n int) {
	m.evictedTotal.Add(float64(n))
	m.sweepsTotal.Inc()
}

func (m *recorder) Handler() http.Handler {
	return m.handler
}

var _ metrics.Recorder = (*recorder)(nil)
