// Package metrics exposes prometheus collectors for telemetry polling and
// process runs. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes.
const (
	FetchOK        = "ok"
	FetchError     = "error"
	FetchSkipped   = "skipped"
	FetchDiscarded = "discarded"
)

// Start outcomes.
const (
	StartAccepted  = "accepted"
	StartRejected  = "rejected"
	StartTransport = "transport_error"
	StartRefused   = "precondition"
)

const namespace = "heater"

type Metrics struct {
	fetches      *prometheus.CounterVec
	fetchLatency prometheus.Histogram
	starts       *prometheus.CounterVec
	running      prometheus.Gauge
	samples      prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_fetches_total",
			Help:      "Telemetry poll attempts by outcome.",
		}, []string{"result"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "telemetry_fetch_duration_seconds",
			Help:      "Latency of /get_data calls.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		starts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_starts_total",
			Help:      "Process start attempts by outcome.",
		}, []string{"result"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_running",
			Help:      "1 while a run is active.",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_samples_total",
			Help:      "Samples appended to telemetry buffers.",
		}),
	}
	reg.MustRegister(m.fetches, m.fetchLatency, m.starts, m.running, m.samples)
	return m
}

// ObserveFetch records a completed fetch.
func (m *Metrics) ObserveFetch(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(result).Inc()
	m.fetchLatency.Observe(d.Seconds())
}

// Fetch records an outcome that did not reach the device (skipped) or whose
// result was thrown away (discarded).
func (m *Metrics) Fetch(result string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(result).Inc()
}

func (m *Metrics) SampleAppended() {
	if m == nil {
		return
	}
	m.samples.Inc()
}

func (m *Metrics) Start(result string) {
	if m == nil {
		return
	}
	m.starts.WithLabelValues(result).Inc()
}

func (m *Metrics) SetRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.running.Set(1)
		return
	}
	m.running.Set(0)
}
