package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveFetch(FetchOK, 20*time.Millisecond)
	m.ObserveFetch(FetchOK, 30*time.Millisecond)
	m.ObserveFetch(FetchError, time.Second)
	m.Fetch(FetchSkipped)
	m.Start(StartAccepted)
	m.SampleAppended()
	m.SetRunning(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetches.WithLabelValues(FetchOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues(FetchError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues(FetchSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.starts.WithLabelValues(StartAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.samples))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.running))

	m.SetRunning(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.running))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFetch(FetchOK, time.Millisecond)
	m.Fetch(FetchDiscarded)
	m.Start(StartRejected)
	m.SampleAppended()
	m.SetRunning(true)
}
