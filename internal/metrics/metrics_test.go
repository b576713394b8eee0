package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveFetch(120*time.Millisecond, nil)
	m.ObserveFetch(5*time.Second, errors.New("timeout"))
	m.ObserveFetch(80*time.Millisecond, nil)
	m.ObserveDial(false)
	m.ObserveDial(true)
	m.ObserveDial(true)
	m.SetSchedule(3.5, 2)
	m.ObserveFrame(time.Unix(1760486400, 0))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetches.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues(ResultError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fetchLatency))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.dialRenders.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dialRenders.WithLabelValues("miss")))
	assert.Equal(t, 3.5, testutil.ToFloat64(m.unavailableHours))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.scheduleIssues))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.frames))
	assert.Equal(t, 1760486400.0, testutil.ToFloat64(m.lastFrame))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch(time.Second, nil)
		m.ObserveDial(true)
		m.SetSchedule(1, 0)
		m.ObserveFrame(time.Now())
	})
}
