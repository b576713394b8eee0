// Package metrics exposes Prometheus collectors for the widget.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "power_clock"

// Fetch results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	fetches          *prometheus.CounterVec
	fetchLatency     prometheus.Histogram
	dialRenders      *prometheus.CounterVec
	frames           prometheus.Counter
	unavailableHours prometheus.Gauge
	scheduleIssues   prometheus.Gauge
	lastFrame        prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Schedule fetches by result.",
		}, []string{"result"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Schedule fetch latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		dialRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dial_renders_total",
			Help:      "Static dial requests by cache outcome.",
		}, []string{"cache"}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames drawn.",
		}),
		unavailableHours: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unavailable_hours",
			Help:      "Hours without power in the current schedule.",
		}),
		scheduleIssues: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schedule_issues",
			Help:      "Raw schedule entries that could not be used as given.",
		}),
		lastFrame: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_frame_timestamp_seconds",
			Help:      "Unix time of the last frame.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.fetches, m.fetchLatency, m.dialRenders, m.frames,
		m.unavailableHours, m.scheduleIssues, m.lastFrame,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveFetch records a fetch outcome and its latency.
func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.fetches.WithLabelValues(result).Inc()
	m.fetchLatency.Observe(d.Seconds())
}

// ObserveDial records a static dial lookup.
func (m *Metrics) ObserveDial(cached bool) {
	if m == nil {
		return
	}
	if cached {
		m.dialRenders.WithLabelValues("hit").Inc()
		return
	}
	m.dialRenders.WithLabelValues("miss").Inc()
}

// SetSchedule records the adopted schedule.
func (m *Metrics) SetSchedule(unavailable float64, issues int) {
	if m == nil {
		return
	}
	m.unavailableHours.Set(unavailable)
	m.scheduleIssues.Set(float64(issues))
}

// ObserveFrame records a drawn frame.
func (m *Metrics) ObserveFrame(at time.Time) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.lastFrame.Set(float64(at.Unix()))
}
