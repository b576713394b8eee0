// Package status provides a thread-safe status tracker for the power-clock
// daemon. It is read by the HTTP handlers and by the lifecycle MQTT events.
package status

import (
	"sync"
	"time"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Variant         string
	Queue           string
	SourceURL       string
	DataIntervalMs  int64
	FrameIntervalMs int64
	Broker          string
	HTTPAddr        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	StartTime time.Time
	Now       time.Time

	// Schedule currently drawn.
	Fingerprint      string
	UnavailableHours float64
	Issues           int
	Fallback         bool
	ScheduleAt       time.Time

	// Fetch bookkeeping.
	LastFetch    time.Time
	LastFetchErr string
	Fetches      int
	FetchErrors  int

	LastFrame time.Time
	Frames    int

	PositionX, PositionY int

	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Ready reports whether a frame has been drawn.
func (s Snapshot) Ready() bool {
	return s.Frames > 0
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordFetch counts a fetch attempt; err is nil on success.
func (t *Tracker) RecordFetch(at time.Time, err error) {
	t.mu.Lock()
	t.snap.LastFetch = at
	t.snap.Fetches++
	if err != nil {
		t.snap.FetchErrors++
		t.snap.LastFetchErr = err.Error()
	} else {
		t.snap.LastFetchErr = ""
	}
	t.mu.Unlock()
}

// SetSchedule records the schedule now on the dial.
func (t *Tracker) SetSchedule(at time.Time, fingerprint string, unavailable float64, issues int, fallback bool) {
	t.mu.Lock()
	t.snap.ScheduleAt = at
	t.snap.Fingerprint = fingerprint
	t.snap.UnavailableHours = unavailable
	t.snap.Issues = issues
	t.snap.Fallback = fallback
	t.mu.Unlock()
}

// RecordFrame counts a drawn frame.
func (t *Tracker) RecordFrame(at time.Time) {
	t.mu.Lock()
	t.snap.LastFrame = at
	t.snap.Frames++
	t.mu.Unlock()
}

// SetPosition records the widget position on screen.
func (t *Tracker) SetPosition(x, y int) {
	t.mu.Lock()
	t.snap.PositionX, t.snap.PositionY = x, y
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
