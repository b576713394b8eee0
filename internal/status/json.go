package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Schedule      ScheduleJSON `json:"schedule"`
	Fetch         FetchJSON    `json:"fetch"`
	Frames        FramesJSON   `json:"frames"`
	Position      PositionJSON `json:"position"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ScheduleJSON describes the schedule on the dial.
type ScheduleJSON struct {
	Fingerprint      string  `json:"fingerprint"`
	UnavailableHours float64 `json:"unavailable_hours"`
	Issues           int     `json:"issues"`
	Fallback         bool    `json:"fallback"`
	UpdatedAt        string  `json:"updated_at,omitempty"`
}

// FetchJSON reports schedule fetch outcomes.
type FetchJSON struct {
	Total     int    `json:"total"`
	Errors    int    `json:"errors"`
	Last      string `json:"last,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// FramesJSON reports drawn frames.
type FramesJSON struct {
	Total int    `json:"total"`
	Last  string `json:"last,omitempty"`
}

// PositionJSON is the widget position.
type PositionJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Variant         string `json:"variant"`
	Queue           string `json:"queue"`
	SourceURL       string `json:"source_url"`
	DataIntervalMs  int64  `json:"data_interval_ms"`
	FrameIntervalMs int64  `json:"frame_interval_ms"`
	Broker          string `json:"broker"`
	HTTPAddr        string `json:"http_addr"`
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Ready:         snap.Ready(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Schedule: ScheduleJSON{
			Fingerprint:      snap.Fingerprint,
			UnavailableHours: snap.UnavailableHours,
			Issues:           snap.Issues,
			Fallback:         snap.Fallback,
			UpdatedAt:        stamp(snap.ScheduleAt),
		},
		Fetch: FetchJSON{
			Total:     snap.Fetches,
			Errors:    snap.FetchErrors,
			Last:      stamp(snap.LastFetch),
			LastError: snap.LastFetchErr,
		},
		Frames:   FramesJSON{Total: snap.Frames, Last: stamp(snap.LastFrame)},
		Position: PositionJSON{X: snap.PositionX, Y: snap.PositionY},
		MQTT:     MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Variant:         snap.Config.Variant,
			Queue:           snap.Config.Queue,
			SourceURL:       snap.Config.SourceURL,
			DataIntervalMs:  snap.Config.DataIntervalMs,
			FrameIntervalMs: snap.Config.FrameIntervalMs,
			Broker:          snap.Config.Broker,
			HTTPAddr:        snap.Config.HTTPAddr,
		},
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
