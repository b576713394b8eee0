// Package mqtt publishes schedule changes and lifecycle events, with an
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/power-clock/internal/schedule"
)

// TopicSchedule receives a retained message whenever the day's schedule
// changes.
const TopicSchedule = "energy/power-clock/schedule"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "energy/power-clock/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishSchedule sends a schedule change. Errors are reported but
	// must not stop the widget.
	PublishSchedule(event ScheduleEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ScheduleEvent is a newly adopted schedule.
type ScheduleEvent struct {
	Timestamp time.Time
	Day       time.Time
	Queue     string
	Schedule  schedule.Schedule
	// Fallback is set when the fetch failed and the empty schedule is shown.
	Fallback bool
}

// SystemEvent represents a system lifecycle event (startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "OFFLINE"
	Reason     string // e.g., "SIGTERM", "DISMISS" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SchedulePayload is the MQTT message for a schedule change.
type SchedulePayload struct {
	Schedule ScheduleInner `json:"schedule"`
}

// ScheduleInner contains the schedule details. Hours uses the same labels
// as the upstream feed, keyed "1".."24".
type ScheduleInner struct {
	Timestamp        string            `json:"timestamp"`
	Day              string            `json:"day"`
	Queue            string            `json:"queue"`
	Fingerprint      string            `json:"fingerprint"`
	Fallback         bool              `json:"fallback"`
	UnavailableHours float64           `json:"unavailable_hours"`
	Hours            map[string]string `json:"hours"`
}

// FormatSchedulePayload creates the JSON payload for a schedule change.
func FormatSchedulePayload(event ScheduleEvent) ([]byte, error) {
	payload := SchedulePayload{
		Schedule: ScheduleInner{
			Timestamp:        event.Timestamp.UTC().Format(time.RFC3339),
			Day:              event.Day.Format(time.DateOnly),
			Queue:            event.Queue,
			Fingerprint:      event.Schedule.Fingerprint(),
			Fallback:         event.Fallback,
			UnavailableHours: event.Schedule.UnavailableHours(),
			Hours:            event.Schedule.Labels(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message for simple system events (LWT) that
// don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}
