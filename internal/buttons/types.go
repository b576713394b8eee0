// Package buttons turns raw button samples into debounced presses.
// It has no hardware dependencies; time is always passed in.
package buttons

import "time"

// Button identifies a physical button.
type Button string

const (
	ButtonRefresh Button = "REFRESH"
	ButtonDismiss Button = "DISMISS"
)

// Press is a debounced released-to-pressed transition.
type Press struct {
	Timestamp time.Time
	Button    Button
}

// Input is a single sample of both buttons.
type Input struct {
	Refresh bool // true = pressed, already inverted from the raw line
	Dismiss bool
	Time    time.Time
}

// Counts tracks presses since startup.
type Counts struct {
	Refresh int
	Dismiss int
}

// channelState tracks debounce state for one button.
type channelState struct {
	// stable is the debounced state.
	stable bool
	// pending is the candidate state while hasPending is set.
	pending      bool
	hasPending   bool
	pendingSince time.Time
	baselined    bool
}
