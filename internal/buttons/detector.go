package buttons

import "time"

// Detector debounces both buttons and reports presses.
type Detector struct {
	debounce  time.Duration
	refresh   channelState
	dismiss   channelState
	baselined bool
	counts    Counts
}

// NewDetector creates a detector that requires a state to hold for debounce
// before it is accepted.
func NewDetector(debounce time.Duration) *Detector {
	return &Detector{debounce: debounce}
}

// Process takes a sample and returns the presses it completes. Nothing is
// reported until both buttons have a baseline, so a button held at startup
// does not fire.
func (d *Detector) Process(in Input) []Press {
	refresh := d.processChannel(&d.refresh, in.Refresh, in.Time)
	dismiss := d.processChannel(&d.dismiss, in.Dismiss, in.Time)

	if !d.baselined {
		if d.refresh.baselined && d.dismiss.baselined {
			d.baselined = true
		}
		return nil
	}

	// Refresh first when both complete on the same sample.
	var presses []Press
	if refresh {
		d.counts.Refresh++
		presses = append(presses, Press{Timestamp: in.Time, Button: ButtonRefresh})
	}
	if dismiss {
		d.counts.Dismiss++
		presses = append(presses, Press{Timestamp: in.Time, Button: ButtonDismiss})
	}
	return presses
}

// processChannel advances one button and reports whether it just became
// pressed.
func (d *Detector) processChannel(ch *channelState, pressed bool, now time.Time) bool {
	if !ch.baselined {
		if !ch.hasPending || ch.pending != pressed {
			ch.pending = pressed
			ch.hasPending = true
			ch.pendingSince = now
			return false
		}
		if now.Sub(ch.pendingSince) >= d.debounce {
			ch.stable = pressed
			ch.baselined = true
			ch.hasPending = false
		}
		return false
	}

	if pressed == ch.stable {
		ch.hasPending = false
		return false
	}

	if !ch.hasPending || ch.pending != pressed {
		ch.pending = pressed
		ch.hasPending = true
		ch.pendingSince = now
		return false
	}

	if now.Sub(ch.pendingSince) >= d.debounce {
		ch.stable = pressed
		ch.hasPending = false
		return pressed
	}
	return false
}

// IsBaselined reports whether both buttons have a baseline.
func (d *Detector) IsBaselined() bool {
	return d.baselined
}

// Held returns the debounced state of both buttons.
func (d *Detector) Held() (refresh, dismiss bool) {
	return d.refresh.stable, d.dismiss.stable
}

// Counts returns the presses seen so far.
func (d *Detector) Counts() Counts {
	return d.counts
}
