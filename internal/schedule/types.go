// Package schedule models a day's hourly power-availability states.
// Raw schedules arrive sparse and string-keyed; Normalize turns them into a
// dense Schedule with exactly one HourState per hour.
package schedule

import (
	"errors"
	"fmt"
)

// HourState is the power state for one hour-long sector.
type HourState int

const (
	// Available: power on for the whole hour.
	Available HourState = iota
	// Unavailable: power off for the whole hour.
	Unavailable
	// UnavailableThenAvailable: off for the first half, on for the second.
	UnavailableThenAvailable
	// AvailableThenUnavailable: on for the first half, off for the second.
	AvailableThenUnavailable
)

// Wire labels used by the schedule source.
const (
	LabelYes    = "yes"
	LabelNo     = "no"
	LabelFirst  = "first"
	LabelSecond = "second"
)

// ErrUnknownState is returned by ParseHourState for labels outside the
// closed set.
var ErrUnknownState = errors.New("unknown hour state")

// ErrCycle is returned for cycle lengths other than 12 or 24.
var ErrCycle = errors.New("cycle length must be 12 or 24")

// ParseHourState converts a wire label into an HourState.
func ParseHourState(label string) (HourState, error) {
	switch label {
	case LabelYes:
		return Available, nil
	case LabelNo:
		return Unavailable, nil
	case LabelFirst:
		return UnavailableThenAvailable, nil
	case LabelSecond:
		return AvailableThenUnavailable, nil
	}
	return Available, fmt.Errorf("%w: %q", ErrUnknownState, label)
}

// String returns the wire label.
func (s HourState) String() string {
	switch s {
	case Available:
		return LabelYes
	case Unavailable:
		return LabelNo
	case UnavailableThenAvailable:
		return LabelFirst
	case AvailableThenUnavailable:
		return LabelSecond
	}
	return fmt.Sprintf("HourState(%d)", int(s))
}

// Halves reports whether power is available in the first and second half of
// the hour.
func (s HourState) Halves() (first, second bool) {
	switch s {
	case Unavailable:
		return false, false
	case UnavailableThenAvailable:
		return false, true
	case AvailableThenUnavailable:
		return true, false
	default:
		return true, true
	}
}

// Split reports whether the state changes halfway through the hour.
func (s HourState) Split() bool {
	first, second := s.Halves()
	return first != second
}

// letter is the single-character code used in fingerprints.
func (s HourState) letter() byte {
	switch s {
	case Unavailable:
		return 'n'
	case UnavailableThenAvailable:
		return 'f'
	case AvailableThenUnavailable:
		return 's'
	default:
		return 'y'
	}
}

// ValidCycle reports whether n is a supported cycle length.
func ValidCycle(n int) bool {
	return n == 12 || n == 24
}
