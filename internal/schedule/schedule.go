package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Schedule is a dense, read-only hour → HourState table for one cycle.
// The zero value is an empty schedule; use New or Normalize.
type Schedule struct {
	states []HourState
}

// Issue describes a raw entry that Normalize could not use as given.
type Issue struct {
	Key   string
	Value string
	Err   error
}

func (i Issue) String() string {
	return fmt.Sprintf("hour %q=%q: %v", i.Key, i.Value, i.Err)
}

// New returns an all-available schedule of the given cycle length.
func New(cycle int) (Schedule, error) {
	if !ValidCycle(cycle) {
		return Schedule{}, fmt.Errorf("%w: got %d", ErrCycle, cycle)
	}
	return Schedule{states: make([]HourState, cycle)}, nil
}

// Normalize builds a dense schedule from a sparse raw mapping of hour
// strings ("1".."N") to state labels. Hours that are missing, or whose label
// is not recognised, are Available. Unrecognised labels and hour keys that
// are not integers in 1..cycle are reported as issues; they never fail the
// whole cycle.
func Normalize(raw map[string]string, cycle int) (Schedule, []Issue, error) {
	s, err := New(cycle)
	if err != nil {
		return Schedule{}, nil, err
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var issues []Issue
	for _, k := range keys {
		v := raw[k]
		hour, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			issues = append(issues, Issue{Key: k, Value: v, Err: errors.New("hour is not a number")})
			continue
		}
		if hour < 1 || hour > cycle {
			issues = append(issues, Issue{Key: k, Value: v, Err: fmt.Errorf("hour out of range 1..%d", cycle)})
			continue
		}
		state, err := ParseHourState(v)
		if err != nil {
			issues = append(issues, Issue{Key: k, Value: v, Err: err})
		}
		s.states[hour-1] = state
	}
	return s, issues, nil
}

// Len returns the cycle length, or 0 for the zero Schedule.
func (s Schedule) Len() int {
	return len(s.states)
}

// State returns the state of a 1-based hour. Hours outside the cycle are
// Available.
func (s Schedule) State(hour int) HourState {
	if hour < 1 || hour > len(s.states) {
		return Available
	}
	return s.states[hour-1]
}

// Fingerprint returns one letter per hour (y, n, f, s). Equal schedules have
// equal fingerprints.
func (s Schedule) Fingerprint() string {
	b := make([]byte, len(s.states))
	for i, st := range s.states {
		b[i] = st.letter()
	}
	return string(b)
}

// Labels returns the schedule as hour string → wire label, every hour
// present.
func (s Schedule) Labels() map[string]string {
	out := make(map[string]string, len(s.states))
	for i, st := range s.states {
		out[strconv.Itoa(i+1)] = st.String()
	}
	return out
}

// UnavailableHours counts hours with any unavailable half, counting split
// hours as one half each.
func (s Schedule) UnavailableHours() float64 {
	total := 0.0
	for _, st := range s.states {
		first, second := st.Halves()
		if !first {
			total += 0.5
		}
		if !second {
			total += 0.5
		}
	}
	return total
}
