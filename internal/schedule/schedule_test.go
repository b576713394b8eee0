package schedule

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHourState(t *testing.T) {
	tests := []struct {
		label string
		want  HourState
	}{
		{"yes", Available},
		{"no", Unavailable},
		{"first", UnavailableThenAvailable},
		{"second", AvailableThenUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseHourState(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.label, got.String())
		})
	}
}

func TestParseHourStateUnknown(t *testing.T) {
	got, err := ParseHourState("maybe")
	assert.True(t, errors.Is(err, ErrUnknownState))
	assert.Equal(t, Available, got)
}

func TestHalves(t *testing.T) {
	tests := []struct {
		state         HourState
		first, second bool
		split         bool
	}{
		{Available, true, true, false},
		{Unavailable, false, false, false},
		{UnavailableThenAvailable, false, true, true},
		{AvailableThenUnavailable, true, false, true},
	}
	for _, tt := range tests {
		first, second := tt.state.Halves()
		assert.Equal(t, tt.first, first, tt.state.String())
		assert.Equal(t, tt.second, second, tt.state.String())
		assert.Equal(t, tt.split, tt.state.Split(), tt.state.String())
	}
}

func TestNormalizeTotal(t *testing.T) {
	for _, cycle := range []int{12, 24} {
		t.Run(strconv.Itoa(cycle), func(t *testing.T) {
			raw := map[string]string{"2": "no", "5": "first"}
			s, issues, err := Normalize(raw, cycle)
			require.NoError(t, err)
			assert.Empty(t, issues)
			require.Equal(t, cycle, s.Len())

			for hour := 1; hour <= cycle; hour++ {
				want := Available
				switch hour {
				case 2:
					want = Unavailable
				case 5:
					want = UnavailableThenAvailable
				}
				assert.Equal(t, want, s.State(hour), "hour %d", hour)
			}
			assert.Len(t, s.Labels(), cycle)
		})
	}
}

func TestNormalizeEmpty(t *testing.T) {
	s, issues, err := Normalize(nil, 24)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, "yyyyyyyyyyyyyyyyyyyyyyyy", s.Fingerprint())
	assert.Equal(t, 0.0, s.UnavailableHours())
}

func TestNormalizeUnknownStateDefaultsToAvailable(t *testing.T) {
	s, issues, err := Normalize(map[string]string{"3": "maybe", "4": "no"}, 12)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "3", issues[0].Key)
	assert.True(t, errors.Is(issues[0].Err, ErrUnknownState))
	assert.Equal(t, Available, s.State(3))
	assert.Equal(t, Unavailable, s.State(4))
}

func TestNormalizeBadKeys(t *testing.T) {
	raw := map[string]string{
		"0":   "no",
		"13":  "no",
		"abc": "no",
		" 7 ": "second",
	}
	s, issues, err := Normalize(raw, 12)
	require.NoError(t, err)
	assert.Len(t, issues, 3)
	assert.Equal(t, AvailableThenUnavailable, s.State(7))
	assert.Equal(t, "yyyyyysyyyyy", s.Fingerprint())
}

func TestNormalizeRejectsCycle(t *testing.T) {
	_, _, err := Normalize(nil, 48)
	assert.True(t, errors.Is(err, ErrCycle))

	_, err = New(6)
	assert.True(t, errors.Is(err, ErrCycle))
}

func TestStateOutOfRange(t *testing.T) {
	s, _, err := Normalize(map[string]string{"1": "no"}, 12)
	require.NoError(t, err)
	assert.Equal(t, Available, s.State(0))
	assert.Equal(t, Available, s.State(13))

	var zero Schedule
	assert.Equal(t, 0, zero.Len())
	assert.Equal(t, Available, zero.State(1))
}

func TestFingerprintAndUnavailableHours(t *testing.T) {
	raw := map[string]string{"1": "no", "2": "first", "3": "second", "24": "no"}
	s, _, err := Normalize(raw, 24)
	require.NoError(t, err)
	assert.Equal(t, "nfsyyyyyyyyyyyyyyyyyyyyn", s.Fingerprint())
	assert.Equal(t, 3.0, s.UnavailableHours())
}
