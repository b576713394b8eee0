package gpio

import (
	"errors"
	"testing"

	"github.com/sweeney/power-clock/internal/buttons"
)

// Both the fake and the real reader satisfy the button sampler.
var (
	_ buttons.Reader = (*FakeReader)(nil)
	_ Reader         = (*FakeReader)(nil)
	_ Reader         = (*RealReader)(nil)
)

func TestFakeReaderRead(t *testing.T) {
	f := NewFakeReader([]Sample{
		{Refresh: true, Dismiss: false},
		{Refresh: false, Dismiss: true},
	})

	refresh, dismiss, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !refresh || dismiss {
		t.Errorf("sample 0: expected (true, false), got (%v, %v)", refresh, dismiss)
	}

	refresh, dismiss, err = f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refresh || !dismiss {
		t.Errorf("sample 1: expected (false, true), got (%v, %v)", refresh, dismiss)
	}

	// Exhausted samples repeat the last one.
	refresh, dismiss, _ = f.Read()
	if refresh || !dismiss {
		t.Errorf("repeat: expected (false, true), got (%v, %v)", refresh, dismiss)
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)
	if _, _, err := f.Read(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]Sample{{Refresh: true}})
	f.ReadError = errors.New("simulated error")

	_, _, err := f.Read()
	if err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader([]Sample{{}})
	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeReaderReset(t *testing.T) {
	f := NewFakeReader([]Sample{{Refresh: true}, {Dismiss: true}})
	f.Read()
	f.Reset()

	refresh, dismiss, _ := f.Read()
	if !refresh || dismiss {
		t.Errorf("after reset: expected (true, false), got (%v, %v)", refresh, dismiss)
	}
}
