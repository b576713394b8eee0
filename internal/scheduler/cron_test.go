package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarRejectsBadSpec(t *testing.T) {
	_, err := NewCalendar("every day at noon", func() {}, quietLog())
	assert.Error(t, err)
}

func TestCalendarAcceptsDescriptors(t *testing.T) {
	for _, spec := range []string{"@midnight", "0 0 * * *", "*/5 * * * *"} {
		_, err := NewCalendar(spec, func() {}, quietLog())
		assert.NoError(t, err, spec)
	}
}

func TestCalendarFiresAndStops(t *testing.T) {
	var fired atomic.Int32
	c, err := NewCalendar("@every 1s", func() { fired.Add(1) }, quietLog())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return fired.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
