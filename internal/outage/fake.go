package outage

import (
	"context"
	"sync"
	"time"
)

// FakeFetcher returns scripted schedules for tests.
type FakeFetcher struct {
	mu sync.Mutex

	// Hours is returned by every Fetch unless Err is set.
	Hours map[string]string

	// Err, if set, is returned by Fetch.
	Err error

	// Delay blocks Fetch until it elapses or the context is done.
	Delay time.Duration

	calls int
	days  []time.Time
}

// NewFakeFetcher creates a FakeFetcher returning hours.
func NewFakeFetcher(hours map[string]string) *FakeFetcher {
	return &FakeFetcher{Hours: hours}
}

// Fetch records the call and returns the scripted result.
func (f *FakeFetcher) Fetch(ctx context.Context, day time.Time) (map[string]string, error) {
	f.mu.Lock()
	f.calls++
	f.days = append(f.days, day)
	delay := f.Delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[string]string, len(f.Hours))
	for k, v := range f.Hours {
		out[k] = v
	}
	return out, nil
}

// Set replaces the scripted result.
func (f *FakeFetcher) Set(hours map[string]string, err error) {
	f.mu.Lock()
	f.Hours = hours
	f.Err = err
	f.mu.Unlock()
}

// Calls returns how many times Fetch was called.
func (f *FakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Days returns the day argument of every call.
func (f *FakeFetcher) Days() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.days...)
}
