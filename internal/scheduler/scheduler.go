// Package scheduler runs repeating tasks on their own goroutines.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Func is one run of a task.
type Func func(ctx context.Context) error

// Task runs Fn once at start and then Interval after each run finishes.
// When Fn fails with an error Retry accepts, the next run comes after
// RetryDelay instead. Other errors are logged and the normal interval
// applies.
type Task struct {
	Name       string
	Interval   time.Duration
	RetryDelay time.Duration
	Retry      func(error) bool
	Fn         Func
	Log        *logrus.Entry

	once    sync.Once
	trigger chan struct{}
}

func (t *Task) init() {
	t.once.Do(func() { t.trigger = make(chan struct{}, 1) })
}

// Trigger asks for a run as soon as possible. Triggers that arrive while a
// run is pending are coalesced.
func (t *Task) Trigger() {
	t.init()
	select {
	case t.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done.
func (t *Task) Run(ctx context.Context) {
	t.init()
	log := t.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("task", t.Name)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-t.trigger:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		next := t.Interval
		if err := t.Fn(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			if t.Retry != nil && t.Retry(err) {
				next = t.RetryDelay
				log.WithError(err).Debug("task not ready, retrying")
			} else {
				log.WithError(err).Warn("task failed")
			}
		}
		timer.Reset(next)
	}
}

// Group runs tasks until ctx is done and waits for all of them to return.
func Group(ctx context.Context, tasks ...*Task) {
	var wg sync.WaitGroup
	for _, t := range tasks {
		wg.Add(1)
		go func(t *Task) {
			defer wg.Done()
			t.Run(ctx)
		}(t)
	}
	wg.Wait()
}
