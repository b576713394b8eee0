// Package widget owns the power clock's lifecycle: it refreshes the schedule
// and the static dial on one task, draws frames on another, and hands frames
// to the display sinks.
package widget

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/power-clock/internal/display"
	"github.com/sweeney/power-clock/internal/metrics"
	"github.com/sweeney/power-clock/internal/mqtt"
	"github.com/sweeney/power-clock/internal/outage"
	"github.com/sweeney/power-clock/internal/render"
	"github.com/sweeney/power-clock/internal/schedule"
	"github.com/sweeney/power-clock/internal/scheduler"
	"github.com/sweeney/power-clock/internal/status"
)

// ErrDialNotReady is returned by RefreshFrame before the first schedule has
// been drawn.
var ErrDialNotReady = errors.New("dial not ready")

// Default task timings.
const (
	DefaultDataInterval  = 15 * time.Minute
	DefaultFrameInterval = time.Minute
	DefaultRetryDelay    = 100 * time.Millisecond
)

// Options configures a Widget. Fetcher, Renderer and Sink are required; the
// rest may be left zero.
type Options struct {
	Fetcher  outage.Fetcher
	Queue    string
	Renderer *render.Renderer
	Sink     display.Sink

	Publisher mqtt.Publisher
	Tracker   *status.Tracker
	Metrics   *metrics.Metrics
	Log       *logrus.Entry
	Now       func() time.Time

	FetchTimeout  time.Duration
	DataInterval  time.Duration
	FrameInterval time.Duration
	RetryDelay    time.Duration
}

// Widget is the running clock face.
type Widget struct {
	opts Options
	log  *logrus.Entry

	dial  atomic.Pointer[image.RGBA]
	frame atomic.Pointer[image.RGBA]

	// Owned by the data task.
	fingerprint string
	day         time.Time

	data   *scheduler.Task
	frames *scheduler.Task

	dismissOnce sync.Once
	dismissed   chan struct{}
}

// New validates opts and fills in defaults.
func New(opts Options) (*Widget, error) {
	if opts.Fetcher == nil || opts.Renderer == nil || opts.Sink == nil {
		return nil, fmt.Errorf("widget: fetcher, renderer and sink are required")
	}
	if opts.Log == nil {
		opts.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = outage.DefaultTimeout
	}
	if opts.DataInterval <= 0 {
		opts.DataInterval = DefaultDataInterval
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	w := &Widget{
		opts:      opts,
		log:       opts.Log,
		dismissed: make(chan struct{}),
	}
	w.data = &scheduler.Task{
		Name:     "data",
		Interval: opts.DataInterval,
		Fn:       w.RefreshData,
		Log:      opts.Log,
	}
	w.frames = &scheduler.Task{
		Name:       "frame",
		Interval:   opts.FrameInterval,
		RetryDelay: opts.RetryDelay,
		Retry:      func(err error) bool { return errors.Is(err, ErrDialNotReady) },
		Fn:         w.RefreshFrame,
		Log:        opts.Log,
	}
	return w, nil
}

// RefreshData fetches today's schedule, renders the static dial and
// publishes it. A failed fetch is logged and the empty schedule is shown.
func (w *Widget) RefreshData(ctx context.Context) error {
	now := w.opts.Now()

	fctx, cancel := context.WithTimeout(ctx, w.opts.FetchTimeout)
	started := time.Now()
	raw, err := w.opts.Fetcher.Fetch(fctx, now)
	cancel()
	w.opts.Metrics.ObserveFetch(time.Since(started), err)
	if w.opts.Tracker != nil {
		w.opts.Tracker.RecordFetch(now, err)
	}

	fallback := false
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.log.WithError(err).Warn("schedule fetch failed, showing empty schedule")
		raw, fallback = nil, true
	}

	s, issues, err := schedule.Normalize(raw, 24)
	if err != nil {
		return err
	}
	for _, is := range issues {
		w.log.WithFields(logrus.Fields{"hour": is.Key, "state": is.Value}).
			WithError(is.Err).Warn("schedule entry not understood")
	}

	dial, cached := w.opts.Renderer.StaticDial(s)
	w.opts.Metrics.ObserveDial(cached)
	w.dial.Store(dial)

	unavailable := s.UnavailableHours()
	w.opts.Metrics.SetSchedule(unavailable, len(issues))
	if w.opts.Tracker != nil {
		w.opts.Tracker.SetSchedule(now, s.Fingerprint(), unavailable, len(issues), fallback)
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if fp := s.Fingerprint(); fp != w.fingerprint || !day.Equal(w.day) {
		w.log.WithFields(logrus.Fields{
			"fingerprint":       fp,
			"unavailable_hours": unavailable,
			"fallback":          fallback,
		}).Info("schedule updated")
		w.fingerprint, w.day = fp, day
		w.publish(mqtt.ScheduleEvent{
			Timestamp: now,
			Day:       day,
			Queue:     w.opts.Queue,
			Schedule:  s,
			Fallback:  fallback,
		})
	}

	w.frames.Trigger()
	return nil
}

func (w *Widget) publish(ev mqtt.ScheduleEvent) {
	if w.opts.Publisher == nil {
		return
	}
	if err := w.opts.Publisher.PublishSchedule(ev); err != nil {
		w.log.WithError(err).Warn("schedule publish failed")
	}
	if cs, ok := w.opts.Publisher.(mqtt.ConnectionStatus); ok && w.opts.Tracker != nil {
		w.opts.Tracker.SetMQTTConnected(cs.IsConnected())
	}
}

// RefreshFrame draws the hands and date over the current dial and shows the
// frame. It returns ErrDialNotReady until RefreshData has run once.
func (w *Widget) RefreshFrame(ctx context.Context) error {
	dial := w.dial.Load()
	if dial == nil {
		return ErrDialNotReady
	}

	now := w.opts.Now()
	frame := w.opts.Renderer.Frame(dial, now)
	w.frame.Store(frame)
	w.opts.Metrics.ObserveFrame(now)
	if w.opts.Tracker != nil {
		w.opts.Tracker.RecordFrame(now)
	}

	if err := w.opts.Sink.Show(ctx, frame); err != nil {
		w.log.WithError(err).Warn("display failed")
	}
	return nil
}

// Dial returns the current static dial, or nil before the first refresh.
// The image must not be modified.
func (w *Widget) Dial() *image.RGBA {
	return w.dial.Load()
}

// Frame returns the most recent frame, or nil before the first one. The
// image must not be modified.
func (w *Widget) Frame() *image.RGBA {
	return w.frame.Load()
}

// Refresh asks the data task to run now.
func (w *Widget) Refresh() {
	w.data.Trigger()
}

// Dismiss tears the widget down. It is safe to call more than once.
func (w *Widget) Dismiss() {
	w.dismissOnce.Do(func() {
		w.log.Info("dismissed")
		close(w.dismissed)
	})
}

// Dismissed is closed once Dismiss has been called.
func (w *Widget) Dismissed() <-chan struct{} {
	return w.dismissed
}

// Run drives both tasks until ctx is done or the widget is dismissed, and
// waits for them to stop.
func (w *Widget) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.dismissed:
			cancel()
		case <-ctx.Done():
		}
	}()
	scheduler.Group(ctx, w.data, w.frames)
}
