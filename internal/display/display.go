// Package display delivers finished frames to output surfaces.
package display

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
)

// Sink shows frames. Show is called from a single goroutine; frames must be
// treated as read-only.
type Sink interface {
	Show(ctx context.Context, frame image.Image) error
	Close() error
}

// Multi fans a frame out to every sink. All sinks are tried; errors are
// joined.
type Multi []Sink

// Show implements Sink.
func (m Multi) Show(ctx context.Context, frame image.Image) error {
	var errs []error
	for _, s := range m {
		if err := s.Show(ctx, frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Sink.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flatten composites frame over an opaque background.
func Flatten(frame image.Image, bg color.Color) *image.RGBA {
	b := frame.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), frame, b.Min, draw.Over)
	return dst
}

// Fit returns the largest rectangle with src's aspect ratio centered in
// bounds.
func Fit(src, bounds image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	bw, bh := bounds.Dx(), bounds.Dy()
	if sw == 0 || sh == 0 {
		return image.Rectangle{}
	}
	w, h := bw, sh*bw/sw
	if h > bh {
		w, h = sw*bh/sh, bh
	}
	x := bounds.Min.X + (bw-w)/2
	y := bounds.Min.Y + (bh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// Fake records frames for tests.
type Fake struct {
	mu     sync.Mutex
	frames []image.Image
	closed bool
	// Err, if set, is returned by Show.
	Err error
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{}
}

// Show records frame.
func (f *Fake) Show(_ context.Context, frame image.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
	return f.Err
}

// Close marks the sink closed.
func (f *Fake) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Frames returns the recorded frames.
func (f *Fake) Frames() []image.Image {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]image.Image(nil), f.frames...)
}

// Last returns the most recent frame, or nil.
func (f *Fake) Last() image.Image {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
