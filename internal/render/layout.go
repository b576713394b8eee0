// Package render draws the power clock: colored schedule sectors under a
// decorative template (the static dial), rotating hands and date text (the
// per-tick frame).
package render

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/sweeney/power-clock/internal/geometry"
)

// Variant selects the face layout.
type Variant string

const (
	// Variant12 draws two 12-hour dials (AM and PM) side by side.
	Variant12 Variant = "12h"
	// Variant24 draws one 24-hour dial with date text.
	Variant24 Variant = "24h"
)

// HandKind identifies a clock hand.
type HandKind int

const (
	HourHand HandKind = iota
	MinuteHand
)

func (k HandKind) String() string {
	if k == MinuteHand {
		return "minute"
	}
	return "hour"
}

// HandSpec describes a hand sprite.
type HandSpec struct {
	Kind      HandKind
	Length    int
	Width     int
	CapRadius int
	Color     color.NRGBA
}

// Layout holds the fixed pixel geometry of a variant.
type Layout struct {
	Variant Variant
	// Cycle is the number of sectors on one dial.
	Cycle int
	// Size is the edge of one square dial.
	Size int
	// Gap separates side-by-side dials.
	Gap   int
	Outer float64
	Inner float64
	// BackingRadius is the radius of the white disk under each dial.
	BackingRadius float64
	Hands         []HandSpec
	// Text enables the date overlay.
	Text bool
}

var black = color.NRGBA{A: 255}

// Layout12 is the side-by-side AM/PM layout.
func Layout12() Layout {
	return Layout{
		Variant:       Variant12,
		Cycle:         12,
		Size:          200,
		Gap:           20,
		Outer:         73,
		Inner:         42,
		BackingRadius: 98,
		Hands: []HandSpec{
			{Kind: MinuteHand, Length: 90, Width: 4, CapRadius: 5, Color: black},
			{Kind: HourHand, Length: 70, Width: 7, CapRadius: 5, Color: black},
		},
	}
}

// Layout24 is the single 24-hour layout.
func Layout24() Layout {
	return Layout{
		Variant:       Variant24,
		Cycle:         24,
		Size:          400,
		Outer:         148,
		Inner:         83,
		BackingRadius: 160,
		Hands: []HandSpec{
			{Kind: HourHand, Length: 90, Width: 4, CapRadius: 6, Color: black},
		},
		Text: true,
	}
}

// LayoutFor returns the layout of a variant.
func LayoutFor(v Variant) (Layout, error) {
	switch v {
	case Variant12:
		return Layout12(), nil
	case Variant24:
		return Layout24(), nil
	}
	return Layout{}, fmt.Errorf("unknown variant %q (want %q or %q)", v, Variant12, Variant24)
}

// Dials returns how many dials the layout draws. The schedule always covers
// 24 hours; each dial shows Cycle of them.
func (l Layout) Dials() int {
	return 24 / l.Cycle
}

// Bounds returns the canvas rectangle.
func (l Layout) Bounds() image.Rectangle {
	n := l.Dials()
	return image.Rect(0, 0, n*l.Size+(n-1)*l.Gap, l.Size)
}

// DialOrigin returns the top-left corner of dial i.
func (l Layout) DialOrigin(i int) image.Point {
	return image.Pt(i*(l.Size+l.Gap), 0)
}

// DialCenter returns the center of dial i in canvas pixels.
func (l Layout) DialCenter(i int) geometry.Point {
	o := l.DialOrigin(i)
	return geometry.Point{
		X: float64(o.X) + float64(l.Size/2),
		Y: float64(o.Y) + float64(l.Size/2),
	}
}

// FirstHour returns the first schedule hour shown on dial i.
func (l Layout) FirstHour(i int) int {
	return i*l.Cycle + 1
}

// DialAt returns the dial that shows the current hands: the PM dial from
// noon on the 12-hour layout, the only dial otherwise.
func (l Layout) DialAt(now time.Time) int {
	if l.Dials() > 1 && now.Hour() >= 12 {
		return 1
	}
	return 0
}

// HandAngle returns the counter-clockwise sprite rotation for a hand.
func (l Layout) HandAngle(kind HandKind, now time.Time) float64 {
	if kind == MinuteHand {
		return geometry.MinuteAngle(now.Minute())
	}
	if l.Cycle == 24 {
		return geometry.HourAngle24(now.Hour(), now.Minute())
	}
	return geometry.HourAngle12(now.Hour(), now.Minute())
}
