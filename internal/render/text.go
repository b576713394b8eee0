package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Months holds the three-letter month labels, January first.
var Months = [12]string{
	"Січ", "Лют", "Бер", "Кві", "Тра", "Чер",
	"Лип", "Сер", "Вер", "Жов", "Лис", "Гру",
}

// MonthLabel returns the label for m.
func MonthLabel(m time.Month) string {
	return Months[(int(m)-1+12)%12]
}

// TextStyle holds the date overlay constants. Offsets are relative to the
// dial center.
type TextStyle struct {
	Title string

	MainSize  float64
	TitleSize float64
	YearSize  float64

	TitleOffsetY int
	DateOffsetY  int
	// DateOffsetX separates the month (right-anchored) and day
	// (left-anchored) from the vertical center line.
	DateOffsetX int
	YearOffsetY int

	PadX, PadY int
	BoxRadius  int

	TextColor color.NRGBA
	BoxColor  color.NRGBA
}

// DefaultTextStyle returns the overlay used by the 24-hour face.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		Title:        "Черга 5.1",
		MainSize:     18,
		TitleSize:    16,
		YearSize:     18,
		TitleOffsetY: -45,
		DateOffsetY:  18,
		DateOffsetX:  34,
		YearOffsetY:  55,
		PadX:         6,
		PadY:         3,
		BoxRadius:    1,
		TextColor:    color.NRGBA{A: 255},
		BoxColor:     color.NRGBA{A: 180},
	}
}

type anchor int

const (
	anchorMiddle anchor = iota
	anchorRight
	anchorLeft
)

// TextOverlay draws title, date and year around a dial center. Its font
// faces are not safe for concurrent use.
type TextOverlay struct {
	style TextStyle
	main  font.Face
	title font.Face
	year  font.Face
}

// NewTextOverlay builds the three faces from one font.
func NewTextOverlay(ft *opentype.Font, style TextStyle) (*TextOverlay, error) {
	face := func(size float64) (font.Face, error) {
		return opentype.NewFace(ft, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	main, err := face(style.MainSize)
	if err != nil {
		return nil, fmt.Errorf("main face: %w", err)
	}
	title, err := face(style.TitleSize)
	if err != nil {
		return nil, fmt.Errorf("title face: %w", err)
	}
	year, err := face(style.YearSize)
	if err != nil {
		return nil, fmt.Errorf("year face: %w", err)
	}
	return &TextOverlay{style: style, main: main, title: title, year: year}, nil
}

// Draw writes the overlay for now onto dst around center.
func (t *TextOverlay) Draw(dst *image.RGBA, center image.Point, now time.Time) {
	s := t.style
	cx, cy := center.X, center.Y

	t.box(dst, t.title, s.Title, cx, cy+s.TitleOffsetY, anchorMiddle)

	y := cy + s.DateOffsetY
	t.box(dst, t.main, MonthLabel(now.Month()), cx-s.DateOffsetX, y, anchorRight)
	t.box(dst, t.main, strconv.Itoa(now.Day()), cx+s.DateOffsetX, y, anchorLeft)

	t.box(dst, t.year, strconv.Itoa(now.Year()), cx, cy+s.YearOffsetY, anchorMiddle)
}

// box draws text anchored at (x, y) inside a padded rounded outline.
func (t *TextOverlay) box(dst *image.RGBA, face font.Face, text string, x, y int, a anchor) {
	s := t.style
	bounds, advance := font.BoundString(face, text)
	w := (bounds.Max.X - bounds.Min.X).Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()

	var x0, x1 int
	dot := fixed.I(x)
	switch a {
	case anchorRight:
		x0, x1 = x-w-s.PadX, x+s.PadX
		dot -= advance
	case anchorLeft:
		x0, x1 = x-s.PadX, x+w+s.PadX
	default:
		x0, x1 = x-w/2-s.PadX, x+w/2+s.PadX
		dot -= advance / 2
	}
	y0, y1 := y-h/2-s.PadY, y+h/2+s.PadY

	roundedOutline(dst, image.Rect(x0, y0, x1, y1), s.BoxRadius, s.BoxColor)

	m := face.Metrics()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(s.TextColor),
		Face: face,
		Dot:  fixed.Point26_6{X: dot, Y: fixed.I(y) + (m.Ascent-m.Descent)/2},
	}
	d.DrawString(text)
}

// roundedOutline strokes a one-pixel outline of r whose corners are rounded
// with radius radius. r is inclusive of its Max edge.
func roundedOutline(dst *image.RGBA, r image.Rectangle, radius int, c color.NRGBA) {
	mask := image.NewAlpha(dst.Bounds())
	set := func(x, y int) {
		if image.Pt(x, y).In(mask.Rect) {
			mask.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}

	x0, y0, x1, y1 := r.Min.X, r.Min.Y, r.Max.X, r.Max.Y
	for x := x0 + radius; x <= x1-radius; x++ {
		set(x, y0)
		set(x, y1)
	}
	for y := y0 + radius; y <= y1-radius; y++ {
		set(x0, y)
		set(x1, y)
	}

	if radius > 0 {
		corners := []struct{ cx, cy, sx, sy int }{
			{x0 + radius, y0 + radius, -1, -1},
			{x1 - radius, y0 + radius, 1, -1},
			{x0 + radius, y1 - radius, -1, 1},
			{x1 - radius, y1 - radius, 1, 1},
		}
		lo := float64(radius) - 0.5
		hi := float64(radius) + 0.5
		for _, cn := range corners {
			for dy := 0; dy <= radius; dy++ {
				for dx := 0; dx <= radius; dx++ {
					d2 := float64(dx*dx + dy*dy)
					if d2 >= lo*lo && d2 < hi*hi {
						set(cn.cx+cn.sx*dx, cn.cy+cn.sy*dy)
					}
				}
			}
		}
	}

	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, mask, mask.Rect.Min, draw.Over)
}
