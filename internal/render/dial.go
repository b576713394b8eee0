package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/sweeney/power-clock/internal/geometry"
	"github.com/sweeney/power-clock/internal/schedule"
)

// Sector fill colors.
var (
	Green = color.NRGBA{R: 80, G: 180, B: 90, A: 190}
	Red   = color.NRGBA{R: 220, G: 70, B: 70, A: 190}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Ring is the annulus a dial paints its sectors on.
type Ring struct {
	Size  int
	Outer float64
	Inner float64
}

// ResizeTemplate scales a template to a size×size RGBA image with a
// Catmull-Rom kernel.
func ResizeTemplate(src image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// RenderDial paints the sectors for hours first..first+cycle-1 onto a
// transparent size×size layer and composites template over them. The
// template must already be size×size (see ResizeTemplate); nil skips it.
func RenderDial(s schedule.Schedule, first, cycle int, ring Ring, template image.Image) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ring.Size, ring.Size))
	c := geometry.Point{X: float64(ring.Size / 2), Y: float64(ring.Size / 2)}

	for hour := first; hour < first+cycle; hour++ {
		start, _, end := geometry.SectorAngles(hour, cycle)
		firstOn, secondOn := s.State(hour).Halves()
		if firstOn == secondOn {
			fillPolygon(img, geometry.SectorPolygon(c, start, end, ring.Outer, ring.Inner), sectorColor(firstOn))
			continue
		}
		a, b := geometry.SplitSector(c, start, end, ring.Outer, ring.Inner)
		fillPolygon(img, a, sectorColor(firstOn))
		fillPolygon(img, b, sectorColor(secondOn))
	}

	if template != nil {
		draw.Draw(img, img.Bounds(), template, template.Bounds().Min, draw.Over)
	}
	return img
}

func sectorColor(available bool) color.NRGBA {
	if available {
		return Green
	}
	return Red
}

// fillPolygon fills a closed polygon with an anti-aliased edge.
func fillPolygon(dst *image.RGBA, pts []geometry.Point, c color.Color) {
	if len(pts) < 3 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	ox, oy := float64(b.Min.X), float64(b.Min.Y)
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// composeStatic lays every dial over its white backing disk.
func composeStatic(l Layout, dials []*image.RGBA) *image.RGBA {
	canvas := image.NewRGBA(l.Bounds())
	for i, d := range dials {
		fillPolygon(canvas, geometry.Circle(l.DialCenter(i), l.BackingRadius), White)
		o := l.DialOrigin(i)
		draw.Draw(canvas, d.Bounds().Add(o), d, image.Point{}, draw.Over)
	}
	return canvas
}
