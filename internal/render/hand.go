package render

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Hand is an immutable sprite of a hand pointing up from the canvas center.
type Hand struct {
	Spec   HandSpec
	sprite *image.RGBA
}

// NewHand draws the sprite for spec on a 2×Length square so that any
// rotation about the center stays inside the canvas.
func NewHand(spec HandSpec) *Hand {
	size := spec.Length * 2
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cx, cy := size/2, size/2
	src := image.NewUniform(spec.Color)

	shaft := image.Rect(cx-spec.Width/2, cy-spec.Length, cx+spec.Width/2+1, cy+1)
	draw.Draw(img, shaft, src, image.Point{}, draw.Src)

	r := spec.CapRadius
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				img.Set(cx+x, cy+y, spec.Color)
			}
		}
	}
	return &Hand{Spec: spec, sprite: img}
}

// Sprite returns the upright sprite. Callers must not modify it.
func (h *Hand) Sprite() *image.RGBA {
	return h.sprite
}

// Rotate returns the sprite rotated counter-clockwise by deg degrees about
// its center. The result has the sprite's bounds; whole turns return an exact
// copy.
func (h *Hand) Rotate(deg float64) *image.RGBA {
	b := h.sprite.Bounds()
	dst := image.NewRGBA(b)
	if math.Mod(deg, 360) == 0 {
		copy(dst.Pix, h.sprite.Pix)
		return dst
	}

	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	cx := float64(b.Min.X) + float64(b.Dx())/2
	cy := float64(b.Min.Y) + float64(b.Dy())/2

	// Source to destination: counter-clockwise on a y-down canvas.
	m := f64.Aff3{
		cos, sin, cx - cos*cx - sin*cy,
		-sin, cos, cy + sin*cx - cos*cy,
	}
	draw.CatmullRom.Transform(dst, m, h.sprite, b, draw.Src, nil)
	return dst
}

// pasteCentered composites sprite over dst centered on (cx, cy).
func pasteCentered(dst *image.RGBA, sprite *image.RGBA, cx, cy int) {
	sb := sprite.Bounds()
	at := image.Pt(cx-sb.Dx()/2, cy-sb.Dy()/2)
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(sb.Size())}, sprite, sb.Min, draw.Over)
}
