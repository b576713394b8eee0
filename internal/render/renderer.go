package render

import (
	"fmt"
	"image"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/image/font/opentype"

	"github.com/sweeney/power-clock/internal/schedule"
)

// DefaultCacheSize is the number of static dials kept by default.
const DefaultCacheSize = 8

// Options configures a Renderer.
type Options struct {
	Layout Layout
	// Templates holds one decorative template per dial, any size.
	Templates []image.Image
	// Font and Text are used only by layouts with Text set.
	Font *opentype.Font
	Text TextStyle
	// CacheSize bounds the static dial cache; 0 uses DefaultCacheSize.
	CacheSize int
}

// Renderer owns everything that is built once: resized templates, hand
// sprites and font faces. StaticDial is safe for concurrent use; Frame is
// not, because font faces keep per-face glyph caches.
type Renderer struct {
	layout    Layout
	templates []*image.RGBA
	hands     []*Hand
	text      *TextOverlay
	cache     *lru.Cache
}

// New validates opts and pre-renders templates, hands and faces.
func New(opts Options) (*Renderer, error) {
	l := opts.Layout
	if l.Cycle != 12 && l.Cycle != 24 {
		return nil, fmt.Errorf("layout cycle must be 12 or 24, got %d", l.Cycle)
	}
	if len(opts.Templates) != l.Dials() {
		return nil, fmt.Errorf("%s layout needs %d templates, got %d", l.Variant, l.Dials(), len(opts.Templates))
	}

	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("dial cache: %w", err)
	}

	r := &Renderer{layout: l, cache: cache}
	for i, t := range opts.Templates {
		if t == nil {
			return nil, fmt.Errorf("template %d is nil", i)
		}
		r.templates = append(r.templates, ResizeTemplate(t, l.Size))
	}
	for _, spec := range l.Hands {
		r.hands = append(r.hands, NewHand(spec))
	}
	if l.Text {
		if opts.Font == nil {
			return nil, fmt.Errorf("%s layout needs a font", l.Variant)
		}
		r.text, err = NewTextOverlay(opts.Font, opts.Text)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Layout returns the layout the renderer draws.
func (r *Renderer) Layout() Layout {
	return r.layout
}

// Hands returns the hand sprites in drawing order.
func (r *Renderer) Hands() []*Hand {
	return r.hands
}

// StaticDial returns the composited backing disks, sectors and templates for
// a 24-hour schedule. Results are cached by fingerprint and shared; callers
// must treat them as read-only. cached reports a cache hit.
func (r *Renderer) StaticDial(s schedule.Schedule) (img *image.RGBA, cached bool) {
	key := s.Fingerprint()
	if v, ok := r.cache.Get(key); ok {
		return v.(*image.RGBA), true
	}

	l := r.layout
	ring := Ring{Size: l.Size, Outer: l.Outer, Inner: l.Inner}
	dials := make([]*image.RGBA, l.Dials())
	for i := range dials {
		dials[i] = RenderDial(s, l.FirstHour(i), l.Cycle, ring, r.templates[i])
	}
	img = composeStatic(l, dials)
	r.cache.Add(key, img)
	return img, false
}

// CacheLen returns the number of cached static dials.
func (r *Renderer) CacheLen() int {
	return r.cache.Len()
}

// Frame copies dial and draws the hands and, for text layouts, the date for
// now.
func (r *Renderer) Frame(dial *image.RGBA, now time.Time) *image.RGBA {
	frame := image.NewRGBA(dial.Bounds())
	copy(frame.Pix, dial.Pix)

	l := r.layout
	c := l.DialCenter(l.DialAt(now))
	cx, cy := int(c.X), int(c.Y)
	for _, h := range r.hands {
		pasteCentered(frame, h.Rotate(l.HandAngle(h.Spec.Kind, now)), cx, cy)
	}
	if r.text != nil {
		r.text.Draw(frame, image.Pt(cx, cy), now)
	}
	return frame
}
