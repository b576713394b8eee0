package display

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"
	"periph.io/x/host/v3"
)

// panel is the part of the e-paper driver the sink uses.
type panel interface {
	Init() error
	Clear(c color.Color) error
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Sleep() error
	Halt() error
	Bounds() image.Rectangle
}

// EPaper shows frames on a Waveshare 2.13" V4 HAT. The panel is woken for
// each frame and put back to sleep afterwards.
type EPaper struct {
	dev  panel
	port spi.PortCloser
}

// OpenEPaper initialises the host drivers and the HAT on the default SPI
// port.
func OpenEPaper() (*EPaper, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("epaper: host init: %w", err)
	}
	port, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("epaper: open spi: %w", err)
	}
	opts := waveshare2in13v4.EPD2in13v4
	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("epaper: %w", err)
	}
	e := &EPaper{dev: dev, port: port}
	if err := e.wake(); err != nil {
		port.Close()
		return nil, err
	}
	return e, nil
}

func newEPaper(dev panel) *EPaper {
	return &EPaper{dev: dev}
}

func (e *EPaper) wake() error {
	if err := e.dev.Init(); err != nil {
		return fmt.Errorf("epaper: init: %w", err)
	}
	if err := e.dev.Clear(color.White); err != nil {
		return fmt.Errorf("epaper: clear: %w", err)
	}
	return nil
}

// Dither scales frame to fit bounds over white and dithers it to one bit.
func Dither(frame image.Image, bounds image.Rectangle) *image1bit.VerticalLSB {
	flat := Flatten(frame, color.White)
	canvas := image.NewGray(bounds)
	draw.Draw(canvas, bounds, image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(canvas, Fit(flat.Bounds(), bounds), flat, flat.Bounds(), draw.Src, nil)

	img := image1bit.NewVerticalLSB(bounds)
	draw.FloydSteinberg.Draw(img, bounds, canvas, bounds.Min)
	return img
}

// Show implements Sink.
func (e *EPaper) Show(_ context.Context, frame image.Image) error {
	if err := e.dev.Init(); err != nil {
		return fmt.Errorf("epaper: wake: %w", err)
	}
	b := e.dev.Bounds()
	if err := e.dev.Draw(b, Dither(frame, b), b.Min); err != nil {
		return fmt.Errorf("epaper: draw: %w", err)
	}
	if err := e.dev.Sleep(); err != nil {
		return fmt.Errorf("epaper: sleep: %w", err)
	}
	return nil
}

// Close blanks and halts the panel and releases the SPI port.
func (e *EPaper) Close() error {
	if err := e.dev.Init(); err == nil {
		e.dev.Clear(color.White)
	}
	err := e.dev.Halt()
	if e.port != nil {
		if cerr := e.port.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("epaper: close: %w", err)
	}
	return nil
}
