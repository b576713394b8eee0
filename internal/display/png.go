package display

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/spf13/afero"
)

// PNGFile rewrites a PNG file on every frame. The file is replaced by
// rename, so readers never see a partial image.
type PNGFile struct {
	fs   afero.Fs
	path string
}

// NewPNGFile returns a sink writing to path on fs.
func NewPNGFile(fs afero.Fs, path string) *PNGFile {
	return &PNGFile{fs: fs, path: path}
}

// Show implements Sink.
func (p *PNGFile) Show(_ context.Context, frame image.Image) error {
	tmp, err := afero.TempFile(p.fs, filepath.Dir(p.path), "."+filepath.Base(p.path)+"-*")
	if err != nil {
		return fmt.Errorf("png sink: %w", err)
	}
	name := tmp.Name()

	if err := png.Encode(tmp, frame); err != nil {
		tmp.Close()
		p.fs.Remove(name)
		return fmt.Errorf("png sink: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		p.fs.Remove(name)
		return fmt.Errorf("png sink: %w", err)
	}
	if err := p.fs.Rename(name, p.path); err != nil {
		p.fs.Remove(name)
		return fmt.Errorf("png sink: %w", err)
	}
	return nil
}

// Close implements Sink.
func (p *PNGFile) Close() error {
	return nil
}
