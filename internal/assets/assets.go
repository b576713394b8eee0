// Package assets resolves and loads the static resources a clock face needs:
// decorative ring templates and the text font. Resources are looked up
// through a Resolver so the loader does not care whether it runs from a
// source checkout or from an installed bundle.
package assets

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // template decoders
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrMissing is returned when a required resource cannot be opened.
var ErrMissing = errors.New("missing asset")

// Resolver opens named resources.
type Resolver interface {
	Open(name string) (io.ReadCloser, error)
	// Describe returns where name would be read from, for log messages.
	Describe(name string) string
}

// DirResolver reads resources relative to a directory.
type DirResolver struct {
	fs  afero.Fs
	dir string
}

// NewDirResolver returns a resolver rooted at dir on fs.
func NewDirResolver(fs afero.Fs, dir string) *DirResolver {
	return &DirResolver{fs: fs, dir: dir}
}

// WorkingDir resolves resources relative to the process working directory.
func WorkingDir(fs afero.Fs) (*DirResolver, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	return NewDirResolver(fs, wd), nil
}

// Open opens dir/name.
func (r *DirResolver) Open(name string) (io.ReadCloser, error) {
	f, err := r.fs.Open(r.Describe(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissing, name, err)
	}
	return f, nil
}

// Describe returns the full path of name.
func (r *DirResolver) Describe(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.dir, name)
}

// BundleResolver reads resources from a bundle root, falling back to a
// second resolver when the bundle lacks them. Installed builds ship assets
// next to the executable; development runs keep them in the checkout.
type BundleResolver struct {
	bundle   afero.Fs
	root     string
	fallback Resolver
}

// NewBundleResolver returns a resolver reading root on fs first.
func NewBundleResolver(fs afero.Fs, root string, fallback Resolver) *BundleResolver {
	return &BundleResolver{
		bundle:   afero.NewBasePathFs(fs, root),
		root:     root,
		fallback: fallback,
	}
}

// ExecutableBundle returns a bundle resolver rooted at the running binary's
// directory.
func ExecutableBundle(fs afero.Fs, fallback Resolver) (*BundleResolver, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return NewBundleResolver(fs, filepath.Dir(exe), fallback), nil
}

// Open opens name inside the bundle, then through the fallback.
func (r *BundleResolver) Open(name string) (io.ReadCloser, error) {
	f, err := r.bundle.Open(filepath.Clean("/" + name))
	if err == nil {
		return f, nil
	}
	if r.fallback != nil {
		return r.fallback.Open(name)
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrMissing, name, err)
}

// Describe returns the bundle path of name.
func (r *BundleResolver) Describe(name string) string {
	return filepath.Join(r.root, name)
}

// LoadImage decodes the image resource name.
func LoadImage(r Resolver, name string) (image.Image, error) {
	f, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.Describe(name), err)
	}
	return img, nil
}

// LoadFont parses the font resource name. An empty name yields the bundled
// Go Regular face.
func LoadFont(r Resolver, name string) (*opentype.Font, error) {
	if name == "" {
		return DefaultFont()
	}
	f, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.Describe(name), err)
	}
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", r.Describe(name), err)
	}
	return ft, nil
}

// DefaultFont returns the Go Regular font, which covers Cyrillic.
func DefaultFont() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
}
