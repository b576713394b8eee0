// Package position persists the widget's on-screen position as "x,y".
package position

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// Default is used when no position has been saved or the file is unreadable.
var Default = Point{X: 200, Y: 200}

// Point is a screen position in pixels.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Parse reads the "x,y" form.
func Parse(s string) (Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Point{}, fmt.Errorf("position %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Point{}, fmt.Errorf("position x: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Point{}, fmt.Errorf("position y: %w", err)
	}
	return Point{X: x, Y: y}, nil
}

// Store reads and writes the position file.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore returns a store for path on fs.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Load returns the saved position, or Default if the file is missing or
// malformed.
func (s *Store) Load() Point {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return Default
	}
	p, err := Parse(string(data))
	if err != nil {
		return Default
	}
	return p
}

// Save writes p, replacing any previous position.
func (s *Store) Save(p Point) error {
	if err := afero.WriteFile(s.fs, s.path, []byte(p.String()), 0o644); err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}
