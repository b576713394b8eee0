package position

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	p, err := Parse("120,340")
	require.NoError(t, err)
	assert.Equal(t, Point{X: 120, Y: 340}, p)

	p, err = Parse(" -15, 40\n")
	require.NoError(t, err)
	assert.Equal(t, Point{X: -15, Y: 40}, p)

	for _, bad := range []string{"", "120", "a,b", "1,", ",2", "1,2,3"} {
		_, err := Parse(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestLoadDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "pos.txt")
	assert.Equal(t, Default, s.Load(), "missing file")

	require.NoError(t, afero.WriteFile(fs, "pos.txt", []byte("garbage"), 0o644))
	assert.Equal(t, Point{X: 200, Y: 200}, s.Load(), "malformed file")
}

func TestSaveLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "pos.txt")

	require.NoError(t, s.Save(Point{X: 640, Y: 12}))
	data, err := afero.ReadFile(fs, "pos.txt")
	require.NoError(t, err)
	assert.Equal(t, "640,12", string(data))
	assert.Equal(t, Point{X: 640, Y: 12}, s.Load())

	require.NoError(t, s.Save(Point{X: 1, Y: 2}))
	assert.Equal(t, Point{X: 1, Y: 2}, s.Load())
}

func TestSaveReadOnly(t *testing.T) {
	s := NewStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "pos.txt")
	assert.Error(t, s.Save(Point{}))
}
