package cmd

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/internal/testutil"
	"github.com/philipparndt/goslice/pkg/geometry"
)

// writeModel writes a 10x10x5 box standing on z=1 and returns its path
func writeModel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "box.stl")
	model := testutil.Box(geometry.NewVector3(0, 0, 1), geometry.NewVector3(10, 10, 5))
	require.NoError(t, os.WriteFile(path, testutil.Binary(model), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "goslice dev\n", out)
}

func TestLayers(t *testing.T) {
	path := writeModel(t)

	out, _, err := execute(t, "layers", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Faces")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "500 mm³")
	assert.Contains(t, out, "5.000 mm")
	assert.Contains(t, out, "50")
}

func TestLayersWithLayerHeightFlag(t *testing.T) {
	path := writeModel(t)

	out, _, err := execute(t, "layers", "--layer-height", "0.05", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0.050 mm")
	assert.Contains(t, out, "100")
}

func TestLayersMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := execute(t, "layers", "nope.stl")
	assert.Error(t, err)
}

func TestSliceAtLayer(t *testing.T) {
	path := writeModel(t)
	out := filepath.Join(t.TempDir(), "layer.png")

	stdout, stderr, err := execute(t, "slice", path, "--layer", "26", "--png", out)
	require.NoError(t, err)

	assert.Contains(t, stdout, "2.500 mm")
	assert.Contains(t, stdout, "26 / 50")
	assert.Contains(t, stdout, "100.000")
	assert.Contains(t, stderr, "layer image written")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestSliceAboveModel(t *testing.T) {
	path := writeModel(t)

	out, _, err := execute(t, "slice", path, "--z", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Shapes")
	assert.NotContains(t, out, "Area")
}

func TestSliceFlagsExclusive(t *testing.T) {
	path := writeModel(t)
	_, _, err := execute(t, "slice", path, "--z", "1", "--layer", "2")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	path := writeModel(t)
	_, _, err := execute(t, "layers", "--log-format", "xml", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}
