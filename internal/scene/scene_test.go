package scene_test

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/internal/scene"
	"github.com/philipparndt/goslice/internal/testutil"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/slicer"
)

var (
	volume = geometry.NewVector3(100, 100, 100)

	settings3D = scene.Settings{
		Target:      "viewer1",
		BuildVolume: volume,
		Size:        scene.Size{Width: 120, Height: 90},
	}
	settings2D = scene.Settings{
		Target:     "viewer3",
		BuildPlate: volume,
		Screen:     scene.Screen{Width: 600, Height: 400, Diagonal: 7.99},
	}
)

func square(cx, cy, half float64) geometry.Polygon {
	return geometry.Polygon{
		{X: cx - half, Y: cy - half},
		{X: cx + half, Y: cy - half},
		{X: cx + half, Y: cy + half},
		{X: cx - half, Y: cy + half},
	}
}

func TestScreenDotPitch(t *testing.T) {
	s := scene.Screen{Width: 600, Height: 400, Diagonal: 7.99}
	expected := 7.99 * 25.4 / math.Hypot(600, 400)
	assert.InDelta(t, expected, s.DotPitch(), 1e-12)
	assert.InDelta(t, 0.281, s.DotPitch(), 0.001)

	assert.Zero(t, scene.Screen{}.DotPitch())
}

func TestInvalidSettings(t *testing.T) {
	_, err := scene.NewViewer3D(scene.Settings{Target: "viewer1", BuildVolume: volume})
	assert.Error(t, err)

	_, err = scene.NewViewer2D(scene.Settings{Target: "viewer3"})
	assert.Error(t, err)
}

func TestViewer3DRejectsBadObjects(t *testing.T) {
	v, err := scene.NewViewer3D(settings3D)
	require.NoError(t, err)

	mesh := scene.NewMesh("cube", testutil.Cube(10).Triangles)
	require.NoError(t, v.AddObject(mesh))
	assert.ErrorIs(t, v.AddObject(mesh), scene.ErrDuplicateObject)

	nan := geometry.NewVector3(math.NaN(), 0, 0)
	broken := scene.NewMesh("broken", []geometry.Triangle{geometry.NewTriangle(geometry.Vector3{}, nan, nan, nan)})
	assert.ErrorIs(t, v.AddObject(broken), scene.ErrMalformedGeometry)

	assert.ErrorIs(t, v.AddObject(scene.NewShape(slicer.Shape{Outer: square(0, 0, 1)})), scene.ErrUnsupportedObject)
	assert.Equal(t, 1, v.Len())

	require.NoError(t, v.RemoveObject(mesh))
	require.NoError(t, v.RemoveObject(mesh))
	assert.Zero(t, v.Len())
}

func TestViewer3DRender(t *testing.T) {
	v, err := scene.NewViewer3D(settings3D)
	require.NoError(t, err)

	frame, version := v.Frame()
	assert.Nil(t, frame)
	assert.Zero(t, version)

	var notified []string
	v.OnFrame(func(target string) { notified = append(notified, target) })

	plane := scene.NewPlane(100, 100, geometry.Vector3{})
	require.NoError(t, v.AddObject(plane))
	require.NoError(t, v.AddObject(scene.NewMesh("cube", testutil.Box(geometry.NewVector3(-5, -5, 0), geometry.NewVector3(10, 10, 10)).Triangles)))
	require.NoError(t, v.Render())

	plane.SetZ(5)
	require.NoError(t, v.Render())

	frame, version = v.Frame()
	require.NotNil(t, frame)
	assert.Equal(t, uint64(2), version)
	assert.Equal(t, 120, frame.Bounds().Dx())
	assert.Equal(t, 90, frame.Bounds().Dy())
	assert.Equal(t, []string{"viewer1", "viewer1"}, notified)

	data, err := v.PNG()
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, frame.Bounds(), decoded.Bounds())
}

func TestViewer3DCamera(t *testing.T) {
	v, err := scene.NewViewer3D(settings3D)
	require.NoError(t, err)

	v.Orbit(10, 0.5)
	v.Zoom(-0.5)
	require.NoError(t, v.Render())
	v.ResetCamera()
	require.NoError(t, v.Render())
}

func TestPlaneClone(t *testing.T) {
	p := scene.NewPlane(100, 80, geometry.NewVector3(0, 0, 2))
	c := p.Clone()

	assert.NotEqual(t, p.ID(), c.ID())
	c.SetZ(7)
	assert.Equal(t, 2.0, p.Z())
	assert.Equal(t, 7.0, c.Z())
}

func TestViewer2DRendersShapesWithHoles(t *testing.T) {
	v, err := scene.NewViewer2D(settings2D)
	require.NoError(t, err)
	assert.Equal(t, settings2D.Screen, v.Screen())

	_, err = v.PNG()
	assert.Error(t, err)

	ring := scene.NewShape(slicer.Shape{
		Outer: square(0, 0, 10),
		Holes: []geometry.Polygon{square(0, 0, 4).Reversed()},
	})
	solid := scene.NewShape(slicer.Shape{Outer: square(30, 0, 3)})
	require.NoError(t, v.AddObject(ring))
	require.NoError(t, v.AddObject(solid))
	require.NoError(t, v.Render())

	frame, _ := v.Frame()
	require.NotNil(t, frame)
	assert.Equal(t, 600, frame.Bounds().Dx())

	pixel := func(p geometry.Point2) uint8 {
		x, y := v.ToScreen(p)
		return frame.RGBAAt(int(x), int(y)).R
	}

	assert.Equal(t, uint8(0), pixel(geometry.Point2{X: 0, Y: 0}), "hole")
	assert.Equal(t, uint8(255), pixel(geometry.Point2{X: 7, Y: 0}), "ring")
	assert.Equal(t, uint8(255), pixel(geometry.Point2{X: 30, Y: 0}), "solid")
	assert.Equal(t, uint8(0), pixel(geometry.Point2{X: -40, Y: 30}), "empty")

	require.NoError(t, v.RemoveObject(ring))
	require.NoError(t, v.Render())
	frame, _ = v.Frame()
	assert.Equal(t, uint8(0), pixel(geometry.Point2{X: 7, Y: 0}))
}

func TestViewer2DRejectsBadObjects(t *testing.T) {
	v, err := scene.NewViewer2D(settings2D)
	require.NoError(t, err)

	assert.ErrorIs(t, v.AddObject(scene.NewShape(slicer.Shape{Outer: square(0, 0, 1)[:2]})), scene.ErrMalformedGeometry)
	assert.ErrorIs(t, v.AddObject(scene.NewPlane(10, 10, geometry.Vector3{})), scene.ErrUnsupportedObject)

	bad := square(0, 0, 1)
	bad[1].X = math.Inf(1)
	assert.ErrorIs(t, v.AddObject(scene.NewShape(slicer.Shape{Outer: bad})), scene.ErrMalformedGeometry)
}
