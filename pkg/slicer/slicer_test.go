package slicer_test

import (
	"math"
	"testing"

	"github.com/philipparndt/goslice/internal/testutil"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/slicer"
	"github.com/philipparndt/goslice/pkg/stl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalArea(triangles []geometry.Triangle) float64 {
	sum := 0.0
	for _, t := range triangles {
		sum += t.Area()
	}
	return sum
}

// hollowBox returns a 10mm box with a 4mm cavity running through its full height
func hollowBox() *stl.Model {
	outer := testutil.Box(geometry.Vector3{}, geometry.NewVector3(10, 10, 10))
	inner := testutil.Box(geometry.NewVector3(3, 3, -1), geometry.NewVector3(4, 4, 12))
	for _, t := range inner.Triangles {
		outer.AddTriangle(geometry.NewTriangle(t.Normal.Mul(-1), t.V1, t.V3, t.V2))
	}
	return outer
}

func TestNew_RejectsEmptyAndNonFinite(t *testing.T) {
	_, err := slicer.New(stl.NewModel("empty"))
	assert.ErrorIs(t, err, slicer.ErrEmptyMesh)

	bad := testutil.Cube(1)
	bad.Triangles[0].V1.X = math.NaN()
	_, err = slicer.New(bad)
	assert.Error(t, err)
}

func TestSlicer_HeightAndOffset(t *testing.T) {
	s, err := slicer.New(testutil.Box(geometry.NewVector3(0, 0, 3), geometry.NewVector3(5, 5, 7)))
	require.NoError(t, err)

	assert.InDelta(t, 7.0, s.ZHeight(), 1e-12)
	assert.InDelta(t, 3.0, s.ZOffset(), 1e-12)
}

func TestSlice_CubeMidHeight(t *testing.T) {
	s, err := slicer.New(testutil.Cube(10))
	require.NoError(t, err)

	res := s.Slice(5)
	require.Len(t, res.Polygons, 1)
	require.Len(t, res.Shapes, 1)

	shape := res.Shapes[0]
	assert.Empty(t, shape.Holes)
	assert.InDelta(t, 100.0, shape.Area(), 1e-9)
	assert.Greater(t, shape.Outer.SignedArea(), 0.0, "outer contour must be counter-clockwise")

	// bottom face plus the lower half of the four sides
	assert.InDelta(t, 300.0, totalArea(res.Geometry), 1e-9)
	assert.Equal(t, 5.0, res.Z)
}

func TestSlice_HollowBoxHasHole(t *testing.T) {
	s, err := slicer.New(hollowBox())
	require.NoError(t, err)

	res := s.Slice(5)
	require.Len(t, res.Polygons, 2)
	require.Len(t, res.Shapes, 1)

	shape := res.Shapes[0]
	require.Len(t, shape.Holes, 1)
	assert.Less(t, shape.Holes[0].SignedArea(), 0.0, "holes must be clockwise")
	assert.InDelta(t, 84.0, shape.Area(), 1e-9)
}

func TestSlice_OutsideMeshYieldsNoContours(t *testing.T) {
	s, err := slicer.New(testutil.Cube(10))
	require.NoError(t, err)

	above := s.Slice(25)
	assert.Empty(t, above.Polygons)
	assert.Len(t, above.Geometry, 12)

	below := s.Slice(-1)
	assert.Empty(t, below.Polygons)
	assert.Empty(t, below.Geometry)
}

func TestSlice_TwoSeparateBodies(t *testing.T) {
	model := testutil.Box(geometry.Vector3{}, geometry.NewVector3(2, 2, 4))
	other := testutil.Box(geometry.NewVector3(5, 0, 0), geometry.NewVector3(3, 3, 4))
	model.Triangles = append(model.Triangles, other.Triangles...)

	s, err := slicer.New(model)
	require.NoError(t, err)

	res := s.Slice(1)
	require.Len(t, res.Shapes, 2)
	// largest first
	assert.InDelta(t, 9.0, res.Shapes[0].Area(), 1e-9)
	assert.InDelta(t, 4.0, res.Shapes[1].Area(), 1e-9)
}
