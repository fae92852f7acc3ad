package geometry

import (
	"math"
	"testing"
)

func TestTriangleArea(t *testing.T) {
	// Right triangle with sides 3, 4, 5
	tri := NewTriangle(
		NewVector3(0, 0, 1),
		NewVector3(0, 0, 0),
		NewVector3(3, 0, 0),
		NewVector3(0, 4, 0),
	)

	if math.Abs(tri.Area()-6.0) > 1e-10 {
		t.Errorf("Area failed: expected 6, got %v", tri.Area())
	}
}

func TestTriangleZRange(t *testing.T) {
	tri := NewTriangle(Vector3{}, NewVector3(0, 0, 2), NewVector3(1, 0, -1), NewVector3(0, 1, 5))

	lo, hi := tri.ZRange()
	if lo != -1 || hi != 5 {
		t.Errorf("ZRange failed: expected (-1, 5), got (%v, %v)", lo, hi)
	}
}

func TestTriangleSignedVolumeOfUnitCube(t *testing.T) {
	// Two triangles per face of a unit cube, outward winding
	v := func(x, y, z float64) Vector3 { return NewVector3(x, y, z) }
	faces := [][4]Vector3{
		{v(0, 0, 0), v(0, 1, 0), v(1, 1, 0), v(1, 0, 0)}, // bottom
		{v(0, 0, 1), v(1, 0, 1), v(1, 1, 1), v(0, 1, 1)}, // top
		{v(0, 0, 0), v(1, 0, 0), v(1, 0, 1), v(0, 0, 1)}, // front
		{v(0, 1, 0), v(0, 1, 1), v(1, 1, 1), v(1, 1, 0)}, // back
		{v(0, 0, 0), v(0, 0, 1), v(0, 1, 1), v(0, 1, 0)}, // left
		{v(1, 0, 0), v(1, 1, 0), v(1, 1, 1), v(1, 0, 1)}, // right
	}

	volume := 0.0
	for _, f := range faces {
		volume += NewTriangle(Vector3{}, f[0], f[1], f[2]).SignedVolume()
		volume += NewTriangle(Vector3{}, f[0], f[2], f[3]).SignedVolume()
	}

	if math.Abs(volume-1.0) > 1e-10 {
		t.Errorf("SignedVolume failed: expected 1, got %v", volume)
	}
}
