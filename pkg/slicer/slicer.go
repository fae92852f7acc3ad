// Package slicer intersects a triangle mesh with horizontal planes. It
// produces the closed contours of each cross-section, groups them into
// shapes with holes, and clips the mesh below the cut for preview.
package slicer

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/stl"
)

// ErrEmptyMesh is returned when a model has no usable triangles
var ErrEmptyMesh = errors.New("slicer: mesh has no triangles")

// Shape is one filled region of a cross-section: an outer contour wound
// counter-clockwise and any holes wound clockwise
type Shape struct {
	Outer geometry.Polygon
	Holes []geometry.Polygon
}

// Area returns the filled area of the shape
func (s Shape) Area() float64 {
	area := s.Outer.Area()
	for _, h := range s.Holes {
		area -= h.Area()
	}
	return area
}

// Result is the output of one slice
type Result struct {
	Z        float64 // position relative to the mesh base
	Polygons []geometry.Polygon
	Shapes   []Shape
	Geometry []geometry.Triangle // mesh clipped to everything below the cut
	Time     time.Duration
}

// Slicer holds an immutable, Z-sorted copy of a mesh. It is safe for
// concurrent use by multiple goroutines.
type Slicer struct {
	model     *stl.Model
	bounds    geometry.BoundingBox
	triangles []geometry.Triangle // sorted by minimum Z
}

// New prepares a model for slicing. Triangles with non-finite coordinates
// make the mesh malformed and are rejected.
func New(model *stl.Model) (*Slicer, error) {
	if model == nil || model.TriangleCount() == 0 {
		return nil, ErrEmptyMesh
	}

	triangles := make([]geometry.Triangle, len(model.Triangles))
	copy(triangles, model.Triangles)
	for i, t := range triangles {
		if !t.IsFinite() {
			return nil, fmt.Errorf("slicer: triangle %d has non-finite coordinates", i)
		}
	}

	sort.Slice(triangles, func(i, j int) bool {
		a, _ := triangles[i].ZRange()
		b, _ := triangles[j].ZRange()
		return a < b
	})

	return &Slicer{
		model:     model,
		bounds:    model.BoundingBox(),
		triangles: triangles,
	}, nil
}

// Model returns the source model
func (s *Slicer) Model() *stl.Model {
	return s.model
}

// Bounds returns the bounding box of the mesh in world space
func (s *Slicer) Bounds() geometry.BoundingBox {
	return s.bounds
}

// ZHeight returns the full height of the mesh
func (s *Slicer) ZHeight() float64 {
	return s.bounds.Size().Z
}

// ZOffset returns the world Z of the mesh base
func (s *Slicer) ZOffset() float64 {
	return s.bounds.Min.Z
}

// Slice cuts the mesh at z, measured from the mesh base. Positions outside
// [0, ZHeight] are sliced as given and simply yield no contours.
func (s *Slicer) Slice(z float64) *Result {
	start := time.Now()
	world := s.ZOffset() + z

	// Triangles are sorted by their lowest vertex; everything after the
	// first triangle starting above the plane cannot intersect it.
	end := sort.Search(len(s.triangles), func(i int) bool {
		lo, _ := s.triangles[i].ZRange()
		return lo > world
	})

	var segments []segment
	var below []geometry.Triangle
	for i := 0; i < end; i++ {
		t := s.triangles[i]
		if seg, ok := intersect(t, world); ok {
			segments = append(segments, seg)
		}
		below = append(below, clipBelow(t, world)...)
	}

	polygons := chainSegments(segments)
	return &Result{
		Z:        z,
		Polygons: polygons,
		Shapes:   groupShapes(polygons),
		Geometry: below,
		Time:     time.Since(start),
	}
}
