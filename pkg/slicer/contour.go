package slicer

import (
	"math"
	"sort"

	"github.com/philipparndt/goslice/pkg/geometry"
)

// weldTolerance is the distance under which two cut points are the same
const weldTolerance = 1e-6

type segment struct {
	a, b geometry.Point2
}

type pointKey struct {
	x, y int64
}

func keyOf(p geometry.Point2) pointKey {
	return pointKey{
		x: int64(math.Round(p.X / weldTolerance)),
		y: int64(math.Round(p.Y / weldTolerance)),
	}
}

// intersect returns the segment where triangle t crosses the plane z=world.
// A vertex lying exactly on the plane counts as above it, so each crossing
// edge is seen identically by both triangles sharing it.
func intersect(t geometry.Triangle, world float64) (segment, bool) {
	v := t.Vertices()
	var points []geometry.Point2
	for i := 0; i < 3; i++ {
		a, b := v[i], v[(i+1)%3]
		if (a.Z >= world) == (b.Z >= world) {
			continue
		}
		p := a.Lerp(b, (world-a.Z)/(b.Z-a.Z))
		points = append(points, geometry.Point2{X: p.X, Y: p.Y})
	}
	if len(points) != 2 || keyOf(points[0]) == keyOf(points[1]) {
		return segment{}, false
	}
	return segment{a: points[0], b: points[1]}, true
}

// chainSegments joins unordered cut segments into closed contours. Segments
// that cannot be closed (open meshes) are kept as long as they have at
// least three points.
func chainSegments(segments []segment) []geometry.Polygon {
	byPoint := make(map[pointKey][]int, len(segments)*2)
	for i, s := range segments {
		byPoint[keyOf(s.a)] = append(byPoint[keyOf(s.a)], i)
		byPoint[keyOf(s.b)] = append(byPoint[keyOf(s.b)], i)
	}

	used := make([]bool, len(segments))
	var polygons []geometry.Polygon

	for start := range segments {
		if used[start] {
			continue
		}
		used[start] = true

		contour := geometry.Polygon{segments[start].a, segments[start].b}
		first := keyOf(segments[start].a)
		last := segments[start].b

		for {
			next, point := -1, geometry.Point2{}
			for _, idx := range byPoint[keyOf(last)] {
				if used[idx] {
					continue
				}
				s := segments[idx]
				if keyOf(s.a) == keyOf(last) {
					next, point = idx, s.b
				} else {
					next, point = idx, s.a
				}
				break
			}
			if next < 0 {
				break
			}
			used[next] = true
			if keyOf(point) == first {
				break
			}
			contour = append(contour, point)
			last = point
		}

		if len(contour) >= 3 {
			polygons = append(polygons, contour)
		}
	}

	return polygons
}

// groupShapes assigns every contour a nesting depth. Even depths are
// outlines, odd depths are holes of the smallest outline containing them.
func groupShapes(polygons []geometry.Polygon) []Shape {
	depth := make([]int, len(polygons))
	for i, p := range polygons {
		for j, q := range polygons {
			if i != j && q.Contains(p[0]) {
				depth[i]++
			}
		}
	}

	var shapes []Shape
	outerIndex := make(map[int]int)
	for i, p := range polygons {
		if depth[i]%2 != 0 {
			continue
		}
		if p.SignedArea() < 0 {
			p = p.Reversed()
		}
		outerIndex[i] = len(shapes)
		shapes = append(shapes, Shape{Outer: p})
	}

	for i, p := range polygons {
		if depth[i]%2 == 0 {
			continue
		}
		parent, parentArea := -1, math.MaxFloat64
		for j := range polygons {
			if _, ok := outerIndex[j]; !ok || depth[j] != depth[i]-1 {
				continue
			}
			if polygons[j].Contains(p[0]) && polygons[j].Area() < parentArea {
				parent, parentArea = j, polygons[j].Area()
			}
		}
		if parent < 0 {
			continue
		}
		if p.SignedArea() > 0 {
			p = p.Reversed()
		}
		s := &shapes[outerIndex[parent]]
		s.Holes = append(s.Holes, p)
	}

	sort.SliceStable(shapes, func(i, j int) bool {
		return shapes[i].Outer.Area() > shapes[j].Outer.Area()
	})
	return shapes
}
