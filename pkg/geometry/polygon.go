package geometry

import "math"

// Point2 is a point in the XY plane of a slice
type Point2 struct {
	X, Y float64
}

// Polygon is a closed contour; the last point connects back to the first
type Polygon []Point2

// SignedArea returns the shoelace area; positive for counter-clockwise contours
func (p Polygon) SignedArea() float64 {
	area := 0.0
	for i := range p {
		j := (i + 1) % len(p)
		area += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return area / 2.0
}

// Area returns the absolute enclosed area
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Reversed returns a copy with the opposite winding
func (p Polygon) Reversed() Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[len(p)-1-i] = pt
	}
	return out
}

// Contains tests a point against the polygon using the even-odd ray rule
func (p Polygon) Contains(pt Point2) bool {
	inside := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y) + a.X
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
