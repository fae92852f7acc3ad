package geometry

import "testing"

func square(x0, y0, size float64) Polygon {
	return Polygon{{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size}}
}

func TestPolygonSignedArea(t *testing.T) {
	p := square(0, 0, 2)
	if p.SignedArea() != 4 {
		t.Errorf("expected CCW area 4, got %v", p.SignedArea())
	}
	if p.Reversed().SignedArea() != -4 {
		t.Errorf("expected CW area -4, got %v", p.Reversed().SignedArea())
	}
}

func TestPolygonContains(t *testing.T) {
	p := square(0, 0, 10)
	if !p.Contains(Point2{5, 5}) {
		t.Errorf("center should be inside")
	}
	if p.Contains(Point2{15, 5}) {
		t.Errorf("point right of square should be outside")
	}
}
