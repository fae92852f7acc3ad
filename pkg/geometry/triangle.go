package geometry

import "math"

// Triangle represents a triangular facet in 3D space
type Triangle struct {
	Normal     Vector3
	V1, V2, V3 Vector3
}

// NewTriangle creates a new triangle
func NewTriangle(normal, v1, v2, v3 Vector3) Triangle {
	return Triangle{Normal: normal, V1: v1, V2: v2, V3: v3}
}

// Vertices returns the three corners in winding order
func (t Triangle) Vertices() [3]Vector3 {
	return [3]Vector3{t.V1, t.V2, t.V3}
}

// CalculateNormal computes the normal vector from the winding order
func (t Triangle) CalculateNormal() Vector3 {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1)).Normalize()
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float64 {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1)).Length() / 2.0
}

// SignedVolume returns the signed volume of the tetrahedron spanned by the
// origin and the triangle. Summed over a closed mesh it yields the enclosed volume.
func (t Triangle) SignedVolume() float64 {
	return t.V1.Dot(t.V2.Cross(t.V3)) / 6.0
}

// ZRange returns the lowest and highest Z of the three vertices
func (t Triangle) ZRange() (float64, float64) {
	return math.Min(t.V1.Z, math.Min(t.V2.Z, t.V3.Z)), math.Max(t.V1.Z, math.Max(t.V2.Z, t.V3.Z))
}

// IsFinite reports whether every vertex has finite coordinates
func (t Triangle) IsFinite() bool {
	return t.V1.IsFinite() && t.V2.IsFinite() && t.V3.IsFinite()
}
