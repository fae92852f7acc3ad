// Package analysis computes the mesh information shown next to the viewers
package analysis

import (
	"fmt"
	"math"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/stl"
)

// Summary contains the measurements of an STL model
type Summary struct {
	Name          string
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	Faces         int
	Volume        float64
	SurfaceArea   float64
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
}

// DisplayVolume returns the volume truncated to whole cubic millimetres,
// the way the mesh panel shows it
func (s *Summary) DisplayVolume() int {
	return int(s.Volume)
}

// Summarize measures a model
func Summarize(model *stl.Model) *Summary {
	result := &Summary{
		Name:        model.Name,
		BoundingBox: model.BoundingBox(),
		Faces:       model.TriangleCount(),
		Volume:      model.Volume(),
	}
	result.Dimensions = result.BoundingBox.Size()

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0
	edges := 0

	for _, triangle := range model.Triangles {
		result.SurfaceArea += triangle.Area()

		vertices := triangle.Vertices()
		for i := range vertices {
			length := vertices[i].Sub(vertices[(i+1)%3]).Length()
			totalLength += length
			edges++
			minLength = math.Min(minLength, length)
			maxLength = math.Max(maxLength, length)
		}
	}

	if edges > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(edges)
	}

	return result
}

// FormatMeasurement formats a measurement with its unit
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "mm"
	}
	return fmt.Sprintf("%.3f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
