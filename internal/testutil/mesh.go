package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/stl"
)

// Box returns a closed, outward-wound box mesh spanning [min, min+size]
func Box(min, size geometry.Vector3) *stl.Model {
	x0, y0, z0 := min.X, min.Y, min.Z
	x1, y1, z1 := min.X+size.X, min.Y+size.Y, min.Z+size.Z
	v := geometry.NewVector3

	quads := [][4]geometry.Vector3{
		{v(x0, y0, z0), v(x0, y1, z0), v(x1, y1, z0), v(x1, y0, z0)}, // bottom
		{v(x0, y0, z1), v(x1, y0, z1), v(x1, y1, z1), v(x0, y1, z1)}, // top
		{v(x0, y0, z0), v(x1, y0, z0), v(x1, y0, z1), v(x0, y0, z1)}, // front
		{v(x0, y1, z0), v(x0, y1, z1), v(x1, y1, z1), v(x1, y1, z0)}, // back
		{v(x0, y0, z0), v(x0, y0, z1), v(x0, y1, z1), v(x0, y1, z0)}, // left
		{v(x1, y0, z0), v(x1, y1, z0), v(x1, y1, z1), v(x1, y0, z1)}, // right
	}

	model := stl.NewModel("box")
	for _, q := range quads {
		for _, tri := range [][3]geometry.Vector3{{q[0], q[1], q[2]}, {q[0], q[2], q[3]}} {
			t := geometry.NewTriangle(geometry.Vector3{}, tri[0], tri[1], tri[2])
			t.Normal = t.CalculateNormal()
			model.AddTriangle(t)
		}
	}
	return model
}

// Cube returns a cube with its minimum corner at the origin
func Cube(size float64) *stl.Model {
	return Box(geometry.Vector3{}, geometry.NewVector3(size, size, size))
}

// ASCII encodes a model as an ASCII STL document
func ASCII(model *stl.Model) string {
	var b strings.Builder
	fmt.Fprintf(&b, "solid %s\n", model.Name)
	for _, t := range model.Triangles {
		fmt.Fprintf(&b, "  facet normal %g %g %g\n    outer loop\n", t.Normal.X, t.Normal.Y, t.Normal.Z)
		for _, v := range t.Vertices() {
			fmt.Fprintf(&b, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		b.WriteString("    endloop\n  endfacet\n")
	}
	fmt.Fprintf(&b, "endsolid %s\n", model.Name)
	return b.String()
}

// Binary encodes a model as a binary STL payload
func Binary(model *stl.Model) []byte {
	var buf bytes.Buffer
	header := make([]byte, 80)
	copy(header, model.Name)
	buf.Write(header)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(model.Triangles)))
	f32 := func(v geometry.Vector3) [3]float32 {
		return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
	}
	for _, t := range model.Triangles {
		_ = binary.Write(&buf, binary.LittleEndian, struct {
			Normal, V1, V2, V3 [3]float32
			Attribute          uint16
		}{f32(t.Normal), f32(t.V1), f32(t.V2), f32(t.V3), 0})
	}
	return buf.Bytes()
}
