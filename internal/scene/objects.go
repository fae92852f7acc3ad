package scene

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/google/uuid"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/slicer"
)

var (
	// ErrMalformedGeometry is returned when an object holds geometry a
	// surface cannot draw
	ErrMalformedGeometry = errors.New("scene: malformed geometry")
	// ErrDuplicateObject is returned when an object is already in the scene
	ErrDuplicateObject = errors.New("scene: object already added")
	// ErrUnsupportedObject is returned when a surface cannot display an object kind
	ErrUnsupportedObject = errors.New("scene: unsupported object")
)

// Mesh is a triangle mesh drawn by the 3D viewers
type Mesh struct {
	id        string
	Name      string
	Triangles []geometry.Triangle
}

// NewMesh creates a mesh object with a fresh identity
func NewMesh(name string, triangles []geometry.Triangle) *Mesh {
	return &Mesh{id: uuid.NewString(), Name: name, Triangles: triangles}
}

func (m *Mesh) ID() string { return m.id }

// Bounds returns the bounding box of the mesh
func (m *Mesh) Bounds() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, t := range m.Triangles {
		bbox.Extend(t.V1)
		bbox.Extend(t.V2)
		bbox.Extend(t.V3)
	}
	return bbox
}

func (m *Mesh) validate() error {
	for i, t := range m.Triangles {
		if !t.IsFinite() {
			return fmt.Errorf("%w: mesh %q triangle %d", ErrMalformedGeometry, m.Name, i)
		}
	}
	return nil
}

// Plane is the horizontal cut plane. Its Z is in world coordinates.
type Plane struct {
	id     string
	Width  float64
	Depth  float64
	Center geometry.Vector3
	Color  color.RGBA
}

// NewPlane creates a plane of the given XY extent centred on center
func NewPlane(width, depth float64, center geometry.Vector3) *Plane {
	return &Plane{
		id:     uuid.NewString(),
		Width:  width,
		Depth:  depth,
		Center: center,
		Color:  color.RGBA{R: 0, G: 160, B: 255, A: 255},
	}
}

func (p *Plane) ID() string { return p.id }

// Z returns the world height of the plane
func (p *Plane) Z() float64 { return p.Center.Z }

// SetZ moves the plane to a world height
func (p *Plane) SetZ(z float64) { p.Center.Z = z }

// Clone returns a copy of the plane with a new identity
func (p *Plane) Clone() *Plane {
	c := *p
	c.id = uuid.NewString()
	return &c
}

// corners returns the four corners in counter-clockwise order
func (p *Plane) corners() [4]geometry.Vector3 {
	hw, hd := p.Width/2, p.Depth/2
	c := p.Center
	return [4]geometry.Vector3{
		{X: c.X - hw, Y: c.Y - hd, Z: c.Z},
		{X: c.X + hw, Y: c.Y - hd, Z: c.Z},
		{X: c.X + hw, Y: c.Y + hd, Z: c.Z},
		{X: c.X - hw, Y: c.Y + hd, Z: c.Z},
	}
}

func (p *Plane) validate() error {
	if !p.Center.IsFinite() || math.IsNaN(p.Width) || math.IsNaN(p.Depth) || p.Width <= 0 || p.Depth <= 0 {
		return fmt.Errorf("%w: plane %vx%v at %+v", ErrMalformedGeometry, p.Width, p.Depth, p.Center)
	}
	return nil
}

// Shape is one filled region of a layer, drawn by the 2D viewer
type Shape struct {
	id    string
	Shape slicer.Shape
}

// NewShape wraps a slice shape into a displayable object
func NewShape(s slicer.Shape) *Shape {
	return &Shape{id: uuid.NewString(), Shape: s}
}

func (s *Shape) ID() string { return s.id }

func (s *Shape) validate() error {
	contours := append([]geometry.Polygon{s.Shape.Outer}, s.Shape.Holes...)
	for _, c := range contours {
		if len(c) < 3 {
			return fmt.Errorf("%w: contour with %d points", ErrMalformedGeometry, len(c))
		}
		for _, p := range c {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				return fmt.Errorf("%w: non-finite contour point", ErrMalformedGeometry)
			}
		}
	}
	return nil
}
