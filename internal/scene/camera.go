package scene

import (
	"math"

	"github.com/philipparndt/goslice/pkg/geometry"
)

// Camera orbits a target point with Z as the up axis
type Camera struct {
	Position  geometry.Vector3
	Target    geometry.Vector3
	Up        geometry.Vector3
	FOV       float64 // Field of view in radians
	Distance  float64
	Elevation float64 // angle above the XY plane
	Azimuth   float64 // angle around Z, 0 looks along +Y
}

// NewCamera creates a camera looking at the whole bounding box from the
// front, slightly above
func NewCamera(bbox geometry.BoundingBox) *Camera {
	size := bbox.Size()
	distance := math.Max(size.X, math.Max(size.Y, size.Z)) * 2.0
	if distance == 0 {
		distance = 1
	}

	c := &Camera{
		Target:    bbox.Center(),
		Up:        geometry.NewVector3(0, 0, 1),
		FOV:       math.Pi / 4, // 45 degrees
		Distance:  distance,
		Elevation: math.Pi / 6,
		Azimuth:   math.Pi / 8,
	}
	c.UpdatePosition()
	return c
}

// UpdatePosition places the camera from its spherical coordinates
func (c *Camera) UpdatePosition() {
	x := c.Distance * math.Cos(c.Elevation) * math.Sin(c.Azimuth)
	y := -c.Distance * math.Cos(c.Elevation) * math.Cos(c.Azimuth)
	z := c.Distance * math.Sin(c.Elevation)

	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
}

// Rotate orbits the camera by the given angles
func (c *Camera) Rotate(deltaElevation, deltaAzimuth float64) {
	c.Elevation += deltaElevation
	c.Azimuth += deltaAzimuth

	// Clamp elevation to prevent gimbal lock
	maxAngle := math.Pi/2 - 0.1
	c.Elevation = math.Max(-maxAngle, math.Min(maxAngle, c.Elevation))

	c.UpdatePosition()
}

// Zoom changes the camera distance by a relative amount
func (c *Camera) Zoom(delta float64) {
	c.Distance *= (1.0 + delta)
	if c.Distance < 0.1 {
		c.Distance = 0.1
	}
	c.UpdatePosition()
}

// Project projects a 3D point to screen coordinates; the third value is
// the depth along the view direction
func (c *Camera) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	forward := c.Target.Sub(c.Position).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward).Normalize()

	relative := point.Sub(c.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := relative.Dot(forward)

	if z <= 0.01 {
		z = 0.01 // Prevent division by zero
	}

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	screenX := (x/(z*fovScale*aspect))*(width/2) + (width / 2)
	screenY := (-y/(z*fovScale))*(height/2) + (height / 2)

	return screenX, screenY, z
}
