// Package scene implements the render surfaces: two software 3D viewers
// that draw meshes and the cut plane inside the build volume, and a 2D
// viewer that rasterizes a layer as a black and white mask for the
// printer screen.
package scene

import (
	"fmt"
	"math"

	"github.com/philipparndt/goslice/pkg/geometry"
)

const mmPerInch = 25.4

// Size is a pixel size
type Size struct {
	Width  int
	Height int
}

// Screen describes the physical printer screen shown by the 2D viewer
type Screen struct {
	Width    int     // px
	Height   int     // px
	Diagonal float64 // in
}

// DotPitch returns the size of one screen pixel in millimetres
func (s Screen) DotPitch() float64 {
	px := math.Hypot(float64(s.Width), float64(s.Height))
	if px == 0 {
		return 0
	}
	return s.Diagonal * mmPerInch / px
}

func (s Screen) String() string {
	return fmt.Sprintf("%dx%d px, %.2f in", s.Width, s.Height, s.Diagonal)
}

// Settings configure a render surface. 3D viewers use BuildVolume and Size;
// the 2D viewer uses BuildPlate and Screen.
type Settings struct {
	Target      string
	BuildVolume geometry.Vector3
	BuildPlate  geometry.Vector3
	Size        Size
	Screen      Screen
}

func (s Settings) validate3D() error {
	if s.Size.Width <= 0 || s.Size.Height <= 0 {
		return fmt.Errorf("%s: invalid viewer size %dx%d", s.Target, s.Size.Width, s.Size.Height)
	}
	if s.BuildVolume.X <= 0 || s.BuildVolume.Y <= 0 || s.BuildVolume.Z <= 0 {
		return fmt.Errorf("%s: invalid build volume %+v", s.Target, s.BuildVolume)
	}
	return nil
}

func (s Settings) validate2D() error {
	if s.Screen.Width <= 0 || s.Screen.Height <= 0 || s.Screen.Diagonal <= 0 {
		return fmt.Errorf("%s: invalid screen %s", s.Target, s.Screen)
	}
	return nil
}
