package scene

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/vector"

	"github.com/philipparndt/goslice/internal/viewport"
	"github.com/philipparndt/goslice/pkg/geometry"
)

// Viewer2D renders the current layer as the printer screen shows it: lit
// pixels where material is cured, black elsewhere. Millimetres map to
// pixels through the screen dot pitch with the plate centre in the middle.
type Viewer2D struct {
	surface
	settings Settings
	dotPitch float64
}

// NewViewer2D creates a 2D layer viewer for a printer screen
func NewViewer2D(settings Settings) (*Viewer2D, error) {
	if err := settings.validate2D(); err != nil {
		return nil, err
	}
	return &Viewer2D{
		surface:  surface{target: settings.Target},
		settings: settings,
		dotPitch: settings.Screen.DotPitch(),
	}, nil
}

// Screen returns the screen the viewer renders for
func (v *Viewer2D) Screen() Screen {
	return v.settings.Screen
}

// DotPitch returns the millimetres per screen pixel
func (v *Viewer2D) DotPitch() float64 {
	return v.dotPitch
}

// AddObject adds a layer shape to the scene
func (v *Viewer2D) AddObject(obj viewport.Object) error {
	s, ok := obj.(*Shape)
	if !ok {
		return fmt.Errorf("%w: %T on %s", ErrUnsupportedObject, obj, v.target)
	}
	if err := s.validate(); err != nil {
		return err
	}
	return v.add(obj)
}

// RemoveObject removes a shape from the scene
func (v *Viewer2D) RemoveObject(obj viewport.Object) error {
	v.remove(obj)
	return nil
}

// Render rasterizes every shape into a new frame. Holes are wound opposite
// to their outer contour, so their coverage cancels out.
func (v *Viewer2D) Render() error {
	w, h := v.settings.Screen.Width, v.settings.Screen.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)

	raster := vector.NewRasterizer(w, h)
	for _, obj := range v.objects {
		s, ok := obj.(*Shape)
		if !ok {
			continue
		}
		v.contour(raster, s.Shape.Outer)
		for _, hole := range s.Shape.Holes {
			v.contour(raster, hole)
		}
	}
	raster.Draw(img, img.Bounds(), image.White, image.Point{})

	v.publish(img)
	return nil
}

// ToScreen maps plate millimetres to screen pixels
func (v *Viewer2D) ToScreen(p geometry.Point2) (float32, float32) {
	x := float64(v.settings.Screen.Width)/2 + p.X/v.dotPitch
	y := float64(v.settings.Screen.Height)/2 - p.Y/v.dotPitch
	return float32(x), float32(y)
}

func (v *Viewer2D) contour(raster *vector.Rasterizer, polygon geometry.Polygon) {
	if len(polygon) < 3 {
		return
	}
	raster.MoveTo(v.ToScreen(polygon[0]))
	for _, p := range polygon[1:] {
		raster.LineTo(v.ToScreen(p))
	}
	raster.ClosePath()
}
