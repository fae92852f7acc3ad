package scene

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/philipparndt/goslice/internal/viewport"
	"github.com/philipparndt/goslice/pkg/geometry"
)

var (
	background3D = color.RGBA{R: 32, G: 33, B: 38, A: 255}
	volumeColor  = color.RGBA{R: 110, G: 110, B: 120, A: 255}
	gridColor    = color.RGBA{R: 58, G: 60, B: 68, A: 255}
	axisColors   = [3]color.RGBA{
		{R: 230, G: 70, B: 70, A: 255},
		{R: 80, G: 200, B: 90, A: 255},
		{R: 80, G: 130, B: 240, A: 255},
	}
)

const gridSpacing = 10.0 // mm

// Viewer3D renders meshes and cut planes inside the build volume. Meshes
// are drawn shaded with a wireframe on top, coloured by their normals.
type Viewer3D struct {
	surface
	settings Settings
	camera   *Camera
}

// NewViewer3D creates a 3D viewer for a build volume
func NewViewer3D(settings Settings) (*Viewer3D, error) {
	if err := settings.validate3D(); err != nil {
		return nil, err
	}
	v := &Viewer3D{
		surface:  surface{target: settings.Target},
		settings: settings,
	}
	v.camera = NewCamera(v.volumeBounds())
	return v, nil
}

// Settings returns the configuration the viewer was created with
func (v *Viewer3D) Settings() Settings {
	return v.settings
}

// AddObject adds a mesh or plane to the scene
func (v *Viewer3D) AddObject(obj viewport.Object) error {
	switch o := obj.(type) {
	case *Mesh:
		if err := o.validate(); err != nil {
			return err
		}
	case *Plane:
		if err := o.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %T on %s", ErrUnsupportedObject, obj, v.target)
	}
	return v.add(obj)
}

// RemoveObject removes an object from the scene
func (v *Viewer3D) RemoveObject(obj viewport.Object) error {
	v.remove(obj)
	return nil
}

// Orbit rotates the camera around the build volume
func (v *Viewer3D) Orbit(deltaElevation, deltaAzimuth float64) {
	v.camera.Rotate(deltaElevation, deltaAzimuth)
}

// Zoom moves the camera closer or further away
func (v *Viewer3D) Zoom(delta float64) {
	v.camera.Zoom(delta)
}

// ResetCamera restores the initial view
func (v *Viewer3D) ResetCamera() {
	v.camera = NewCamera(v.volumeBounds())
}

func (v *Viewer3D) volumeBounds() geometry.BoundingBox {
	bv := v.settings.BuildVolume
	bbox := geometry.NewBoundingBox()
	bbox.Extend(geometry.NewVector3(-bv.X/2, -bv.Y/2, 0))
	bbox.Extend(geometry.NewVector3(bv.X/2, bv.Y/2, bv.Z))
	return bbox
}

// Render draws the scene into a new frame
func (v *Viewer3D) Render() error {
	w, h := v.settings.Size.Width, v.settings.Size.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background3D), image.Point{}, draw.Src)

	zbuffer := make([]float64, w*h)
	for i := range zbuffer {
		zbuffer[i] = math.Inf(1)
	}

	r := renderer3D{img: img, zbuffer: zbuffer, camera: v.camera, width: float64(w), height: float64(h)}

	r.drawPlate(v.volumeBounds())
	for _, obj := range v.objects {
		if m, ok := obj.(*Mesh); ok {
			r.drawMesh(m)
		}
	}
	for _, obj := range v.objects {
		if p, ok := obj.(*Plane); ok {
			r.drawPlane(p)
		}
	}
	r.drawVolume(v.volumeBounds())
	r.drawAxes(math.Min(v.settings.BuildVolume.X, v.settings.BuildVolume.Y) / 5)

	v.publish(img)
	return nil
}

type renderer3D struct {
	img           *image.RGBA
	zbuffer       []float64
	camera        *Camera
	width, height float64
}

func (r renderer3D) project(p geometry.Vector3) screenPoint {
	x, y, z := r.camera.Project(p, r.width, r.height)
	return screenPoint{x, y, z}
}

func (r renderer3D) line(a, b geometry.Vector3, col color.RGBA) {
	pa, pb := r.project(a), r.project(b)
	drawLine(r.img, clipLine(pa.x), clipLine(pa.y), clipLine(pb.x), clipLine(pb.y), col)
}

// normalColor maps a unit normal onto RGB the way normal materials do
func normalColor(n geometry.Vector3, scale float64) color.RGBA {
	c := func(v float64) uint8 {
		return uint8(math.Max(0, math.Min(255, (v*0.5+0.5)*255*scale)))
	}
	return color.RGBA{R: c(n.X), G: c(n.Y), B: c(n.Z), A: 255}
}

func (r renderer3D) drawMesh(m *Mesh) {
	for _, t := range m.Triangles {
		n := t.CalculateNormal()
		if !n.IsFinite() || n.Length() == 0 {
			n = t.Normal
		}
		a, b, c := r.project(t.V1), r.project(t.V2), r.project(t.V3)
		fillTriangleWithDepth(r.img, r.zbuffer, a, b, c, normalColor(n, 0.45))
	}
	for _, t := range m.Triangles {
		col := normalColor(t.CalculateNormal(), 1)
		vs := t.Vertices()
		for i := range vs {
			r.line(vs[i], vs[(i+1)%3], col)
		}
	}
}

func (r renderer3D) drawPlane(p *Plane) {
	corners := p.corners()
	for i := range corners {
		r.line(corners[i], corners[(i+1)%4], p.Color)
	}
	hatch := color.RGBA{R: p.Color.R / 2, G: p.Color.G / 2, B: p.Color.B / 2, A: 255}
	steps := 10
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		r.line(corners[0].Lerp(corners[1], t), corners[3].Lerp(corners[2], t), hatch)
		r.line(corners[0].Lerp(corners[3], t), corners[1].Lerp(corners[2], t), hatch)
	}
}

func (r renderer3D) drawPlate(bbox geometry.BoundingBox) {
	z := bbox.Min.Z
	for x := math.Ceil(bbox.Min.X/gridSpacing) * gridSpacing; x <= bbox.Max.X; x += gridSpacing {
		r.line(geometry.NewVector3(x, bbox.Min.Y, z), geometry.NewVector3(x, bbox.Max.Y, z), gridColor)
	}
	for y := math.Ceil(bbox.Min.Y/gridSpacing) * gridSpacing; y <= bbox.Max.Y; y += gridSpacing {
		r.line(geometry.NewVector3(bbox.Min.X, y, z), geometry.NewVector3(bbox.Max.X, y, z), gridColor)
	}
}

func (r renderer3D) drawVolume(bbox geometry.BoundingBox) {
	lo, hi := bbox.Min, bbox.Max
	corner := func(i int) geometry.Vector3 {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		return c
	}
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				r.line(corner(i), corner(i|bit), volumeColor)
			}
		}
	}
}

func (r renderer3D) drawAxes(length float64) {
	origin := geometry.Vector3{}
	axes := [3]geometry.Vector3{{X: length}, {Y: length}, {Z: length}}
	labels := [3]string{"X", "Y", "Z"}
	for i, axis := range axes {
		r.line(origin, axis, axisColors[i])
		p := r.project(axis)
		d := font.Drawer{
			Dst:  r.img,
			Src:  image.NewUniform(axisColors[i]),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(clipLine(p.x)+3, clipLine(p.y)-3),
		}
		d.DrawString(labels[i])
	}
}
