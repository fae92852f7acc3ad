// Package viewer provides the fyne widget that shows a rendered frame and
// turns mouse drags and scrolling into camera moves
package viewer

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// OrbitFunc receives camera moves: rotation in radians and a relative zoom
type OrbitFunc func(deltaElevation, deltaAzimuth, zoom float64)

// FrameView shows the last frame of a render surface
type FrameView struct {
	widget.BaseWidget

	mu        sync.Mutex
	image     *canvas.Image
	minSize   fyne.Size
	dragStart *fyne.Position
	onOrbit   OrbitFunc
}

// NewFrameView creates an empty view with the given minimum size
func NewFrameView(minSize fyne.Size) *FrameView {
	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScalePixels

	v := &FrameView{image: img, minSize: minSize}
	v.ExtendBaseWidget(v)
	return v
}

// SetOnOrbit makes the view interactive; nil disables camera moves
func (v *FrameView) SetOnOrbit(fn OrbitFunc) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onOrbit = fn
}

// SetFrame shows frame. It must be called on the fyne goroutine.
func (v *FrameView) SetFrame(frame image.Image) {
	if frame == nil {
		return
	}
	v.image.Image = frame
	v.image.Refresh()
}

// Frame returns the image currently shown
func (v *FrameView) Frame() image.Image {
	return v.image.Image
}

func (v *FrameView) orbit(dElev, dAz, zoom float64) {
	v.mu.Lock()
	fn := v.onOrbit
	v.mu.Unlock()
	if fn != nil {
		fn(dElev, dAz, zoom)
	}
}

// Dragged rotates the camera
func (v *FrameView) Dragged(event *fyne.DragEvent) {
	if v.dragStart != nil {
		deltaX := event.Position.X - v.dragStart.X
		deltaY := event.Position.Y - v.dragStart.Y
		v.orbit(float64(-deltaY)*0.01, float64(deltaX)*0.01, 0)
	}
	pos := event.Position
	v.dragStart = &pos
}

// DragEnd ends a rotation
func (v *FrameView) DragEnd() {
	v.dragStart = nil
}

// Scrolled zooms the camera
func (v *FrameView) Scrolled(event *fyne.ScrollEvent) {
	v.orbit(0, 0, -float64(event.Scrolled.DY)*0.001)
}

// CreateRenderer creates the renderer for the widget
func (v *FrameView) CreateRenderer() fyne.WidgetRenderer {
	return &frameRenderer{view: v}
}

// frameRenderer implements fyne.WidgetRenderer
type frameRenderer struct {
	view *FrameView
}

func (r *frameRenderer) Layout(size fyne.Size) {
	r.view.image.Resize(size)
	r.view.image.Move(fyne.NewPos(0, 0))
}

func (r *frameRenderer) MinSize() fyne.Size {
	return r.view.minSize
}

func (r *frameRenderer) Refresh() {
	canvas.Refresh(r.view.image)
}

func (r *frameRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.image}
}

func (r *frameRenderer) Destroy() {}
