package viewer

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type move struct {
	elevation, azimuth, zoom float64
}

func TestFrameView_Orbit(t *testing.T) {
	test.NewTempApp(t)

	v := NewFrameView(fyne.NewSize(40, 30))
	var moves []move
	v.SetOnOrbit(func(dElev, dAz, zoom float64) {
		moves = append(moves, move{dElev, dAz, zoom})
	})

	// the first drag event only records the start
	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)}})
	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(20, 5)}})
	v.DragEnd()
	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(0, 0)}})

	v.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 100}})

	require.Len(t, moves, 2)
	assert.InDelta(t, 0.05, moves[0].elevation, 1e-9)
	assert.InDelta(t, 0.10, moves[0].azimuth, 1e-9)
	assert.InDelta(t, -0.1, moves[1].zoom, 1e-9)
}

func TestFrameView_NotInteractive(t *testing.T) {
	test.NewTempApp(t)

	v := NewFrameView(fyne.NewSize(40, 30))
	assert.NotPanics(t, func() {
		v.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 1}})
	})
}

func TestFrameView_SetFrame(t *testing.T) {
	test.NewTempApp(t)

	v := NewFrameView(fyne.NewSize(40, 30))
	w := test.NewTempWindow(t, v)
	w.Resize(fyne.NewSize(80, 60))

	frame := image.NewRGBA(image.Rect(0, 0, 4, 3))
	frame.Set(1, 1, color.White)
	v.SetFrame(frame)
	assert.Same(t, frame, v.Frame())

	v.SetFrame(nil)
	assert.Same(t, frame, v.Frame())

	assert.Equal(t, fyne.NewSize(40, 30), v.MinSize())
}
