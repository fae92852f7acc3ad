package scene

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"slices"
	"sync"

	"github.com/philipparndt/goslice/internal/viewport"
)

// FrameFunc is called after a surface finished rendering a frame
type FrameFunc func(target string)

// surface holds the scene graph and the last rendered frame. The scene is
// only touched by the goroutine that owns the surface; the frame may be
// read from anywhere.
type surface struct {
	target  string
	objects []viewport.Object

	mu        sync.RWMutex
	frame     *image.RGBA
	version   uint64
	listeners []FrameFunc
}

func (s *surface) add(obj viewport.Object) error {
	if s.contains(obj) {
		return fmt.Errorf("%w: %s on %s", ErrDuplicateObject, obj.ID(), s.target)
	}
	s.objects = append(s.objects, obj)
	return nil
}

// remove drops obj from the scene; removing an absent object is a no-op
func (s *surface) remove(obj viewport.Object) {
	s.objects = slices.DeleteFunc(s.objects, func(o viewport.Object) bool {
		return o.ID() == obj.ID()
	})
}

func (s *surface) contains(obj viewport.Object) bool {
	return slices.ContainsFunc(s.objects, func(o viewport.Object) bool {
		return o.ID() == obj.ID()
	})
}

// Len returns the number of objects in the scene
func (s *surface) Len() int {
	return len(s.objects)
}

// Target returns the name the surface was configured with
func (s *surface) Target() string {
	return s.target
}

// OnFrame registers a listener notified after every render
func (s *surface) OnFrame(fn FrameFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *surface) publish(frame *image.RGBA) {
	s.mu.Lock()
	s.frame = frame
	s.version++
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(s.target)
	}
}

// Frame returns the last rendered frame and its version; nil before the
// first render. The image must not be modified.
func (s *surface) Frame() (*image.RGBA, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.version
}

// WritePNG encodes the last rendered frame
func (s *surface) WritePNG(w io.Writer) error {
	frame, _ := s.Frame()
	if frame == nil {
		return fmt.Errorf("%s: nothing rendered yet", s.target)
	}
	return png.Encode(w, frame)
}

// PNG returns the last rendered frame encoded as PNG
func (s *surface) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WritePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
