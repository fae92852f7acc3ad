// Package engine adapts the mesh slicer to the display objects of the
// viewers. It owns the full mesh, the cross-section mesh and the cut plane
// of the loaded model.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/philipparndt/goslice/internal/scene"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/slicer"
	"github.com/philipparndt/goslice/pkg/stl"
)

// ErrNoMesh is returned when slicing before a mesh was loaded
var ErrNoMesh = errors.New("engine: no mesh loaded")

// SliceResult holds the display objects of one cross-section
type SliceResult struct {
	Z        float64
	Polygons []geometry.Polygon
	Shapes   []*scene.Shape
	Geometry *scene.Mesh
	Time     time.Duration
}

type state struct {
	slicer *slicer.Slicer
	mesh   *scene.Mesh
	slice  *scene.Mesh
	plane  *scene.Plane
}

// Engine slices the loaded mesh. GetFaces may run concurrently with
// itself and with LoadMesh; a slice always uses the mesh that was loaded
// when it started.
type Engine struct {
	mu     sync.RWMutex
	state  *state
	plate  geometry.Vector3
	logger *slog.Logger
}

// New creates an engine for a build plate of the given size
func New(plate geometry.Vector3, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{plate: plate, logger: logger}
}

// LoadMesh replaces the loaded mesh. The model is centred on the build
// plate in X and Y; Z is kept so ZOffset reports where its base sits. On
// error the previous mesh stays loaded.
func (e *Engine) LoadMesh(model *stl.Model) error {
	centred := center(model)
	s, err := slicer.New(centred)
	if err != nil {
		return fmt.Errorf("failed to prepare mesh: %w", err)
	}

	bounds := s.Bounds()
	width := max(e.plate.X, bounds.Size().X)
	depth := max(e.plate.Y, bounds.Size().Y)

	next := &state{
		slicer: s,
		mesh:   scene.NewMesh(centred.Name, centred.Triangles),
		slice:  scene.NewMesh(centred.Name, centred.Triangles),
		plane:  scene.NewPlane(width, depth, geometry.NewVector3(0, 0, s.ZOffset())),
	}

	e.mu.Lock()
	e.state = next
	e.mu.Unlock()

	e.logger.Debug("mesh loaded",
		"name", centred.Name,
		"faces", centred.TriangleCount(),
		"zHeight", s.ZHeight(),
		"zOffset", s.ZOffset())
	return nil
}

func (e *Engine) current() *state {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Loaded reports whether a mesh is loaded
func (e *Engine) Loaded() bool {
	return e.current() != nil
}

// Model returns the loaded model, centred on the plate
func (e *Engine) Model() *stl.Model {
	if s := e.current(); s != nil {
		return s.slicer.Model()
	}
	return nil
}

// Mesh returns the display object of the full mesh
func (e *Engine) Mesh() *scene.Mesh {
	if s := e.current(); s != nil {
		return s.mesh
	}
	return nil
}

// Slice returns the initial cross-section display object
func (e *Engine) Slice() *scene.Mesh {
	if s := e.current(); s != nil {
		return s.slice
	}
	return nil
}

// Plane returns the cut plane display object
func (e *Engine) Plane() *scene.Plane {
	if s := e.current(); s != nil {
		return s.plane
	}
	return nil
}

// ZHeight returns the height of the loaded mesh
func (e *Engine) ZHeight() float64 {
	if s := e.current(); s != nil {
		return s.slicer.ZHeight()
	}
	return 0
}

// ZOffset returns the world Z of the mesh base
func (e *Engine) ZOffset() float64 {
	if s := e.current(); s != nil {
		return s.slicer.ZOffset()
	}
	return 0
}

// GetFaces slices the mesh at z, measured from the mesh base, and wraps
// the result in fresh display objects
func (e *Engine) GetFaces(ctx context.Context, z float64) (*SliceResult, error) {
	s := e.current()
	if s == nil {
		return nil, ErrNoMesh
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := s.slicer.Slice(z)

	shapes := make([]*scene.Shape, len(res.Shapes))
	for i, shape := range res.Shapes {
		shapes[i] = scene.NewShape(shape)
	}

	return &SliceResult{
		Z:        res.Z,
		Polygons: res.Polygons,
		Shapes:   shapes,
		Geometry: scene.NewMesh(s.mesh.Name, res.Geometry),
		Time:     res.Time,
	}, nil
}

// center returns a copy of the model moved so its XY centre is the origin
func center(model *stl.Model) *stl.Model {
	if model == nil || model.TriangleCount() == 0 {
		return model
	}
	c := model.BoundingBox().Center()
	shift := geometry.NewVector3(-c.X, -c.Y, 0)

	out := stl.NewModel(model.Name)
	for _, t := range model.Triangles {
		out.AddTriangle(geometry.NewTriangle(t.Normal, t.V1.Add(shift), t.V2.Add(shift), t.V3.Add(shift)))
	}
	return out
}
