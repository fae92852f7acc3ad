package app

import (
	"context"
	"log/slog"

	"github.com/philipparndt/goslice/internal/engine"
	"github.com/philipparndt/goslice/internal/scene"
	"github.com/philipparndt/goslice/internal/viewport"
	"github.com/philipparndt/goslice/pkg/stl"
)

// Engine is the slicing engine the controllers drive
type Engine interface {
	LoadMesh(model *stl.Model) error
	Model() *stl.Model
	Mesh() *scene.Mesh
	Slice() *scene.Mesh
	Plane() *scene.Plane
	ZHeight() float64
	ZOffset() float64
	GetFaces(ctx context.Context, z float64) (*engine.SliceResult, error)
}

// SliceState is the lifecycle state of the slice controller
type SliceState int

const (
	Uninitialized SliceState = iota
	Ready
	Slicing
)

func (s SliceState) String() string {
	switch s {
	case Ready:
		return "ready"
	case Slicing:
		return "slicing"
	default:
		return "uninitialized"
	}
}

// SliceOutcome describes what happened to one slice request
type SliceOutcome struct {
	Seq     uint64
	Z       float64
	Applied bool // false when superseded or failed
	Err     error
}

// SliceController moves the cut through the loaded mesh. Every request is
// numbered; only the result of the latest request is ever displayed, so
// results that complete out of order cannot overwrite a newer slice.
//
// All methods must be called on the event loop.
type SliceController struct {
	loop     *Loop
	engine   Engine
	registry *viewport.Registry
	binder   *UIBinder
	logger   *slog.Logger

	state   SliceState
	seq     uint64
	pending int
	mesh    *scene.Mesh
	planes  []*scene.Plane
	zHeight float64
	z       float64

	// OnSlice, when set, is called on the loop after every request settles
	OnSlice func(SliceOutcome)
}

// NewSliceController creates an uninitialized controller
func NewSliceController(loop *Loop, eng Engine, registry *viewport.Registry, binder *UIBinder, logger *slog.Logger) *SliceController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SliceController{
		loop:     loop,
		engine:   eng,
		registry: registry,
		binder:   binder,
		logger:   logger,
	}
}

// State returns the lifecycle state
func (c *SliceController) State() SliceState {
	return c.state
}

// ZPosition returns the Z of the displayed slice
func (c *SliceController) ZPosition() float64 {
	return c.z
}

// ZHeight returns the height of the current mesh
func (c *SliceController) ZHeight() float64 {
	return c.zHeight
}

// Mesh returns the mesh the controller was initialized with
func (c *SliceController) Mesh() *scene.Mesh {
	return c.mesh
}

// Initialize starts slicing a freshly loaded mesh: the cut moves to Z 0,
// the fields are reset and the first slice is requested
func (c *SliceController) Initialize(mesh *scene.Mesh, zHeight float64, planes ...*scene.Plane) error {
	c.state = Ready
	c.mesh = mesh
	c.planes = planes
	c.zHeight = zHeight
	c.z = 0

	c.binder.Reset(zHeight)
	return c.SetZPosition(0)
}

// SetZPosition requests a slice at z, measured from the mesh base. Values
// outside the mesh are passed through as given.
func (c *SliceController) SetZPosition(z float64) error {
	if c.state == Uninitialized {
		return ErrNotReady
	}

	c.seq++
	seq := c.seq
	c.pending++
	c.state = Slicing
	c.logger.Info("slice requested", "zPosition", z, "seq", seq)

	go func() {
		res, err := c.engine.GetFaces(context.Background(), z)
		c.loop.Post(func() { c.complete(seq, z, res, err) })
	}()
	return nil
}

func (c *SliceController) complete(seq uint64, z float64, res *engine.SliceResult, err error) {
	c.pending--
	if c.pending == 0 && c.state == Slicing {
		c.state = Ready
	}

	outcome := SliceOutcome{Seq: seq, Z: z}
	defer func() {
		if c.OnSlice != nil {
			c.OnSlice(outcome)
		}
	}()

	if seq != c.seq {
		c.logger.Debug("discarding stale slice", "seq", seq, "latest", c.seq, "zPosition", z)
		return
	}
	if err != nil {
		outcome.Err = &SliceError{Z: z, Err: err}
		c.logger.Error("slice failed", "error", outcome.Err)
		return
	}

	outcome.Err = c.apply(z, res)
	outcome.Applied = outcome.Err == nil
}

// apply displays a slice result in one go
func (c *SliceController) apply(z float64, res *engine.SliceResult) error {
	world := c.engine.ZOffset() + z
	for _, p := range c.planes {
		p.SetZ(world)
	}

	shapes := make([]viewport.Object, len(res.Shapes))
	for i, s := range res.Shapes {
		shapes[i] = s
	}

	var failed error
	if err := c.registry.ReplaceSet(viewport.Viewer3, viewport.RoleSliceShapes, shapes); err != nil {
		failed = &SliceError{Z: z, Err: err}
		c.logger.Error("failed to display slice shapes", "error", failed)
	}
	if err := c.registry.Attach(viewport.Viewer2, viewport.RoleMesh, res.Geometry); err != nil {
		failed = &SliceError{Z: z, Err: err}
		c.logger.Error("failed to display slice geometry", "error", failed)
	}

	c.z = z
	c.binder.ShowPosition(z)

	c.logger.Info("slice",
		"zPosition", z,
		"polygons", len(res.Polygons),
		"shapes", len(res.Shapes),
		"time", res.Time)

	if err := c.registry.Render(viewport.All...); err != nil {
		c.logger.Error("render failed", "error", err)
		if failed == nil {
			failed = err
		}
	}
	return failed
}
