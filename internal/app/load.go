package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/philipparndt/goslice/internal/scene"
	"github.com/philipparndt/goslice/internal/viewport"
	"github.com/philipparndt/goslice/pkg/analysis"
	"github.com/philipparndt/goslice/pkg/stl"
)

// Transport acquires the payload named by a source
type Transport interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// LoadOutcome describes how one load ended
type LoadOutcome struct {
	Source     string
	Generation uint64
	Loaded     bool
	Superseded bool
	Err        error
}

type parseResult struct {
	model *stl.Model
	err   error
}

// LoadController runs the load sequence: fetch, parse, hand the mesh to
// the engine, swap the display objects and restart slicing. A newer load
// cancels an older one. Every failed load is reported exactly once and
// leaves the previous mesh on screen.
//
// Load and LoadBytes may be called from any goroutine.
type LoadController struct {
	loop      *Loop
	engine    Engine
	registry  *viewport.Registry
	slices    *SliceController
	binder    *UIBinder
	transport Transport
	logger    *slog.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc

	// OnLoad, when set, is called on the loop after every load settles
	OnLoad func(LoadOutcome)
}

// NewLoadController creates a load controller
func NewLoadController(loop *Loop, eng Engine, registry *viewport.Registry, slices *SliceController, binder *UIBinder, transport Transport, logger *slog.Logger) *LoadController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoadController{
		loop:      loop,
		engine:    eng,
		registry:  registry,
		slices:    slices,
		binder:    binder,
		transport: transport,
		logger:    logger,
	}
}

// begin starts a new load generation and cancels the previous one
func (c *LoadController) begin() (uint64, context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.generation++
	c.cancel = cancel
	return c.generation, ctx
}

func (c *LoadController) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

// Cancel aborts the load in flight, if any
func (c *LoadController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Load fetches source through the transport and displays it
func (c *LoadController) Load(source string) uint64 {
	gen, ctx := c.begin()
	c.logger.Info("loading", "source", source, "generation", gen)

	go func() {
		data, err := c.transport.Fetch(ctx, source)
		if err != nil {
			c.fail(ctx, gen, &LoadError{Stage: StageFetch, Source: source, Err: err})
			return
		}
		c.parse(ctx, gen, source, data)
	}()
	return gen
}

// LoadBytes displays a payload that was delivered directly, such as a
// dropped file
func (c *LoadController) LoadBytes(name string, data []byte) uint64 {
	gen, ctx := c.begin()
	c.logger.Info("loading", "source", name, "bytes", len(data), "generation", gen)

	go c.parse(ctx, gen, name, data)
	return gen
}

// parseAsync parses a payload on its own goroutine
func parseAsync(data []byte) <-chan parseResult {
	out := make(chan parseResult, 1)
	go func() {
		model, err := stl.ParseBytes(data)
		out <- parseResult{model, err}
	}()
	return out
}

func (c *LoadController) parse(ctx context.Context, gen uint64, source string, data []byte) {
	var res parseResult
	select {
	case res = <-parseAsync(data):
	case <-ctx.Done():
		c.fail(ctx, gen, &LoadError{Stage: StageParse, Source: source, Err: ctx.Err()})
		return
	}
	if res.err != nil {
		c.fail(ctx, gen, &LoadError{Stage: StageParse, Source: source, Err: res.err})
		return
	}

	c.loop.Post(func() { c.apply(gen, source, res.model) })
}

// fail reports err once, unless the load was superseded by a newer one
func (c *LoadController) fail(ctx context.Context, gen uint64, err *LoadError) {
	superseded := !c.current(gen) || (ctx.Err() != nil && errors.Is(err, context.Canceled))
	if superseded {
		c.logger.Debug("load superseded", "source", err.Source, "generation", gen)
	} else {
		c.logger.Error("load failed", "error", err)
	}

	c.loop.Post(func() {
		c.settle(LoadOutcome{Source: err.Source, Generation: gen, Superseded: superseded, Err: err})
	})
}

func (c *LoadController) settle(outcome LoadOutcome) {
	if c.OnLoad != nil {
		c.OnLoad(outcome)
	}
}

// apply swaps the new mesh in. It runs on the loop.
func (c *LoadController) apply(gen uint64, source string, model *stl.Model) {
	outcome := LoadOutcome{Source: source, Generation: gen}
	defer func() { c.settle(outcome) }()

	if !c.current(gen) {
		outcome.Superseded = true
		c.logger.Debug("load superseded", "source", source, "generation", gen)
		return
	}

	if err := c.engine.LoadMesh(model); err != nil {
		outcome.Err = &LoadError{Stage: StageMesh, Source: source, Err: err}
		c.logger.Error("load failed", "error", outcome.Err)
		return
	}

	planes, err := c.display()
	if err != nil {
		outcome.Err = &LoadError{Stage: StageDisplay, Source: source, Err: err}
		c.logger.Error("load failed", "error", outcome.Err)
		return
	}

	summary := analysis.Summarize(c.engine.Model())
	c.logger.Info("mesh",
		"name", summary.Name,
		"faces", summary.Faces,
		"volume", summary.DisplayVolume())
	c.binder.ShowMesh(summary)

	if err := c.slices.Initialize(c.engine.Mesh(), c.engine.ZHeight(), planes...); err != nil {
		outcome.Err = &LoadError{Stage: StageDisplay, Source: source, Err: err}
		c.logger.Error("load failed", "error", outcome.Err)
		return
	}
	outcome.Loaded = true
}

// display replaces everything on screen with the engine's new objects:
// the full mesh and a cut plane on viewer1, the section below the cut and
// a second cut plane on viewer2
func (c *LoadController) display() ([]*scene.Plane, error) {
	if err := c.registry.Teardown(); err != nil {
		return nil, err
	}

	plane1 := c.engine.Plane()
	plane2 := plane1.Clone()

	steps := []struct {
		viewport viewport.ID
		role     viewport.Role
		obj      viewport.Object
	}{
		{viewport.Viewer1, viewport.RolePlane, plane1},
		{viewport.Viewer1, viewport.RoleMesh, c.engine.Mesh()},
		{viewport.Viewer2, viewport.RolePlane, plane2},
		{viewport.Viewer2, viewport.RoleMesh, c.engine.Slice()},
	}
	for _, s := range steps {
		if err := c.registry.Attach(s.viewport, s.role, s.obj); err != nil {
			return nil, err
		}
	}

	if err := c.registry.Render(viewport.Viewer1, viewport.Viewer2); err != nil {
		return nil, err
	}
	return []*scene.Plane{plane1, plane2}, nil
}
