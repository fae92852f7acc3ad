// Package app drives the viewers: it loads meshes, moves the cut through
// them and keeps the three render surfaces and the numeric fields in step.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/philipparndt/goslice/internal/engine"
	"github.com/philipparndt/goslice/internal/scene"
	"github.com/philipparndt/goslice/internal/transport"
	"github.com/philipparndt/goslice/internal/viewport"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/openscad"
	"github.com/philipparndt/goslice/pkg/watcher"
)

// Options configure the application
type Options struct {
	LayerHeight      float64
	BuildVolume      geometry.Vector3
	ViewerSize       scene.Size
	Screen           scene.Screen
	DisplayPrecision int
	WatchDebounce    time.Duration
}

// App wires the viewers, the engine and the controllers around one event loop
type App struct {
	Loop     *Loop
	Registry *viewport.Registry
	Engine   *engine.Engine
	Slices   *SliceController
	Loader   *LoadController
	Binder   *UIBinder

	Viewer1 *scene.Viewer3D
	Viewer2 *scene.Viewer3D
	Viewer3 *scene.Viewer2D

	opts    Options
	logger  *slog.Logger
	watcher *watcher.FileWatcher
}

// Frames is a surface whose last render can be read from any goroutine
type Frames interface {
	PNG() ([]byte, error)
	OnFrame(fn scene.FrameFunc)
}

// New creates the application. Fields are written to display; payloads are
// acquired through tr, or a default transport when nil.
func New(opts Options, tr Transport, display Display, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if tr == nil {
		tr = transport.New(logger)
	}

	viewer1, err := scene.NewViewer3D(scene.Settings{
		Target:      string(viewport.Viewer1),
		BuildVolume: opts.BuildVolume,
		Size:        opts.ViewerSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create viewer1: %w", err)
	}
	viewer2, err := scene.NewViewer3D(scene.Settings{
		Target:      string(viewport.Viewer2),
		BuildVolume: opts.BuildVolume,
		Size:        opts.ViewerSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create viewer2: %w", err)
	}
	viewer3, err := scene.NewViewer2D(scene.Settings{
		Target:     string(viewport.Viewer3),
		BuildPlate: opts.BuildVolume,
		Screen:     opts.Screen,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create viewer3: %w", err)
	}

	registry := viewport.NewRegistry(logger)
	registry.Register(viewport.Viewer1, viewer1)
	registry.Register(viewport.Viewer2, viewer2)
	registry.Register(viewport.Viewer3, viewer3)

	loop := NewLoop(logger)
	eng := engine.New(opts.BuildVolume, logger)
	binder := NewUIBinder(display, opts.LayerHeight, opts.DisplayPrecision, logger)
	slices := NewSliceController(loop, eng, registry, binder, logger)
	binder.Bind(slices)
	loader := NewLoadController(loop, eng, registry, slices, binder, tr, logger)

	logger.Info("screen",
		"screen", viewer3.Screen().String(),
		"dotPitch", fmt.Sprintf("%.3f", viewer3.DotPitch()),
		"unit", "mm")

	return &App{
		Loop:     loop,
		Registry: registry,
		Engine:   eng,
		Slices:   slices,
		Loader:   loader,
		Binder:   binder,
		Viewer1:  viewer1,
		Viewer2:  viewer2,
		Viewer3:  viewer3,
		opts:     opts,
		logger:   logger,
	}, nil
}

// Surface returns the render surface for a viewport
func (a *App) Surface(id viewport.ID) (Frames, bool) {
	switch id {
	case viewport.Viewer1:
		return a.Viewer1, true
	case viewport.Viewer2:
		return a.Viewer2, true
	case viewport.Viewer3:
		return a.Viewer3, true
	}
	return nil, false
}

// Run renders the empty scene and processes events until ctx is done.
// On exit every display object is detached.
func (a *App) Run(ctx context.Context) error {
	a.Loop.Post(func() {
		if err := a.Registry.Render(); err != nil {
			a.logger.Error("initial render failed", "error", err)
		}
	})

	err := a.Loop.Run(ctx)

	a.Loader.Cancel()
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if terr := a.Registry.Teardown(); terr != nil {
		a.logger.Warn("teardown failed", "error", terr)
	}
	return err
}

// SetZPosition moves the cut from outside the loop
func (a *App) SetZPosition(ctx context.Context, z float64) error {
	return a.Loop.Do(ctx, func() error { return a.Slices.SetZPosition(z) })
}

// PositionInput forwards text typed into the Z field
func (a *App) PositionInput(ctx context.Context, text string) error {
	return a.Loop.Do(ctx, func() error { return a.Binder.OnPositionInput(text) })
}

// LayerInput forwards text typed into the layer field
func (a *App) LayerInput(ctx context.Context, text string) error {
	return a.Loop.Do(ctx, func() error { return a.Binder.OnLayerInput(text) })
}

// Load starts loading source; a newer load supersedes it
func (a *App) Load(source string) uint64 {
	return a.Loader.Load(source)
}

// LoadBytes starts loading an uploaded payload
func (a *App) LoadBytes(name string, data []byte) uint64 {
	return a.Loader.LoadBytes(name, data)
}

// Fields returns the values currently shown
func (a *App) Fields(ctx context.Context) (Fields, error) {
	var fields Fields
	err := a.Loop.Do(ctx, func() error {
		fields = a.Binder.Fields()
		return nil
	})
	return fields, err
}

// Orbit rotates the camera of a 3D viewer and redraws it
func (a *App) Orbit(ctx context.Context, id viewport.ID, deltaElevation, deltaAzimuth, zoom float64) error {
	return a.Loop.Do(ctx, func() error {
		var v *scene.Viewer3D
		switch id {
		case viewport.Viewer1:
			v = a.Viewer1
		case viewport.Viewer2:
			v = a.Viewer2
		default:
			return fmt.Errorf("%w: %s is not a 3D viewer", viewport.ErrUnknownViewport, id)
		}
		v.Orbit(deltaElevation, deltaAzimuth)
		if zoom != 0 {
			v.Zoom(zoom)
		}
		return a.Registry.Render(id)
	})
}

// Watch reloads source whenever it, or for OpenSCAD sources any file it
// uses, changes on disk
func (a *App) Watch(ctx context.Context, source string) error {
	if transport.IsURL(source) {
		return fmt.Errorf("cannot watch %s: not a local file", source)
	}

	debounce := a.opts.WatchDebounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	fw, err := watcher.NewFileWatcher(debounce, a.logger)
	if err != nil {
		return err
	}

	files := []string{source}
	if openscad.IsSource(source) {
		renderer := openscad.NewRenderer(filepath.Dir(source), a.logger)
		deps, err := renderer.ResolveDependencies(filepath.Base(source))
		if err != nil {
			fw.Close()
			return fmt.Errorf("failed to resolve dependencies: %w", err)
		}
		files = deps
	}

	err = fw.Watch(files, func(changed string) {
		a.logger.Info("file changed, reloading", "file", changed)
		a.Loader.Load(source)
	})
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch files: %w", err)
	}

	a.logger.Info("watching for changes", "files", len(files))
	fw.Start(ctx)
	a.watcher = fw
	return nil
}
