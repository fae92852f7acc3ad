package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/pflag"

	"github.com/philipparndt/goslice/internal/app"
	"github.com/philipparndt/goslice/internal/config"
	"github.com/philipparndt/goslice/internal/logging"
	"github.com/philipparndt/goslice/internal/viewport"
	"github.com/philipparndt/goslice/pkg/viewer"
)

// orbitStep is the camera rotation per button press, in radians
const orbitStep = 0.15

// framer is a surface whose last frame can be shown directly
type framer interface {
	Frame() (*image.RGBA, uint64)
}

// GUI is the desktop frontend. It shows the numeric fields and forwards
// the Z and layer inputs to the application.
type GUI struct {
	app    *app.App
	ctx    context.Context
	window fyne.Window
	logger *slog.Logger

	views  map[viewport.ID]*viewer.FrameView
	queue  *inputQueue
	fields *fieldPanel
}

func main() {
	flags := pflag.NewFlagSet("goslice-gui", pflag.ExitOnError)
	cfgFile := flags.String("config", "", "config file (default: ./"+config.DefaultConfigFile+")")
	flags.Float64("layer-height", config.DefaultLayerHeight, "layer height in mm")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	flags.Bool("watch", false, "reload the source when it changes on disk")
	_ = flags.Parse(os.Args[1:])

	if err := run(*cfgFile, flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgFile string, flags *pflag.FlagSet) error {
	cfg, _, err := config.Load(cfgFile, flags)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fa := fyneapp.New()
	g := &GUI{
		ctx:    ctx,
		window: fa.NewWindow("goslice"),
		logger: logger,
		views:  make(map[viewport.ID]*viewer.FrameView),
		queue:  newInputQueue(ctx, logger),
	}

	a, err := app.New(cfg.AppOptions(), nil, g, logger)
	if err != nil {
		return err
	}
	g.app = a
	g.build(cfg)

	if source := flags.Arg(0); source != "" {
		if cfg.Watch {
			if err := a.Watch(ctx, source); err != nil {
				logger.Warn("cannot watch source", "source", source, "error", err)
			}
		}
		a.Load(source)
	}

	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()

	g.window.Resize(fyne.NewSize(1440, 820))
	g.window.ShowAndRun()

	cancel()
	return <-done
}

func (g *GUI) build(cfg *config.Config) {
	viewers := container.NewHBox()
	for _, id := range viewport.All {
		size := fyne.NewSize(float32(cfg.Viewer.Width), float32(cfg.Viewer.Height))
		if id == viewport.Viewer3 {
			size = fyne.NewSize(float32(cfg.Screen.Width), float32(cfg.Screen.Height))
		}
		view := viewer.NewFrameView(size)
		if id != viewport.Viewer3 {
			view.SetOnOrbit(g.orbiter(id))
		}
		g.views[id] = view
		viewers.Add(view)

		if surface, ok := g.app.Surface(id); ok {
			surface.OnFrame(g.refresh)
		}
	}

	g.fields = newFieldPanel(g.queue, g.app.PositionInput, g.app.LayerInput)
	form := g.fields.form()

	openButton := widget.NewButton("Open File", g.showFileDialog)
	orbit := func(dElev, dAz, zoom float64) func() {
		return func() {
			g.orbiter(viewport.Viewer1)(dElev, dAz, zoom)
			g.orbiter(viewport.Viewer2)(dElev, dAz, zoom)
		}
	}
	camera := container.NewGridWithColumns(3,
		widget.NewButton("◀", orbit(0, -orbitStep, 0)),
		widget.NewButton("▲", orbit(orbitStep, 0, 0)),
		widget.NewButton("▶", orbit(0, orbitStep, 0)),
		widget.NewButton("−", orbit(0, 0, 0.1)),
		widget.NewButton("▼", orbit(-orbitStep, 0, 0)),
		widget.NewButton("+", orbit(0, 0, -0.1)),
	)

	panel := container.NewVBox(
		openButton,
		widget.NewSeparator(),
		form,
		widget.NewSeparator(),
		widget.NewLabel("Camera:"),
		camera,
	)

	g.window.SetContent(container.NewBorder(nil, nil, nil, panel, container.NewHScroll(viewers)))
}

// orbiter returns a camera callback for a 3D viewer. Moves are queued with
// the field edits so they apply in the order they were made.
func (g *GUI) orbiter(id viewport.ID) viewer.OrbitFunc {
	return func(dElev, dAz, zoom float64) {
		g.queue.push(func(ctx context.Context) error {
			return g.app.Orbit(ctx, id, dElev, dAz, zoom)
		})
	}
}

// Update shows the fields; it is called on the application loop
func (g *GUI) Update(fields app.Fields) {
	fyne.Do(func() {
		g.fields.show(g.window.Canvas(), fields)
	})
}

// refresh shows the last frame of a surface
func (g *GUI) refresh(target string) {
	id := viewport.ID(target)
	surface, ok := g.app.Surface(id)
	if !ok {
		return
	}
	f, ok := surface.(framer)
	if !ok {
		return
	}
	frame, _ := f.Frame()
	if frame == nil {
		return
	}
	fyne.Do(func() {
		g.views[id].SetFrame(frame)
	})
}

func (g *GUI) showFileDialog() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to read %s: %w", reader.URI().Name(), err), g.window)
			return
		}
		g.app.LoadBytes(reader.URI().Name(), data)
	}, g.window)
	open.SetFilter(storage.NewExtensionFileFilter([]string{".stl", ".STL"}))
	open.Show()
}
