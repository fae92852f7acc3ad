// Package config loads the goslice configuration from defaults, an
// optional goslice.yaml, GOSLICE_ environment variables and CLI flags.
package config

import (
	"time"

	"github.com/philipparndt/goslice/internal/app"
	"github.com/philipparndt/goslice/internal/scene"
	"github.com/philipparndt/goslice/pkg/geometry"
)

// Defaults
const (
	DefaultLayerHeight      = 0.1
	DefaultListen           = "127.0.0.1:8080"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultDisplayPrecision = 3
	DefaultWatchDebounce    = 500 * time.Millisecond
	DefaultConfigFile       = "goslice.yaml"
)

// Volume is a size in millimetres
type Volume struct {
	X float64 `koanf:"x"`
	Y float64 `koanf:"y"`
	Z float64 `koanf:"z"`
}

// Vector returns the volume as a vector
func (v Volume) Vector() geometry.Vector3 {
	return geometry.NewVector3(v.X, v.Y, v.Z)
}

// ViewerConfig is the pixel size of the 3D viewers
type ViewerConfig struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

// ScreenConfig describes the printer screen
type ScreenConfig struct {
	Width    int     `koanf:"width"`
	Height   int     `koanf:"height"`
	Diagonal float64 `koanf:"diagonal"` // in
}

// LogConfig selects the log output
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Config holds all configuration options
type Config struct {
	LayerHeight      float64       `koanf:"layer_height"`
	BuildVolume      Volume        `koanf:"build_volume"`
	Viewer           ViewerConfig  `koanf:"viewer"`
	Screen           ScreenConfig  `koanf:"screen"`
	Listen           string        `koanf:"listen"`
	Log              LogConfig     `koanf:"log"`
	Watch            bool          `koanf:"watch"`
	WatchDebounce    time.Duration `koanf:"watch_debounce"`
	DisplayPrecision int           `koanf:"display_precision"`
}

// ViewerSize returns the 3D viewer size for the scene package
func (c *Config) ViewerSize() scene.Size {
	return scene.Size{Width: c.Viewer.Width, Height: c.Viewer.Height}
}

// PrinterScreen returns the printer screen for the scene package
func (c *Config) PrinterScreen() scene.Screen {
	return scene.Screen{Width: c.Screen.Width, Height: c.Screen.Height, Diagonal: c.Screen.Diagonal}
}

func defaults() map[string]any {
	return map[string]any{
		"layer_height":      DefaultLayerHeight,
		"build_volume.x":    100.0,
		"build_volume.y":    100.0,
		"build_volume.z":    100.0,
		"viewer.width":      400,
		"viewer.height":     400,
		"screen.width":      600,
		"screen.height":     400,
		"screen.diagonal":   7.99,
		"listen":            DefaultListen,
		"log.level":         DefaultLogLevel,
		"log.format":        DefaultLogFormat,
		"watch":             false,
		"watch_debounce":    DefaultWatchDebounce.String(),
		"display_precision": DefaultDisplayPrecision,
	}
}

// AppOptions converts the configuration into application options
func (c *Config) AppOptions() app.Options {
	return app.Options{
		LayerHeight:      c.LayerHeight,
		BuildVolume:      c.BuildVolume.Vector(),
		ViewerSize:       c.ViewerSize(),
		Screen:           c.PrinterScreen(),
		DisplayPrecision: c.DisplayPrecision,
		WatchDebounce:    c.WatchDebounce,
	}
}
