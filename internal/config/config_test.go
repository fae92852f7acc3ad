package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goslice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, used, err := Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, used)
	assert.Equal(t, 0.1, cfg.LayerHeight)
	assert.Equal(t, Volume{X: 100, Y: 100, Z: 100}, cfg.BuildVolume)
	assert.Equal(t, ViewerConfig{Width: 400, Height: 400}, cfg.Viewer)
	assert.Equal(t, ScreenConfig{Width: 600, Height: 400, Diagonal: 7.99}, cfg.Screen)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, LogConfig{Level: "info", Format: "text"}, cfg.Log)
	assert.False(t, cfg.Watch)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce)
	assert.Equal(t, 3, cfg.DisplayPrecision)
}

func TestLoad_File(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
layer_height: 0.05
build_volume:
  x: 120
  y: 68
  z: 150
screen:
  width: 2560
  height: 1440
  diagonal: 6.08
watch: true
watch_debounce: 1s
`)

	cfg, used, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, used)
	assert.Equal(t, 0.05, cfg.LayerHeight)
	assert.Equal(t, Volume{X: 120, Y: 68, Z: 150}, cfg.BuildVolume)
	assert.Equal(t, 2560, cfg.Screen.Width)
	assert.Equal(t, 6.08, cfg.Screen.Diagonal)
	assert.True(t, cfg.Watch)
	assert.Equal(t, time.Second, cfg.WatchDebounce)
	// untouched keys keep their defaults
	assert.Equal(t, 400, cfg.Viewer.Width)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("layer_height: 0.025\n"), 0o644))
	t.Chdir(dir)

	cfg, used, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigFile, used)
	assert.Equal(t, 0.025, cfg.LayerHeight)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, "layer_height: 0.05\nlisten: \":9000\"\nlog:\n  level: warn\n")

	t.Setenv("GOSLICE_LAYER_HEIGHT", "0.2")
	t.Setenv("GOSLICE_LOG__LEVEL", "debug")
	t.Setenv("GOSLICE_BUILD_VOLUME__Z", "180")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("layer-height", DefaultLayerHeight, "")
	flags.String("listen", DefaultListen, "")
	flags.String("log-format", DefaultLogFormat, "")
	require.NoError(t, flags.Parse([]string{"--layer-height=0.3", "--log-format=json"}))

	cfg, _, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.LayerHeight, "flag beats env")
	assert.Equal(t, "debug", cfg.Log.Level, "env beats file")
	assert.Equal(t, "json", cfg.Log.Format, "mapped flag key")
	assert.Equal(t, ":9000", cfg.Listen, "unset flag does not override file")
	assert.Equal(t, 180.0, cfg.BuildVolume.Z)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LayerHeight:      0.1,
			BuildVolume:      Volume{X: 100, Y: 100, Z: 100},
			Viewer:           ViewerConfig{Width: 400, Height: 400},
			Screen:           ScreenConfig{Width: 600, Height: 400, Diagonal: 7.99},
			Log:              LogConfig{Level: "info", Format: "text"},
			DisplayPrecision: 3,
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero layer height", func(c *Config) { c.LayerHeight = 0 }, "layer_height"},
		{"negative layer height", func(c *Config) { c.LayerHeight = -0.1 }, "layer_height"},
		{"flat build volume", func(c *Config) { c.BuildVolume.Z = 0 }, "build_volume"},
		{"empty viewer", func(c *Config) { c.Viewer.Width = 0 }, "viewer size"},
		{"no screen diagonal", func(c *Config) { c.Screen.Diagonal = 0 }, "screen"},
		{"precision", func(c *Config) { c.DisplayPrecision = -1 }, "display_precision"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOSLICE_LAYER_HEIGHT", "-1")

	_, _, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layer_height")
}

func TestConversions(t *testing.T) {
	cfg := &Config{
		BuildVolume: Volume{X: 1, Y: 2, Z: 3},
		Viewer:      ViewerConfig{Width: 10, Height: 20},
		Screen:      ScreenConfig{Width: 30, Height: 40, Diagonal: 2},
	}
	assert.Equal(t, 3.0, cfg.BuildVolume.Vector().Z)
	assert.Equal(t, 20, cfg.ViewerSize().Height)
	assert.InDelta(t, 2*25.4/50, cfg.PrinterScreen().DotPitch(), 1e-12)
}

func TestAppOptions(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, _, err := Load("", nil)
	require.NoError(t, err)

	opts := cfg.AppOptions()
	assert.Equal(t, 0.1, opts.LayerHeight)
	assert.Equal(t, 100.0, opts.BuildVolume.X)
	assert.Equal(t, 400, opts.ViewerSize.Width)
	assert.Equal(t, 7.99, opts.Screen.Diagonal)
	assert.Equal(t, 500*time.Millisecond, opts.WatchDebounce)
}
