package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.LayerHeight <= 0 {
		errs = append(errs, fmt.Errorf("layer_height must be positive, got %v", c.LayerHeight))
	}
	if c.BuildVolume.X <= 0 || c.BuildVolume.Y <= 0 || c.BuildVolume.Z <= 0 {
		errs = append(errs, fmt.Errorf("build_volume must be positive, got %+v", c.BuildVolume))
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height))
	}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 || c.Screen.Diagonal <= 0 {
		errs = append(errs, fmt.Errorf("screen must be positive, got %dx%d %vin", c.Screen.Width, c.Screen.Height, c.Screen.Diagonal))
	}
	if c.DisplayPrecision < 0 || c.DisplayPrecision > 9 {
		errs = append(errs, fmt.Errorf("display_precision must be between 0 and 9, got %d", c.DisplayPrecision))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
