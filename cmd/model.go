package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/philipparndt/goslice/internal/engine"
	"github.com/philipparndt/goslice/internal/transport"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/stl"
)

// loadEngine fetches source, parses it and loads it into a slicing engine
func loadEngine(ctx context.Context, source string, plate geometry.Vector3, logger *slog.Logger) (*engine.Engine, error) {
	data, err := transport.New(logger).Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	model, err := stl.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	if model.Name == "" {
		model.Name = source
	}

	eng := engine.New(plate, logger)
	if err := eng.LoadMesh(model); err != nil {
		return nil, err
	}
	return eng, nil
}
