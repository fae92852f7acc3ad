package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/philipparndt/goslice/internal/scene"
	"github.com/philipparndt/goslice/internal/units"
	"github.com/philipparndt/goslice/pkg/analysis"
	"github.com/philipparndt/goslice/pkg/geometry"
)

type sliceOptions struct {
	z     float64
	layer int
	png   string
}

func newSliceCmd() *cobra.Command {
	opts := &sliceOptions{}
	cmd := &cobra.Command{
		Use:   "slice <source>",
		Short: "Cut the model at one height",
		Long: `Cut the model at a Z position (--z, in mm above the model base) or at a layer
(--layer, starting at 1) and list the resulting shapes. With --png the layer is
rendered as the printer screen would show it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlice(cmd, args, opts)
		},
	}
	cmd.Flags().Float64Var(&opts.z, "z", 0, "Z position in mm")
	cmd.Flags().IntVar(&opts.layer, "layer", 0, "layer number")
	cmd.Flags().StringVar(&opts.png, "png", "", "write the layer image to this file")
	cmd.MarkFlagsMutuallyExclusive("z", "layer")
	return cmd
}

func runSlice(cmd *cobra.Command, args []string, opts *sliceOptions) error {
	cfg := configFrom(cmd)
	logger := loggerFrom(cmd)

	z := opts.z
	if cmd.Flags().Changed("layer") {
		z = units.LayerToPosition(opts.layer, cfg.LayerHeight)
	}

	eng, err := loadEngine(cmd.Context(), args[0], cfg.BuildVolume.Vector(), logger)
	if err != nil {
		return err
	}
	res, err := eng.GetFaces(cmd.Context(), z)
	if err != nil {
		return fmt.Errorf("failed to slice at %v: %w", z, err)
	}

	out := cmd.OutOrStdout()

	summary := table.NewWriter()
	summary.SetOutputMirror(out)
	summary.SetStyle(table.StyleLight)
	summary.AppendRows([]table.Row{
		{"Z position", analysis.FormatMeasurement(z, "mm")},
		{"Layer", fmt.Sprintf("%d / %d", units.PositionToLayer(z, cfg.LayerHeight), units.LayerCount(eng.ZHeight(), cfg.LayerHeight))},
		{"Polygons", len(res.Polygons)},
		{"Shapes", len(res.Shapes)},
		{"Time", res.Time},
	})
	summary.Render()

	if len(res.Shapes) > 0 {
		shapes := table.NewWriter()
		shapes.SetOutputMirror(out)
		shapes.SetStyle(table.StyleLight)
		shapes.AppendHeader(table.Row{"#", "Points", "Holes", "Area (mm²)"})
		total := 0.0
		for i, s := range res.Shapes {
			area := s.Shape.Area()
			total += area
			shapes.AppendRow(table.Row{i + 1, len(s.Shape.Outer), len(s.Shape.Holes), fmt.Sprintf("%.3f", area)})
		}
		shapes.AppendFooter(table.Row{"", "", "Total", fmt.Sprintf("%.3f", total)})
		shapes.SetColumnConfigs([]table.ColumnConfig{
			{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
		})
		shapes.Render()
	}

	if opts.png != "" {
		if err := writeLayerPNG(opts.png, cfg.PrinterScreen(), cfg.BuildVolume.Vector(), res.Shapes); err != nil {
			return err
		}
		logger.Info("layer image written", "path", opts.png)
	}
	return nil
}

func writeLayerPNG(path string, screen scene.Screen, plate geometry.Vector3, shapes []*scene.Shape) (err error) {
	viewer, err := scene.NewViewer2D(scene.Settings{Target: "layer", BuildPlate: plate, Screen: screen})
	if err != nil {
		return err
	}
	for _, s := range shapes {
		if err := viewer.AddObject(s); err != nil {
			return err
		}
	}
	if err := viewer.Render(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return viewer.WritePNG(f)
}
