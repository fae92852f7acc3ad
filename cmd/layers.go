package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/philipparndt/goslice/internal/units"
	"github.com/philipparndt/goslice/pkg/analysis"
)

func newLayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layers <source>",
		Short: "Show mesh information and the layer count",
		Long:  "Show faces, volume, dimensions and how many layers the model needs at the configured layer height.",
		Args:  cobra.ExactArgs(1),
		RunE:  runLayers,
	}
}

func runLayers(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)
	logger := loggerFrom(cmd)

	eng, err := loadEngine(cmd.Context(), args[0], cfg.BuildVolume.Vector(), logger)
	if err != nil {
		return err
	}
	summary := analysis.Summarize(eng.Model())
	zHeight := eng.ZHeight()

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.SetTitle(summary.Name)
	t.AppendHeader(table.Row{"Property", "Value"})
	t.AppendRows([]table.Row{
		{"Faces", summary.Faces},
		{"Volume", fmt.Sprintf("%d mm³", summary.DisplayVolume())},
		{"Surface area", fmt.Sprintf("%.3f mm²", summary.SurfaceArea)},
		{"Dimensions", analysis.FormatVector(summary.Dimensions)},
		{"Bounding box min", analysis.FormatVector(summary.BoundingBox.Min)},
		{"Bounding box max", analysis.FormatVector(summary.BoundingBox.Max)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Z height", analysis.FormatMeasurement(zHeight, "mm")},
		{"Z offset", analysis.FormatMeasurement(eng.ZOffset(), "mm")},
		{"Layer height", analysis.FormatMeasurement(cfg.LayerHeight, "mm")},
		{"Layers", units.LayerCount(zHeight, cfg.LayerHeight)},
	})
	t.Render()
	return nil
}
