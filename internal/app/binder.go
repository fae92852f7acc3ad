package app

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/philipparndt/goslice/internal/units"
	"github.com/philipparndt/goslice/pkg/analysis"
)

// Fields are the values shown in the numeric panel. Positions are rounded
// to the display precision; the controller keeps full precision.
type Fields struct {
	LayerHeight float64 `json:"layerHeight"`
	Layer       int     `json:"layer"`
	Layers      int     `json:"layers"`
	ZPosition   float64 `json:"zPosition"`
	ZMax        float64 `json:"zMax"`
	ZStep       float64 `json:"zStep"`
	Faces       int     `json:"faces"`
	Volume      int     `json:"volume"`
}

// Display shows the numeric fields. Update is called on the event loop
// and must not block.
type Display interface {
	Update(Fields)
}

// DisplayFunc adapts a function to Display
type DisplayFunc func(Fields)

func (f DisplayFunc) Update(fields Fields) { f(fields) }

// Positioner moves the cut to a Z position
type Positioner interface {
	SetZPosition(z float64) error
}

// UIBinder keeps the numeric fields in step with the controller and turns
// field input into Z positions
type UIBinder struct {
	display     Display
	layerHeight float64
	precision   int
	target      Positioner
	fields      Fields
	logger      *slog.Logger
}

// NewUIBinder creates a binder writing to display
func NewUIBinder(display Display, layerHeight float64, precision int, logger *slog.Logger) *UIBinder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if display == nil {
		display = DisplayFunc(func(Fields) {})
	}
	return &UIBinder{
		display:     display,
		layerHeight: layerHeight,
		precision:   precision,
		fields:      Fields{LayerHeight: layerHeight},
		logger:      logger,
	}
}

// Bind sets where field input is sent
func (b *UIBinder) Bind(target Positioner) {
	b.target = target
}

// Fields returns the values last pushed to the display
func (b *UIBinder) Fields() Fields {
	return b.fields
}

func (b *UIBinder) push() {
	b.display.Update(b.fields)
}

func (b *UIBinder) round(v float64) float64 {
	p := math.Pow(10, float64(b.precision))
	return math.Round(v*p) / p
}

// ShowMesh writes the mesh information
func (b *UIBinder) ShowMesh(summary *analysis.Summary) {
	b.fields.Faces = summary.Faces
	b.fields.Volume = summary.DisplayVolume()
	b.push()
}

// Reset shows a freshly loaded mesh of the given height at Z 0
func (b *UIBinder) Reset(zHeight float64) {
	layers := units.LayerCount(zHeight, b.layerHeight)
	b.fields.LayerHeight = b.layerHeight
	b.fields.Layers = layers
	b.fields.ZMax = b.round(zHeight)
	b.fields.ZStep = b.layerHeight
	b.fields.ZPosition = 0
	b.fields.Layer = 1
	b.push()
}

// ShowPosition writes a Z position and the layer derived from the value
// as displayed, so the two fields always agree
func (b *UIBinder) ShowPosition(z float64) {
	b.fields.ZPosition = b.round(z)
	b.fields.Layer = units.PositionToLayer(b.fields.ZPosition, b.layerHeight)
	b.push()
}

// OnPositionInput handles text typed into the Z position field
func (b *UIBinder) OnPositionInput(text string) error {
	z, _ := b.parse("zPosition", text)
	return b.set(z)
}

// OnLayerInput handles text typed into the layer field. Unparsable input
// moves the cut to Z 0 like the position field does.
func (b *UIBinder) OnLayerInput(text string) error {
	v, ok := b.parse("layer", text)
	if !ok {
		return b.set(0)
	}
	return b.set(units.LayerToPosition(int(math.Round(v)), b.layerHeight))
}

func (b *UIBinder) set(z float64) error {
	if b.target == nil {
		return ErrNotReady
	}
	return b.target.SetZPosition(z)
}

// parse reads a number from a field; anything unparsable counts as 0
func (b *UIBinder) parse(field, text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		b.logger.Debug("unparsable input treated as 0", "field", field, "input", text)
		return 0, false
	}
	return v, true
}
