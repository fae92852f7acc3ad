// Package units converts between Z positions in millimetres and 1-based
// layer indices for a fixed layer height.
//
// Layer n covers the positions whose nearest layer boundary is (n-1)*h. A
// position exactly halfway between two boundaries belongs to the lower
// layer, so LayerToPosition and PositionToLayer round-trip exactly.
//
// The top of a mesh is a position like any other. When zHeight is an exact
// multiple of h, PositionToLayer(zHeight, h) is LayerCount(zHeight, h)+1:
// a 10mm mesh at 0.1mm has 100 layers and its top surface reads as layer
// 101. Neither function clamps, and callers show the index as computed.
package units

import "math"

// tolerance absorbs floating-point noise in quotients such as 1.1/0.1
const tolerance = 1e-9

// PositionToLayer returns the 1-based layer index for position z. Values
// outside the mesh height are converted as given and never clamped.
func PositionToLayer(z, layerHeight float64) int {
	return int(roundHalfDown(z/layerHeight)) + 1
}

// LayerToPosition returns the Z position of a 1-based layer index
func LayerToPosition(layer int, layerHeight float64) float64 {
	return float64(layer-1) * layerHeight
}

// LayerCount returns how many layers of the given height cover zHeight
func LayerCount(zHeight, layerHeight float64) int {
	q := zHeight / layerHeight
	return int(math.Ceil(q - tolerance*math.Max(1, math.Abs(q))))
}

func roundHalfDown(x float64) float64 {
	return math.Ceil(x - 0.5 - tolerance)
}
