package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionToLayer(t *testing.T) {
	tests := []struct {
		name  string
		z     float64
		h     float64
		layer int
	}{
		{"base", 0, 0.1, 1},
		{"half layer stays on lower layer", 0.05, 0.1, 1},
		{"just past half", 0.051, 0.1, 2},
		{"mid model", 5.0, 0.1, 51},
		{"top of 10mm model", 10.0, 0.1, 101},
		{"coarse layers", 0.6, 0.2, 4},
		{"negative is not clamped", -0.3, 0.1, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.layer, PositionToLayer(tt.z, tt.h))
		})
	}
}

func TestLayerToPosition(t *testing.T) {
	assert.Equal(t, 0.0, LayerToPosition(1, 0.1))
	assert.InDelta(t, 5.0, LayerToPosition(51, 0.1), 1e-12)
	assert.InDelta(t, -0.2, LayerToPosition(-1, 0.1), 1e-12)
}

func TestLayerCount(t *testing.T) {
	tests := []struct {
		zHeight float64
		h       float64
		count   int
	}{
		{10.0, 0.1, 100},
		{1.1, 0.1, 11},
		{0.7, 0.1, 7},
		{10.05, 0.1, 101},
		{3, 0.2, 15},
		{0, 0.1, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.count, LayerCount(tt.zHeight, tt.h), "zHeight=%v h=%v", tt.zHeight, tt.h)
	}
}

func TestTopSurfaceIsOnePastLayerCount(t *testing.T) {
	assert.Equal(t, 100, LayerCount(10, 0.1))
	assert.Equal(t, 101, PositionToLayer(10, 0.1))

	assert.Equal(t, 15, LayerCount(3, 0.2))
	assert.Equal(t, 16, PositionToLayer(3, 0.2))

	// not a multiple: the top falls inside the last layer
	assert.Equal(t, 101, LayerCount(10.05, 0.1))
	assert.Equal(t, 101, PositionToLayer(10.05, 0.1))
}

func TestRoundTrip(t *testing.T) {
	for _, h := range []float64{0.01, 0.05, 0.1, 0.25} {
		for layer := 1; layer <= 2000; layer++ {
			z := LayerToPosition(layer, h)
			assert.Equal(t, layer, PositionToLayer(z, h), "layer=%d h=%v", layer, h)
		}
	}
}

func TestPositionRoundTripsThroughLayer(t *testing.T) {
	const h = 0.1
	for z := 0.0; z <= 10.0; z += 0.0137 {
		layer := PositionToLayer(z, h)
		assert.Equal(t, layer, PositionToLayer(LayerToPosition(layer, h), h), "z=%v", z)
	}
}
