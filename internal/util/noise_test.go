package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeightNoiseRangeAndDeterminism(t *testing.T) {
	a, b := NewHeightNoise(42), NewHeightNoise(42)
	for i := 0; i < 100; i++ {
		x, y := float64(i)*0.37, float64(i)*0.11
		v := a.At(x, y)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		assert.Equal(t, v, b.At(x, y))
	}
}

func TestDensityNoiseRangeAndDeterminism(t *testing.T) {
	a, b := NewDensityNoise(7), NewDensityNoise(7)
	other := NewDensityNoise(8)
	differs := false
	for i := 0; i < 100; i++ {
		x, y, z := float64(i)*0.3, float64(i)*0.7, float64(i)*0.13
		v := a.At(x, y, z)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		assert.Equal(t, v, b.At(x, y, z))
		if v != other.At(x, y, z) {
			differs = true
		}
	}
	assert.True(t, differs, "разные сиды должны давать разный шум")
}
