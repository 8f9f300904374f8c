package util

import (
	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// HeightNoise — 2D шум Перлина со своим сидом.
// Только чтение после создания, поэтому безопасен для параллельной генерации.
type HeightNoise struct {
	p *perlin.Perlin
}

// NewHeightNoise создаёт генератор шума Перлина с указанным сидом
func NewHeightNoise(seed int64) *HeightNoise {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &HeightNoise{p: perlin.NewPerlin(alpha, beta, n, seed)}
}

// At возвращает значение шума для указанных координат (от 0 до 1)
func (h *HeightNoise) At(x, y float64) float64 {
	return clamp01((h.p.Noise2D(x, y) + 1.0) / 2.0)
}

// DensityNoise — нормированный 3D шум OpenSimplex
type DensityNoise struct {
	n opensimplex.Noise
}

// NewDensityNoise создаёт 3D шум с указанным сидом
func NewDensityNoise(seed int64) *DensityNoise {
	return &DensityNoise{n: opensimplex.NewNormalized(seed)}
}

// At возвращает значение шума в [0, 1]
func (d *DensityNoise) At(x, y, z float64) float64 {
	return clamp01(d.n.Eval3(x, y, z))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
