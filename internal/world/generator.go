package world

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/annel0/voxelcore/internal/config"
	"github.com/annel0/voxelcore/internal/util"
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world/block"
)

// Generator производит заполненный чанк по ключу.
// Реализации не зависят от реестра и безопасны для параллельного вызова.
type Generator interface {
	Generate(key ChunkKey) *Chunk
}

// GeneratorFunc адаптирует функцию к Generator
type GeneratorFunc func(key ChunkKey) *Chunk

func (f GeneratorFunc) Generate(key ChunkKey) *Chunk { return f(key) }

// SolidChunk возвращает чанк, целиком заполненный блоком id
func SolidChunk(extent vec.Extent, id block.BlockID) *Chunk {
	c := NewChunk(extent)
	c.Fill(id)
	return c
}

// RandomChunk заполняет долю density ячеек блоком id
func RandomChunk(extent vec.Extent, id block.BlockID, density float64, rng *rand.Rand) *Chunk {
	c := NewChunk(extent)
	for z := 0; z < extent.D; z++ {
		for y := 0; y < extent.H; y++ {
			for x := 0; x < extent.W; x++ {
				if rng.Float64() < density {
					c.Set(x, y, z, id)
				}
			}
		}
	}
	return c
}

// SphereChunk вписывает шар из блоков id в чанк
func SphereChunk(extent vec.Extent, id block.BlockID) *Chunk {
	c := NewChunk(extent)
	r := float64(min(extent.W, extent.H, extent.D)) / 2
	cx, cy, cz := float64(extent.W)/2, float64(extent.H)/2, float64(extent.D)/2
	for z := 0; z < extent.D; z++ {
		for y := 0; y < extent.H; y++ {
			for x := 0; x < extent.W; x++ {
				dx := float64(x) + 0.5 - cx
				dy := float64(y) + 0.5 - cy
				dz := float64(z) + 0.5 - cz
				if dx*dx+dy*dy+dz*dz <= r*r {
					c.Set(x, y, z, id)
				}
			}
		}
	}
	return c
}

// SolidGenerator выдаёт сплошные чанки
type SolidGenerator struct {
	Extent vec.Extent
	Block  block.BlockID
}

func (g SolidGenerator) Generate(ChunkKey) *Chunk {
	return SolidChunk(g.Extent, g.Block)
}

// SparseGenerator выдаёт случайно заполненные чанки.
// Сид каждого чанка выводится из общего сида и хеша ключа, поэтому результат воспроизводим.
type SparseGenerator struct {
	Extent  vec.Extent
	Block   block.BlockID
	Density float64
	Seed    int64
}

func (g SparseGenerator) Generate(key ChunkKey) *Chunk {
	rng := rand.New(rand.NewSource(g.Seed ^ int64(key.Hash())))
	return RandomChunk(g.Extent, g.Block, g.Density, rng)
}

// TerrainGenerator строит ландшафт по карте высот:
// трава сверху, под ней земля, ниже камень, вода до уровня моря.
type TerrainGenerator struct {
	extent     vec.Extent
	noise      *util.HeightNoise
	scale      float64
	baseHeight int
	amplitude  int
	seaLevel   int
}

const dirtDepth = 3

// NewTerrainGenerator создаёт генератор ландшафта
func NewTerrainGenerator(extent vec.Extent, seed int64, scale float64, baseHeight, amplitude, seaLevel int) *TerrainGenerator {
	return &TerrainGenerator{
		extent:     extent,
		noise:      util.NewHeightNoise(seed),
		scale:      scale,
		baseHeight: baseHeight,
		amplitude:  amplitude,
		seaLevel:   seaLevel,
	}
}

// HeightAt возвращает высоту поверхности в мировых координатах столбца
func (g *TerrainGenerator) HeightAt(gx, gz int) int {
	n := g.noise.At(float64(gx)*g.scale, float64(gz)*g.scale)
	return g.baseHeight + int(math.Round((n-0.5)*2*float64(g.amplitude)))
}

func (g *TerrainGenerator) Generate(key ChunkKey) *Chunk {
	e := g.extent
	c := NewChunk(e)
	for z := 0; z < e.D; z++ {
		for x := 0; x < e.W; x++ {
			h := g.HeightAt(key.X*e.W+x, key.Z*e.D+z)
			for y := 0; y < e.H; y++ {
				gy := key.Y*e.H + y
				var id block.BlockID
				switch {
				case gy == h:
					id = block.GrassBlockID
				case gy < h && gy >= h-dirtDepth:
					id = block.DirtBlockID
				case gy < h:
					id = block.StoneBlockID
				case gy <= g.seaLevel:
					id = block.WaterBlockID
				default:
					continue
				}
				c.Set(x, y, z, id)
			}
		}
	}
	return c
}

// CaveGenerator вырезает пещеры в каменном массиве по 3D шуму
type CaveGenerator struct {
	extent    vec.Extent
	noise     *util.DensityNoise
	scale     float64
	threshold float64
}

// NewCaveGenerator создаёт генератор пещер; ячейки с шумом ниже threshold пусты
func NewCaveGenerator(extent vec.Extent, seed int64, scale, threshold float64) *CaveGenerator {
	return &CaveGenerator{
		extent:    extent,
		noise:     util.NewDensityNoise(seed),
		scale:     scale,
		threshold: threshold,
	}
}

func (g *CaveGenerator) Generate(key ChunkKey) *Chunk {
	e := g.extent
	c := NewChunk(e)
	for z := 0; z < e.D; z++ {
		for y := 0; y < e.H; y++ {
			for x := 0; x < e.W; x++ {
				gx := float64(key.X*e.W + x)
				gy := float64(key.Y*e.H + y)
				gz := float64(key.Z*e.D + z)
				if g.noise.At(gx*g.scale, gy*g.scale, gz*g.scale) >= g.threshold {
					c.Set(x, y, z, block.StoneBlockID)
				}
			}
		}
	}
	return c
}

// NewGenerator выбирает генератор по имени из конфигурации
func NewGenerator(cfg config.GeneratorConfig, extent vec.Extent) (Generator, error) {
	id := block.StoneBlockID
	if cfg.Block != "" {
		parsed, err := block.Parse(cfg.Block)
		if err != nil {
			return nil, fmt.Errorf("generator %q: %w", cfg.Name, err)
		}
		id = parsed
	}

	switch cfg.Name {
	case "solid":
		return SolidGenerator{Extent: extent, Block: id}, nil
	case "sparse":
		return SparseGenerator{Extent: extent, Block: id, Density: cfg.Density, Seed: cfg.Seed}, nil
	case "sphere":
		return GeneratorFunc(func(ChunkKey) *Chunk { return SphereChunk(extent, id) }), nil
	case "terrain", "":
		return NewTerrainGenerator(extent, cfg.Seed, cfg.NoiseScale, cfg.BaseHeight, cfg.Amplitude, cfg.SeaLevel), nil
	case "caves":
		return NewCaveGenerator(extent, cfg.Seed, cfg.NoiseScale, cfg.Threshold), nil
	}
	return nil, fmt.Errorf("unknown generator %q", cfg.Name)
}
