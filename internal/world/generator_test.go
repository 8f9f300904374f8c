package world

import (
	"math/rand"
	"testing"

	"github.com/annel0/voxelcore/internal/config"
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sameContent(t *testing.T, a, b *Chunk) {
	t.Helper()
	e := a.Extent()
	require.Equal(t, e, b.Extent())
	for z := 0; z < e.D; z++ {
		for y := 0; y < e.H; y++ {
			for x := 0; x < e.W; x++ {
				require.Equal(t, a.Get(x, y, z), b.Get(x, y, z), "(%d,%d,%d)", x, y, z)
			}
		}
	}
}

func TestSolidChunk(t *testing.T) {
	c := SolidChunk(ext4, block.GrassBlockID)
	assert.Equal(t, ext4.Volume(), c.CountSolid())
	assert.Equal(t, block.GrassBlockID, c.Get(3, 3, 3))
	assert.True(t, c.IsDirty())
}

func TestRandomChunkDensity(t *testing.T) {
	e := vec.Extent{W: 16, H: 16, D: 16}
	c := RandomChunk(e, block.StoneBlockID, 0.05, rand.New(rand.NewSource(7)))
	n := c.CountSolid()
	// ~5% от 4096 = 205
	assert.Greater(t, n, 100)
	assert.Less(t, n, 350)

	empty := RandomChunk(e, block.StoneBlockID, 0, rand.New(rand.NewSource(7)))
	assert.Zero(t, empty.CountSolid())
}

func TestSphereChunk(t *testing.T) {
	e := vec.Extent{W: 8, H: 8, D: 8}
	c := SphereChunk(e, block.StoneBlockID)
	assert.True(t, c.IsSolid(4, 4, 4))
	assert.False(t, c.IsSolid(0, 0, 0))
	assert.False(t, c.IsSolid(7, 7, 7))
}

func TestSparseGeneratorIsDeterministicPerKey(t *testing.T) {
	g := SparseGenerator{Extent: ext4, Block: block.StoneBlockID, Density: 0.5, Seed: 42}
	sameContent(t, g.Generate(ChunkKey{X: 1, Y: 2, Z: 3}), g.Generate(ChunkKey{X: 1, Y: 2, Z: 3}))
}

func TestTerrainGeneratorLayers(t *testing.T) {
	e := vec.Extent{W: 4, H: 32, D: 4}
	g := NewTerrainGenerator(e, 3, 0.05, 16, 4, 10)
	c := g.Generate(ChunkKey{})
	sameContent(t, c, g.Generate(ChunkKey{}))

	for z := 0; z < e.D; z++ {
		for x := 0; x < e.W; x++ {
			h := g.HeightAt(x, z)
			require.True(t, h >= 12 && h <= 20, "высота %d вне диапазона", h)
			assert.Equal(t, block.GrassBlockID, c.Get(x, h, z))
			assert.Equal(t, block.DirtBlockID, c.Get(x, h-1, z))
			assert.Equal(t, block.StoneBlockID, c.Get(x, 0, z))
			assert.Equal(t, block.AirBlockID, c.Get(x, e.H-1, z))
		}
	}
}

func TestTerrainGeneratorFillsWaterBelowSeaLevel(t *testing.T) {
	e := vec.Extent{W: 2, H: 16, D: 2}
	// поверхность около 2, вода до 8
	g := NewTerrainGenerator(e, 1, 0.01, 2, 1, 8)
	c := g.Generate(ChunkKey{})
	assert.Equal(t, block.WaterBlockID, c.Get(0, 8, 0))
	assert.Equal(t, block.AirBlockID, c.Get(0, 9, 0))
}

func TestCaveGenerator(t *testing.T) {
	e := vec.Extent{W: 8, H: 8, D: 8}
	g := NewCaveGenerator(e, 5, 0.1, 0.5)
	c := g.Generate(ChunkKey{X: 2})
	sameContent(t, c, g.Generate(ChunkKey{X: 2}))

	n := c.CountSolid()
	assert.Greater(t, n, 0)
	assert.Less(t, n, e.Volume())

	none := NewCaveGenerator(e, 5, 0.1, 1.1).Generate(ChunkKey{})
	assert.Zero(t, none.CountSolid())
}

func TestNewGenerator(t *testing.T) {
	for _, name := range []string{"solid", "sparse", "sphere", "terrain", "caves"} {
		cfg := config.Default().Generator
		cfg.Name = name
		g, err := NewGenerator(cfg, ext4)
		require.NoError(t, err, name)
		c := g.Generate(ChunkKey{})
		assert.Equal(t, ext4, c.Extent(), name)
	}

	cfg := config.GeneratorConfig{Name: "solid", Block: "stone"}
	g, err := NewGenerator(cfg, ext4)
	require.NoError(t, err)
	assert.Equal(t, block.StoneBlockID, g.Generate(ChunkKey{}).Get(0, 0, 0))

	_, err = NewGenerator(config.GeneratorConfig{Name: "fractal"}, ext4)
	assert.Error(t, err)
	_, err = NewGenerator(config.GeneratorConfig{Name: "solid", Block: "lava"}, ext4)
	assert.Error(t, err)
}
