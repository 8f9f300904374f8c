package render

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/annel0/voxelcore/internal/camera"
	"github.com/annel0/voxelcore/internal/eventbus"
	"github.com/annel0/voxelcore/internal/mesh"
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world"
	"github.com/annel0/voxelcore/internal/world/block"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ext2 = vec.Extent{W: 2, H: 2, D: 2}

type seeAll bool

func (s seeAll) IsPointVisible(x, y, z float32) bool { return bool(s) }

// probeLog запоминает точки, которые проверял DrawList
type probeLog struct {
	points [][3]float32
}

func (p *probeLog) IsPointVisible(x, y, z float32) bool {
	p.points = append(p.points, [3]float32{x, y, z})
	return x > 2 // видна только правая половина мира
}

func twoChunkWorld(t *testing.T, r world.Renderer) *world.Registry {
	t.Helper()
	reg := world.NewRegistry(ext2, r)
	require.NoError(t, reg.Insert(world.ChunkKey{}, world.SolidChunk(ext2, block.StoneBlockID)))
	require.NoError(t, reg.Insert(world.ChunkKey{X: 1}, world.SolidChunk(ext2, block.StoneBlockID)))
	return reg
}

func TestMeshCacheFollowsRegistry(t *testing.T) {
	promReg := prometheus.NewRegistry()
	cache := NewMeshCache(WithMetrics(promReg))
	reg := twoChunkWorld(t, cache)

	// первый чанк вставлен до соседа: шов пока открыт
	first, ok := cache.Mesh(world.ChunkKey{})
	require.True(t, ok)
	assert.Equal(t, 24*mesh.VerticesPerQuad, first.Vertices())

	// вставка соседа пачкает первый чанк, Update перестраивает меш
	assert.Equal(t, 1, reg.Update())
	first, _ = cache.Mesh(world.ChunkKey{})
	second, _ := cache.Mesh(world.ChunkKey{X: 1})
	assert.Equal(t, 20*mesh.VerticesPerQuad, first.Vertices())
	assert.Equal(t, 20*mesh.VerticesPerQuad, second.Vertices())
	assert.Empty(t, first.Faces[vec.Right])
	assert.Empty(t, second.Faces[vec.Left])
	assert.Equal(t, 4, first.Stats.Faces[vec.Top])

	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 40*mesh.VerticesPerQuad, cache.TotalVertices())
	assert.Equal(t, float64(40*mesh.VerticesPerQuad), testutil.ToFloat64(cache.vertexGauge))
	assert.Equal(t, float64(2), testutil.ToFloat64(cache.meshGauge))

	reg.Remove(world.ChunkKey{X: 1})
	assert.Equal(t, 1, cache.Len())
	_, ok = cache.Mesh(world.ChunkKey{X: 1})
	assert.False(t, ok)
	assert.Equal(t, 20*mesh.VerticesPerQuad, cache.TotalVertices())

	reg.Update()
	assert.Equal(t, 24*mesh.VerticesPerQuad, cache.TotalVertices())
}

func TestDrawListSkipsEmptyAndInvisibleGroups(t *testing.T) {
	cache := NewMeshCache()
	reg := twoChunkWorld(t, cache)
	reg.Update()

	all := cache.DrawList(seeAll(true))
	// по 5 непустых групп на чанк, швы пусты
	require.Len(t, all, 10)
	assert.Equal(t, world.ChunkKey{}, all[0].Key)
	assert.Equal(t, vec.Front, all[0].Face)
	assert.Equal(t, [3]float32{2, 0, 0}, all[5].Origin)
	for _, dc := range all {
		assert.Len(t, dc.Vertices, 4*mesh.VerticesPerQuad)
	}

	assert.Empty(t, cache.DrawList(seeAll(false)))

	var pl probeLog
	some := cache.DrawList(&pl)
	assert.Len(t, pl.points, 10)
	// точки проверяются в мировых координатах: правая сторона второго чанка в x=4
	assert.Contains(t, pl.points, [3]float32{4, 1, 1})
	for _, dc := range some {
		assert.Equal(t, world.ChunkKey{X: 1}, dc.Key)
	}
	assert.Len(t, some, 5)
}

func TestDrawListAppendDoesNotTouchCache(t *testing.T) {
	cache := NewMeshCache()
	twoChunkWorld(t, cache)

	calls := cache.DrawList(seeAll(true))
	require.NotEmpty(t, calls)
	first, second := calls[0], calls[1]
	assert.Equal(t, len(first.Vertices), cap(first.Vertices))

	grown := append(first.Vertices, mesh.Vertex{X: 99, Block: block.DirtBlockID})
	assert.Len(t, grown, len(first.Vertices)+1)

	m, ok := cache.Mesh(first.Key)
	require.True(t, ok)
	assert.Len(t, m.Faces[first.Face], len(first.Vertices))
	assert.Equal(t, second.Vertices, cache.DrawList(seeAll(true))[1].Vertices)
	for _, v := range m.Faces[first.Face] {
		assert.NotEqual(t, uint8(99), v.X)
	}
}

func TestDrawListWithCamera(t *testing.T) {
	cache := NewMeshCache()
	twoChunkWorld(t, cache).Update()

	p := camera.DefaultProperties()
	p.Eye = mgl32.Vec3{2, 1, 10}
	p.LookAt = mgl32.Vec3{2, 1, 0}
	cam := camera.New(p)

	// обе коробки целиком перед камерой
	calls := cache.DrawList(cam)
	require.Len(t, calls, 10)
	assert.Equal(t, vec.Back, calls[1].Face)

	// камера смотрит в другую сторону
	cam.OffsetOrientation(180, 0)
	assert.Empty(t, cache.DrawList(cam))
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) OnChunkInsert(key world.ChunkKey, _ world.View) { r.add("insert " + key.String()) }
func (r *recorder) OnChunkUpdate(key world.ChunkKey, _ world.View) { r.add("update " + key.String()) }
func (r *recorder) OnChunkRemove(key world.ChunkKey)               { r.add("remove " + key.String()) }

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func TestFanoutForwardsToAll(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	reg := world.NewRegistry(ext2, Fanout{a, b})
	require.NoError(t, reg.Insert(world.ChunkKey{}, world.NewChunk(ext2)))
	reg.Remove(world.ChunkKey{})

	assert.Len(t, a.events, 2)
	assert.Equal(t, a.events, b.events)
}

func TestEventPublisher(t *testing.T) {
	bus := eventbus.NewMemoryBus(16)
	defer bus.Close()

	var mu sync.Mutex
	var got []eventbus.ChunkPayload
	var types []string
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(_ context.Context, ev *eventbus.Envelope) {
		p, err := eventbus.DecodeChunk(ev)
		if err != nil {
			return
		}
		mu.Lock()
		got = append(got, p)
		types = append(types, ev.EventType)
		mu.Unlock()
	})
	require.NoError(t, err)

	pub := NewEventPublisher(context.Background(), bus, "world", nil)
	reg := world.NewRegistry(ext2, pub)
	require.NoError(t, reg.Insert(world.ChunkKey{Z: 1}, world.SolidChunk(ext2, block.DirtBlockID)))
	reg.Remove(world.ChunkKey{Z: 1})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{eventbus.ChunkInserted, eventbus.ChunkRemoved}, types)
	assert.Equal(t, world.ChunkKey{Z: 1}, got[0].Key)
	assert.Equal(t, 24, got[0].Quads)
	assert.Equal(t, 8, got[0].Solid)
	assert.Zero(t, got[1].Quads)
}
