// Package render содержит CPU-сторону рендера: кеш мешей чанков, который
// подписан на уведомления реестра, и список отрисовки с отсечением по камере.
package render

import (
	"sort"
	"sync"
	"time"

	"github.com/annel0/voxelcore/internal/logging"
	"github.com/annel0/voxelcore/internal/mesh"
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world"
	"github.com/prometheus/client_golang/prometheus"
)

// Visibility — контракт камеры для отсечения
type Visibility interface {
	IsPointVisible(x, y, z float32) bool
}

// ChunkMesh — вершины чанка, сгруппированные по направлению граней
type ChunkMesh struct {
	Extent vec.Extent
	Faces  [6][]mesh.Vertex
	Stats  mesh.Stats
}

// Vertices возвращает общее число вершин
func (m *ChunkMesh) Vertices() int {
	n := 0
	for _, f := range m.Faces {
		n += len(f)
	}
	return n
}

// DrawCall — одна группа граней одного чанка
type DrawCall struct {
	Key    world.ChunkKey
	Face   vec.Face
	Origin [3]float32 // смещение чанка в мировых координатах
	// Vertices разделяет память с кешем: только для чтения.
	// Перестройка меша создаёт новые буферы, старый срез остаётся валидным снимком.
	Vertices []mesh.Vertex
}

// MeshCache строит меши по уведомлениям реестра и хранит только вершины.
// Ссылок на чанки не держит. Безопасен для чтения из другой горутины.
type MeshCache struct {
	mu       sync.RWMutex
	meshes   map[world.ChunkKey]*ChunkMesh
	vertices int

	buildSeconds prometheus.Histogram
	vertexGauge  prometheus.Gauge
	meshGauge    prometheus.Gauge
	log          *logging.Logger
}

// Option настраивает MeshCache
type Option func(*MeshCache)

// WithMetrics регистрирует метрики кеша в reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *MeshCache) {
		c.buildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Subsystem: "render",
			Name:      "mesh_build_seconds",
			Help:      "Время построения меша одного чанка.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		})
		c.vertexGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "render",
			Name:      "vertices",
			Help:      "Суммарное число вершин в кеше.",
		})
		c.meshGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "render",
			Name:      "meshes",
			Help:      "Количество мешей в кеше.",
		})
		reg.MustRegister(c.buildSeconds, c.vertexGauge, c.meshGauge)
	}
}

// WithLogger задаёт логгер
func WithLogger(l *logging.Logger) Option {
	return func(c *MeshCache) { c.log = l }
}

// NewMeshCache создаёт пустой кеш
func NewMeshCache(opts ...Option) *MeshCache {
	c := &MeshCache{
		meshes: make(map[world.ChunkKey]*ChunkMesh),
		log:    logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChunkInsert строит меш нового чанка
func (c *MeshCache) OnChunkInsert(key world.ChunkKey, v world.View) {
	c.store(key, c.build(v))
}

// OnChunkUpdate перестраивает меш
func (c *MeshCache) OnChunkUpdate(key world.ChunkKey, v world.View) {
	c.store(key, c.build(v))
}

// OnChunkRemove удаляет меш
func (c *MeshCache) OnChunkRemove(key world.ChunkKey) {
	c.mu.Lock()
	if m, ok := c.meshes[key]; ok {
		c.vertices -= m.Vertices()
		delete(c.meshes, key)
	}
	c.mu.Unlock()
	c.updateGauges()
	c.log.Trace("mesh %s dropped", key)
}

func (c *MeshCache) build(v world.View) *ChunkMesh {
	start := time.Now()
	m := &ChunkMesh{Extent: v.Extent()}
	for q := range mesh.Quads(v) {
		m.Faces[q.Face] = mesh.AppendQuad(m.Faces[q.Face], q)
		m.Stats.Faces[q.Face]++
	}
	if c.buildSeconds != nil {
		c.buildSeconds.Observe(time.Since(start).Seconds())
	}
	return m
}

func (c *MeshCache) store(key world.ChunkKey, m *ChunkMesh) {
	c.mu.Lock()
	if old, ok := c.meshes[key]; ok {
		c.vertices -= old.Vertices()
	}
	c.meshes[key] = m
	c.vertices += m.Vertices()
	c.mu.Unlock()
	c.updateGauges()
	c.log.Trace("mesh %s: %d quads", key, m.Stats.Quads())
}

func (c *MeshCache) updateGauges() {
	if c.vertexGauge == nil {
		return
	}
	c.mu.RLock()
	c.vertexGauge.Set(float64(c.vertices))
	c.meshGauge.Set(float64(len(c.meshes)))
	c.mu.RUnlock()
}

// Mesh возвращает меш чанка
func (c *MeshCache) Mesh(key world.ChunkKey) (*ChunkMesh, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.meshes[key]
	return m, ok
}

// Len возвращает количество мешей
func (c *MeshCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.meshes)
}

// TotalVertices возвращает сумму вершин всех мешей
func (c *MeshCache) TotalVertices() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vertices
}

// DrawList собирает группы граней для отрисовки кадра. Группа попадает в список,
// если непуста и камера видит центр соответствующей стороны коробки чанка.
// Порядок детерминирован: ключи по z, y, x, грани в порядке vec.Faces.
func (c *MeshCache) DrawList(cam Visibility) []DrawCall {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]world.ChunkKey, 0, len(c.meshes))
	for k := range c.meshes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	var calls []DrawCall
	for _, key := range keys {
		m := c.meshes[key]
		e := m.Extent
		origin := [3]float32{float32(key.X * e.W), float32(key.Y * e.H), float32(key.Z * e.D)}
		for _, f := range vec.Faces {
			if len(m.Faces[f]) == 0 {
				continue
			}
			p := probe(e, f)
			if !cam.IsPointVisible(origin[0]+p[0], origin[1]+p[1], origin[2]+p[2]) {
				continue
			}
			verts := m.Faces[f]
			calls = append(calls, DrawCall{Key: key, Face: f, Origin: origin, Vertices: verts[:len(verts):len(verts)]})
		}
	}
	return calls
}

// probe возвращает центр стороны f коробки чанка в локальных координатах
func probe(e vec.Extent, f vec.Face) [3]float32 {
	w, h, d := float32(e.W), float32(e.H), float32(e.D)
	switch f {
	case vec.Front:
		return [3]float32{w / 2, h / 2, 0}
	case vec.Back:
		return [3]float32{w / 2, h / 2, d}
	case vec.Left:
		return [3]float32{0, h / 2, d / 2}
	case vec.Right:
		return [3]float32{w, h / 2, d / 2}
	case vec.Top:
		return [3]float32{w / 2, h, d / 2}
	default:
		return [3]float32{w / 2, 0, d / 2}
	}
}
