package world

import (
	"fmt"
	"sort"

	"github.com/annel0/voxelcore/internal/logging"
	"github.com/annel0/voxelcore/internal/vec"
)

// Renderer получает уведомления о жизненном цикле чанков.
// View действителен только на время вызова.
type Renderer interface {
	OnChunkInsert(key ChunkKey, c View)
	OnChunkUpdate(key ChunkKey, c View)
	OnChunkRemove(key ChunkKey)
}

// NopRenderer игнорирует все уведомления
type NopRenderer struct{}

func (NopRenderer) OnChunkInsert(ChunkKey, View) {}
func (NopRenderer) OnChunkUpdate(ChunkKey, View) {}
func (NopRenderer) OnChunkRemove(ChunkKey)       {}

// Entry — пара ключ/чанк для пакетной вставки
type Entry struct {
	Key   ChunkKey
	Chunk *Chunk
}

// Registry владеет всеми чанками и связывает соседей.
// Внутренних блокировок нет: Insert, Remove и Update вызываются из одного потока.
type Registry struct {
	extent   vec.Extent
	chunks   map[ChunkKey]*Chunk
	renderer Renderer
	metrics  *Metrics
	log      *logging.Logger
}

// RegistryOption настраивает реестр
type RegistryOption func(*Registry)

// WithMetrics подключает Prometheus-метрики
func WithMetrics(m *Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// WithLogger задаёт логгер компонента
func WithLogger(l *logging.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// NewRegistry создаёт пустой реестр для чанков размера extent.
// Недопустимый extent (см. vec.Extent.Validate) приводит к panic.
func NewRegistry(extent vec.Extent, renderer Renderer, opts ...RegistryOption) *Registry {
	mustValidExtent(extent)
	if renderer == nil {
		renderer = NopRenderer{}
	}
	r := &Registry{
		extent:   extent,
		chunks:   make(map[ChunkKey]*Chunk),
		renderer: renderer,
		log:      logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extent возвращает размер чанков реестра
func (r *Registry) Extent() vec.Extent {
	return r.extent
}

// Len возвращает количество чанков
func (r *Registry) Len() int {
	return len(r.chunks)
}

// Lookup возвращает чанк по ключу
func (r *Registry) Lookup(key ChunkKey) (*Chunk, bool) {
	c, ok := r.chunks[key]
	return c, ok
}

// Keys возвращает ключи в порядке z, y, x
func (r *Registry) Keys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(r.chunks))
	for k := range r.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Insert забирает чанк во владение. Соседи связываются в обе стороны до
// уведомления рендерера, поэтому первый меш уже учитывает соседей.
// При ошибке реестр не меняется.
func (r *Registry) Insert(key ChunkKey, c *Chunk) error {
	if err := r.admit(key, c); err != nil {
		r.metrics.insertFailed()
		return err
	}
	r.attach(key, c, nil)

	r.renderer.OnChunkInsert(key, c)
	r.metrics.notified("insert")
	// уведомление уже отражает текущие данные
	c.MarkClean()

	r.chunks[key] = c
	r.metrics.setChunks(len(r.chunks))
	r.log.Debug("chunk %s inserted", key)
	return nil
}

// InsertBatch сливает готовый пакет чанков. Сначала связываются все чанки пакета,
// затем каждый получает одно уведомление о вставке. Возвращает ошибки
// по индексам entries (nil для успешных).
func (r *Registry) InsertBatch(entries []Entry) []error {
	errs := make([]error, len(entries))
	fresh := make(map[ChunkKey]bool, len(entries))
	accepted := make([]int, 0, len(entries))

	for i, e := range entries {
		if err := r.admit(e.Key, e.Chunk); err != nil {
			r.metrics.insertFailed()
			errs[i] = err
			continue
		}
		fresh[e.Key] = true
		r.attach(e.Key, e.Chunk, fresh)
		r.chunks[e.Key] = e.Chunk
		accepted = append(accepted, i)
	}

	for _, i := range accepted {
		e := entries[i]
		r.renderer.OnChunkInsert(e.Key, e.Chunk)
		r.metrics.notified("insert")
		e.Chunk.MarkClean()
	}

	r.metrics.setChunks(len(r.chunks))
	r.log.Debug("batch merged: %d accepted, %d rejected", len(accepted), len(entries)-len(accepted))
	return errs
}

// Remove удаляет чанк. Соседи не отвязываются явно: их ссылки начинают
// разрешаться в "нет соседа", а сами они помечаются грязными.
func (r *Registry) Remove(key ChunkKey) bool {
	c, ok := r.chunks[key]
	if !ok {
		return false
	}
	r.renderer.OnChunkRemove(key)
	r.metrics.notified("remove")
	delete(r.chunks, key)

	c.markNeighborsDirty()
	c.release()

	r.metrics.setChunks(len(r.chunks))
	r.log.Debug("chunk %s removed", key)
	return true
}

// Update уведомляет рендерер о каждом грязном чанке и снимает пометку.
// Порядок обхода не определён. Возвращает число уведомлений.
func (r *Registry) Update() int {
	n := 0
	for key, c := range r.chunks {
		if !c.IsDirty() {
			continue
		}
		r.renderer.OnChunkUpdate(key, c)
		r.metrics.notified("update")
		c.MarkClean()
		n++
	}
	if n > 0 {
		r.log.Trace("update: %d chunks re-synced", n)
	}
	return n
}

func (r *Registry) admit(key ChunkKey, c *Chunk) error {
	if c == nil {
		return fmt.Errorf("insert %s: %w", key, ErrNilChunk)
	}
	if _, exists := r.chunks[key]; exists {
		return &DuplicateKeyError{Key: key}
	}
	if c.Extent() != r.extent {
		return fmt.Errorf("insert %s: chunk %s, registry %s: %w", key, c.Extent(), r.extent, ErrExtentMismatch)
	}
	if c.owned {
		return fmt.Errorf("insert %s: %w", key, ErrChunkOwned)
	}
	return nil
}

// attach связывает чанк с уже зарегистрированными соседями (в обе стороны).
// Соседи, не входящие в fresh, помечаются грязными: их грани на шве изменились.
func (r *Registry) attach(key ChunkKey, c *Chunk, fresh map[ChunkKey]bool) {
	c.adopt()
	for _, f := range vec.Faces {
		nk := key.Step(f)
		n, ok := r.chunks[nk]
		if !ok {
			c.SetNeighbor(f, NeighborRef{})
			continue
		}
		c.SetNeighbor(f, n.Ref())
		n.SetNeighbor(f.Opposite(), c.Ref())
		if !fresh[nk] {
			n.MarkDirty()
		}
	}
}
