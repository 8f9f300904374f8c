package world

import (
	"fmt"

	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world/block"
)

// ChunkKey — координаты чанка в сетке чанков (не в воксельных координатах)
type ChunkKey = vec.Vec3

// View — доступ только на чтение, который получает рендерер.
// Ссылку нельзя сохранять после возврата из уведомления.
type View interface {
	Extent() vec.Extent
	Get(x, y, z int) block.BlockID
	IsSolid(x, y, z int) bool
	IsFaceVisible(f vec.Face, x, y, z int) bool
}

// anchor — общая ячейка, через которую соседи видят чанк.
// При удалении чанка из реестра ячейка обнуляется.
type anchor struct {
	chunk *Chunk
}

// NeighborRef — невладеющая ссылка на соседний чанк.
// Нулевое значение означает "соседа нет".
type NeighborRef struct {
	a *anchor
}

// Resolve возвращает соседа, если он ещё жив
func (r NeighborRef) Resolve() (*Chunk, bool) {
	if r.a == nil || r.a.chunk == nil {
		return nil, false
	}
	return r.a.chunk, true
}

// Present сообщает, жив ли сосед
func (r NeighborRef) Present() bool {
	_, ok := r.Resolve()
	return ok
}

// Chunk — участок мира фиксированного размера.
// Не потокобезопасен: им владеет один поток (реестр), см. Registry.
type Chunk struct {
	extent    vec.Extent
	storage   Storage
	dirty     bool
	neighbors [6]NeighborRef
	anchor    *anchor
	owned     bool
}

// NewChunk создаёт пустой чанк (воздух) с плотным хранилищем
func NewChunk(extent vec.Extent) *Chunk {
	mustValidExtent(extent)
	return NewChunkWithStorage(extent, NewDenseStorage(extent))
}

// NewChunkWithStorage создаёт чанк поверх заданного хранилища.
// Паникует, если extent не проходит vec.Extent.Validate: вершины меша хранят координаты в байте.
func NewChunkWithStorage(extent vec.Extent, storage Storage) *Chunk {
	mustValidExtent(extent)
	c := &Chunk{
		extent:  extent,
		storage: storage,
	}
	c.anchor = &anchor{chunk: c}
	return c
}

func mustValidExtent(e vec.Extent) {
	if err := e.Validate(); err != nil {
		panic(fmt.Errorf("%w: %v", ErrInvalidExtent, err))
	}
}

// Extent возвращает размеры чанка
func (c *Chunk) Extent() vec.Extent {
	return c.extent
}

// Ref возвращает невладеющую ссылку на этот чанк
func (c *Chunk) Ref() NeighborRef {
	return NeighborRef{a: c.anchor}
}

func (c *Chunk) check(x, y, z int) {
	if !c.extent.Contains(x, y, z) {
		panic(&OutOfRangeError{X: x, Y: y, Z: z, Extent: c.extent})
	}
}

// Get возвращает блок по локальным координатам
func (c *Chunk) Get(x, y, z int) block.BlockID {
	c.check(x, y, z)
	return c.storage.Get(x, y, z)
}

// Set устанавливает блок. Реальное изменение помечает чанк грязным, а изменение
// граничного вокселя помечает грязными и соседей за этой границей.
func (c *Chunk) Set(x, y, z int, id block.BlockID) {
	c.check(x, y, z)
	if !c.storage.Set(x, y, z, id) {
		return
	}
	c.dirty = true
	for _, f := range vec.Faces {
		if !c.extent.OnBoundary(f, x, y, z) {
			continue
		}
		if n, ok := c.neighbors[f].Resolve(); ok {
			n.MarkDirty()
		}
	}
}

// Fill заполняет весь чанк одним блоком
func (c *Chunk) Fill(id block.BlockID) {
	changed := false
	for z := 0; z < c.extent.D; z++ {
		for y := 0; y < c.extent.H; y++ {
			for x := 0; x < c.extent.W; x++ {
				if c.storage.Set(x, y, z, id) {
					changed = true
				}
			}
		}
	}
	if !changed {
		return
	}
	c.dirty = true
	c.markNeighborsDirty()
}

// IsSolid возвращает true, если в ячейке не воздух
func (c *Chunk) IsSolid(x, y, z int) bool {
	c.check(x, y, z)
	return c.storage.IsSolid(x, y, z)
}

// IsFaceVisible проверяет, граничит ли грань f вокселя с пустотой.
// На границе чанка решает сосед (зеркальная ячейка); без соседа грань видна.
func (c *Chunk) IsFaceVisible(f vec.Face, x, y, z int) bool {
	if !c.IsSolid(x, y, z) {
		return false
	}
	if c.extent.OnBoundary(f, x, y, z) {
		n, ok := c.neighbors[f].Resolve()
		if !ok {
			return true
		}
		mx, my, mz := c.extent.Mirror(f, x, y, z)
		return !n.IsSolid(mx, my, mz)
	}
	o := f.Offset()
	return !c.storage.IsSolid(x+o.X, y+o.Y, z+o.Z)
}

// SetNeighbor заменяет ссылку на соседа. Обратную ссылку ставит реестр.
func (c *Chunk) SetNeighbor(f vec.Face, ref NeighborRef) {
	c.neighbors[f] = ref
}

// Neighbor возвращает текущую ссылку на соседа
func (c *Chunk) Neighbor(f vec.Face) NeighborRef {
	return c.neighbors[f]
}

// IsDirty сообщает, устарела ли геометрия чанка
func (c *Chunk) IsDirty() bool {
	return c.dirty
}

// MarkDirty помечает чанк грязным
func (c *Chunk) MarkDirty() {
	c.dirty = true
}

// MarkClean снимает пометку
func (c *Chunk) MarkClean() {
	c.dirty = false
}

// CountSolid возвращает количество твёрдых вокселей
func (c *Chunk) CountSolid() int {
	n := 0
	for z := 0; z < c.extent.D; z++ {
		for y := 0; y < c.extent.H; y++ {
			for x := 0; x < c.extent.W; x++ {
				if c.storage.IsSolid(x, y, z) {
					n++
				}
			}
		}
	}
	return n
}

func (c *Chunk) markNeighborsDirty() {
	for _, ref := range c.neighbors {
		if n, ok := ref.Resolve(); ok {
			n.MarkDirty()
		}
	}
}

// release вызывается реестром при удалении: соседи начинают видеть "нет соседа"
func (c *Chunk) release() {
	c.anchor.chunk = nil
	c.neighbors = [6]NeighborRef{}
	c.owned = false
}

// adopt вызывается реестром при вставке; удалённый ранее чанк получает новую ячейку
func (c *Chunk) adopt() {
	if c.anchor.chunk == nil {
		c.anchor = &anchor{chunk: c}
	}
	c.owned = true
}
