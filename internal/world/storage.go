package world

import (
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world/block"
)

// Storage — стратегия хранения вокселей чанка.
// Координаты уже проверены вызывающим (Chunk).
type Storage interface {
	Get(x, y, z int) block.BlockID
	// Set записывает значение и сообщает, изменилось ли оно
	Set(x, y, z int, id block.BlockID) bool
	IsSolid(x, y, z int) bool
}

// DenseStorage хранит все воксели в плоском массиве
type DenseStorage struct {
	extent vec.Extent
	data   []block.BlockID
}

// NewDenseStorage создаёт хранилище, заполненное воздухом
func NewDenseStorage(extent vec.Extent) *DenseStorage {
	return &DenseStorage{
		extent: extent,
		data:   make([]block.BlockID, extent.Volume()),
	}
}

func (s *DenseStorage) Get(x, y, z int) block.BlockID {
	return s.data[s.extent.Index(x, y, z)]
}

func (s *DenseStorage) Set(x, y, z int, id block.BlockID) bool {
	i := s.extent.Index(x, y, z)
	if s.data[i] == id {
		return false
	}
	s.data[i] = id
	return true
}

func (s *DenseStorage) IsSolid(x, y, z int) bool {
	return s.data[s.extent.Index(x, y, z)].IsSolid()
}
