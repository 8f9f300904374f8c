package world

import (
	"errors"
	"fmt"

	"github.com/annel0/voxelcore/internal/vec"
)

var (
	// ErrOutOfRange — координата вокселя вне размеров чанка (ошибка вызывающего, приводит к panic)
	ErrOutOfRange = errors.New("voxel coordinate out of range")
	// ErrDuplicateKey — по этому ключу уже зарегистрирован чанк
	ErrDuplicateKey = errors.New("chunk key already registered")
	// ErrExtentMismatch — размеры чанка не совпадают с размерами реестра
	ErrExtentMismatch = errors.New("chunk extent does not match registry extent")
	// ErrChunkOwned — чанк уже принадлежит реестру
	ErrChunkOwned = errors.New("chunk already owned by a registry")
	// ErrNilChunk — попытка вставить nil
	ErrNilChunk = errors.New("nil chunk")
	// ErrInvalidExtent — размеры чанка вне [1, vec.MaxExtent] (ошибка вызывающего, приводит к panic)
	ErrInvalidExtent = errors.New("invalid chunk extent")
)

// OutOfRangeError описывает обращение к вокселю за пределами чанка
type OutOfRangeError struct {
	X, Y, Z int
	Extent  vec.Extent
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("voxel (%d,%d,%d) outside chunk extent %s", e.X, e.Y, e.Z, e.Extent)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// DuplicateKeyError возвращается Insert при коллизии ключей
type DuplicateKeyError struct {
	Key ChunkKey
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("chunk %s already registered", e.Key)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }
