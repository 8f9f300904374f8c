package vec

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется как ключ чанка в сетке чанков (не в воксельных координатах).
type Vec3 struct {
	X int
	Y int
	Z int
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Step возвращает соседнюю позицию в направлении грани
func (v Vec3) Step(f Face) Vec3 {
	return v.Add(f.Offset())
}

// Neighbors возвращает шесть соседних позиций в порядке Faces
func (v Vec3) Neighbors() [6]Vec3 {
	var out [6]Vec3
	for i, f := range Faces {
		out[i] = v.Step(f)
	}
	return out
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Less задаёт порядок z, y, x (используется для детерминированной сортировки ключей)
func (v Vec3) Less(other Vec3) bool {
	if v.Z != other.Z {
		return v.Z < other.Z
	}
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	return v.X < other.X
}

// Hash возвращает хеш, зависящий от порядка компонент.
// Компоненты пишутся в фиксированном порядке X, Y, Z, поэтому (1,2,3) и (3,2,1) различаются.
func (v Vec3) Hash() uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(int64(v.X)))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(v.Y)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(v.Z)))
	return xxhash.Sum64(buf[:])
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}
