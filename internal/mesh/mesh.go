// Package mesh превращает воксели чанка в поток вершин видимых граней.
//
// Каждая видимая грань даёт квад из двух треугольников (6 вершин) без слияния
// и без дедупликации общих рёбер. Порядок обхода фиксирован (z, затем y, затем x,
// грани в порядке vec.Faces), поэтому одинаковые данные дают побайтно одинаковый результат.
package mesh

import (
	"fmt"
	"iter"

	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world"
	"github.com/annel0/voxelcore/internal/world/block"
)

// VerticesPerQuad — два треугольника на грань
const VerticesPerQuad = 6

// Vertex — угол квада в локальных координатах чанка и тип блока
type Vertex struct {
	X, Y, Z uint8
	Block   block.BlockID
}

// Quad — видимая грань одного вокселя
type Quad struct {
	X, Y, Z int
	Face    vec.Face
	Block   block.BlockID
}

type corner [3]uint8

// Углы граней относительно (x,y,z); обход против часовой стрелки при взгляде снаружи
var faceCorners = [6][VerticesPerQuad]corner{
	vec.Front: {
		{0, 1, 0}, {1, 1, 0}, {1, 0, 0},
		{1, 0, 0}, {0, 0, 0}, {0, 1, 0},
	},
	vec.Back: {
		{1, 1, 1}, {0, 1, 1}, {0, 0, 1},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1},
	},
	vec.Left: {
		{0, 1, 1}, {0, 1, 0}, {0, 0, 0},
		{0, 0, 0}, {0, 0, 1}, {0, 1, 1},
	},
	vec.Right: {
		{1, 1, 0}, {1, 1, 1}, {1, 0, 1},
		{1, 0, 1}, {1, 0, 0}, {1, 1, 0},
	},
	vec.Top: {
		{0, 1, 1}, {1, 1, 1}, {1, 1, 0},
		{1, 1, 0}, {0, 1, 0}, {0, 1, 1},
	},
	vec.Bottom: {
		{0, 0, 0}, {1, 0, 0}, {1, 0, 1},
		{1, 0, 1}, {0, 0, 1}, {0, 0, 0},
	},
}

// Quads возвращает последовательность видимых граней. Последовательность можно
// обходить повторно; каждый обход заново опрашивает чанк.
func Quads(v world.View) iter.Seq[Quad] {
	return func(yield func(Quad) bool) {
		e := v.Extent()
		for z := 0; z < e.D; z++ {
			for y := 0; y < e.H; y++ {
				for x := 0; x < e.W; x++ {
					t := v.Get(x, y, z)
					if !t.IsSolid() {
						continue
					}
					for _, f := range vec.Faces {
						if !v.IsFaceVisible(f, x, y, z) {
							continue
						}
						if !yield(Quad{X: x, Y: y, Z: z, Face: f, Block: t}) {
							return
						}
					}
				}
			}
		}
	}
}

// AppendQuad дописывает 6 вершин грани q.
// Паникует, если угол квада не помещается в байт (координата вне [0, vec.MaxExtent)).
func AppendQuad(dst []Vertex, q Quad) []Vertex {
	if !fitsVertex(q.X) || !fitsVertex(q.Y) || !fitsVertex(q.Z) {
		panic(fmt.Sprintf("mesh: quad (%d,%d,%d) does not fit vertex format, max extent %d", q.X, q.Y, q.Z, vec.MaxExtent))
	}
	x, y, z := uint8(q.X), uint8(q.Y), uint8(q.Z)
	for _, c := range faceCorners[q.Face] {
		dst = append(dst, Vertex{X: x + c[0], Y: y + c[1], Z: z + c[2], Block: q.Block})
	}
	return dst
}

func fitsVertex(c int) bool {
	return c >= 0 && c < vec.MaxExtent
}

// AppendVertices дописывает в dst вершины всех видимых граней чанка
func AppendVertices(dst []Vertex, v world.View) []Vertex {
	for q := range Quads(v) {
		dst = AppendQuad(dst, q)
	}
	return dst
}

// Extract строит меш чанка заново
func Extract(v world.View) []Vertex {
	return AppendVertices(nil, v)
}

// Stats — количество видимых граней по направлениям
type Stats struct {
	Faces [6]int
}

// Quads возвращает общее число граней
func (s Stats) Quads() int {
	n := 0
	for _, c := range s.Faces {
		n += c
	}
	return n
}

// Vertices возвращает ожидаемую длину потока вершин
func (s Stats) Vertices() int {
	return s.Quads() * VerticesPerQuad
}

// Count считает видимые грани без построения вершин
func Count(v world.View) Stats {
	var s Stats
	for q := range Quads(v) {
		s.Faces[q.Face]++
	}
	return s
}
