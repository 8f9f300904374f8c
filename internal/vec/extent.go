package vec

import "fmt"

// MaxExtent ограничивает размер чанка по оси: координаты углов квадов (x+1) должны помещаться в байт
const MaxExtent = 255

// Extent описывает размеры чанка (или сетки чанков) по трём осям
type Extent struct {
	W int `yaml:"width"`
	H int `yaml:"height"`
	D int `yaml:"depth"`
}

// Volume возвращает количество ячеек
func (e Extent) Volume() int {
	return e.W * e.H * e.D
}

// Contains проверяет, что локальные координаты лежат в [0, extent)
func (e Extent) Contains(x, y, z int) bool {
	return x >= 0 && x < e.W && y >= 0 && y < e.H && z >= 0 && z < e.D
}

// Index переводит локальные координаты в индекс плоского массива (x быстрее всех, затем y, затем z)
func (e Extent) Index(x, y, z int) int {
	return x + e.W*(y+e.H*z)
}

// OnBoundary сообщает, лежит ли ячейка на граничной плоскости, обращённой в сторону f
func (e Extent) OnBoundary(f Face, x, y, z int) bool {
	switch f {
	case Front:
		return z == 0
	case Back:
		return z == e.D-1
	case Left:
		return x == 0
	case Right:
		return x == e.W-1
	case Top:
		return y == e.H-1
	case Bottom:
		return y == 0
	}
	return false
}

// Mirror возвращает координаты ячейки соседа, примыкающей к (x,y,z) через грань f.
// Например, x=0 в сторону Left даёт x=W-1 у левого соседа.
func (e Extent) Mirror(f Face, x, y, z int) (int, int, int) {
	switch f {
	case Front:
		return x, y, e.D - 1
	case Back:
		return x, y, 0
	case Left:
		return e.W - 1, y, z
	case Right:
		return 0, y, z
	case Top:
		return x, 0, z
	case Bottom:
		return x, e.H - 1, z
	}
	return x, y, z
}

// Validate проверяет, что каждая ось лежит в [1, MaxExtent]
func (e Extent) Validate() error {
	for _, v := range [3]int{e.W, e.H, e.D} {
		if v < 1 || v > MaxExtent {
			return fmt.Errorf("extent %s: each axis must be in [1,%d]", e, MaxExtent)
		}
	}
	return nil
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%dx%d", e.W, e.H, e.D)
}
