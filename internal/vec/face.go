package vec

// Face определяет направление грани куба
type Face uint8

const (
	Front  Face = iota // -Z
	Back               // +Z
	Left               // -X
	Right              // +X
	Top                // +Y
	Bottom             // -Y
)

// Faces перечисляет все грани в фиксированном порядке обхода
var Faces = [6]Face{Front, Back, Left, Right, Top, Bottom}

var faceOffsets = [6]Vec3{
	Front:  {Z: -1},
	Back:   {Z: 1},
	Left:   {X: -1},
	Right:  {X: 1},
	Top:    {Y: 1},
	Bottom: {Y: -1},
}

var faceNames = [6]string{
	Front:  "front",
	Back:   "back",
	Left:   "left",
	Right:  "right",
	Top:    "top",
	Bottom: "bottom",
}

// Offset возвращает единичный шаг в направлении грани
func (f Face) Offset() Vec3 {
	return faceOffsets[f]
}

// Opposite возвращает противоположную грань
func (f Face) Opposite() Face {
	// грани идут парами: Front/Back, Left/Right, Top/Bottom
	return f ^ 1
}

// Normal возвращает нормаль грани в виде float-тройки
func (f Face) Normal() [3]float32 {
	o := faceOffsets[f]
	return [3]float32{float32(o.X), float32(o.Y), float32(o.Z)}
}

func (f Face) String() string {
	if int(f) < len(faceNames) {
		return faceNames[f]
	}
	return "unknown"
}
