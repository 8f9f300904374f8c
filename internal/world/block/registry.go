package block

import (
	"fmt"
	"strings"
)

// BlockID представляет тип блока. AirBlockID — единственное "пустое" значение.
type BlockID uint8

// Константы ID блоков
const (
	AirBlockID   BlockID = iota // 0, пустота
	GrassBlockID                // 1
	DirtBlockID                 // 2
	WaterBlockID                // 3
	StoneBlockID                // 4

	blockCount
)

var names = [blockCount]string{
	AirBlockID:   "air",
	GrassBlockID: "grass",
	DirtBlockID:  "dirt",
	WaterBlockID: "water",
	StoneBlockID: "stone",
}

var registry = func() map[string]BlockID {
	m := make(map[string]BlockID, blockCount)
	for id, name := range names {
		m[name] = BlockID(id)
	}
	return m
}()

// IsSolid возвращает true для любого блока, кроме воздуха
func (id BlockID) IsSolid() bool {
	return id != AirBlockID
}

// Name возвращает имя блока
func (id BlockID) Name() string {
	if id < blockCount {
		return names[id]
	}
	return fmt.Sprintf("block(%d)", uint8(id))
}

func (id BlockID) String() string {
	return id.Name()
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	return id < blockCount
}

// Parse возвращает ID блока по имени (регистр не важен)
func Parse(name string) (BlockID, error) {
	id, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return AirBlockID, fmt.Errorf("unknown block type %q", name)
	}
	return id, nil
}

// All возвращает все известные типы блоков
func All() []BlockID {
	out := make([]BlockID, 0, blockCount)
	for id := BlockID(0); id < blockCount; id++ {
		out = append(out, id)
	}
	return out
}
