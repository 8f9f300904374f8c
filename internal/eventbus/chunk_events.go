package eventbus

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/voxelcore/internal/vec"
	"github.com/google/uuid"
)

// ErrClosed возвращается при обращении к закрытой шине
var ErrClosed = errors.New("eventbus: closed")

// Типы событий жизненного цикла чанков
const (
	ChunkInserted = "ChunkInserted"
	ChunkUpdated  = "ChunkUpdated"
	ChunkRemoved  = "ChunkRemoved"
)

const chunkEventVersion = 1

// ChunkPayload — полезная нагрузка событий чанка. Ссылок на сам чанк не содержит.
type ChunkPayload struct {
	Key   vec.Vec3 `json:"key"`
	Quads int      `json:"quads"`
	Solid int      `json:"solid"`
}

// NewChunkEnvelope упаковывает событие чанка в конверт
func NewChunkEnvelope(source, eventType string, p ChunkPayload) (*Envelope, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	// обновления можно терять под нагрузкой, вставки и удаления нет
	priority := 5
	if eventType == ChunkUpdated {
		priority = 1
	}

	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   chunkEventVersion,
		Priority:  priority,
		Payload:   data,
		Metadata:  map[string]string{"key": p.Key.String()},
	}, nil
}

// DecodeChunk извлекает ChunkPayload из конверта
func DecodeChunk(ev *Envelope) (ChunkPayload, error) {
	var p ChunkPayload
	switch ev.EventType {
	case ChunkInserted, ChunkUpdated, ChunkRemoved:
	default:
		return p, fmt.Errorf("event %s: not a chunk event (%s)", ev.ID, ev.EventType)
	}
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return p, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	return p, nil
}
