package render

import (
	"context"

	"github.com/annel0/voxelcore/internal/eventbus"
	"github.com/annel0/voxelcore/internal/logging"
	"github.com/annel0/voxelcore/internal/mesh"
	"github.com/annel0/voxelcore/internal/world"
)

// Fanout пересылает уведомления реестра нескольким получателям по порядку
type Fanout []world.Renderer

func (f Fanout) OnChunkInsert(key world.ChunkKey, v world.View) {
	for _, r := range f {
		r.OnChunkInsert(key, v)
	}
}

func (f Fanout) OnChunkUpdate(key world.ChunkKey, v world.View) {
	for _, r := range f {
		r.OnChunkUpdate(key, v)
	}
}

func (f Fanout) OnChunkRemove(key world.ChunkKey) {
	for _, r := range f {
		r.OnChunkRemove(key)
	}
}

// EventPublisher превращает уведомления реестра в события шины.
// В событие попадают только ключ и счётчики, чанк за пределы вызова не уходит.
type EventPublisher struct {
	ctx    context.Context
	bus    eventbus.EventBus
	source string
	log    *logging.Logger
}

// NewEventPublisher создаёт издателя; ctx ограничивает ожидание места в буфере шины
func NewEventPublisher(ctx context.Context, bus eventbus.EventBus, source string, log *logging.Logger) *EventPublisher {
	return &EventPublisher{ctx: ctx, bus: bus, source: source, log: log}
}

func (p *EventPublisher) OnChunkInsert(key world.ChunkKey, v world.View) {
	p.publish(eventbus.ChunkInserted, summarize(key, v))
}

func (p *EventPublisher) OnChunkUpdate(key world.ChunkKey, v world.View) {
	p.publish(eventbus.ChunkUpdated, summarize(key, v))
}

func (p *EventPublisher) OnChunkRemove(key world.ChunkKey) {
	p.publish(eventbus.ChunkRemoved, eventbus.ChunkPayload{Key: key})
}

func (p *EventPublisher) publish(eventType string, payload eventbus.ChunkPayload) {
	ev, err := eventbus.NewChunkEnvelope(p.source, eventType, payload)
	if err != nil {
		p.log.Error("event %s for %s: %v", eventType, payload.Key, err)
		return
	}
	if err := p.bus.Publish(p.ctx, ev); err != nil {
		p.log.Warn("publish %s for %s: %v", eventType, payload.Key, err)
	}
}

func summarize(key world.ChunkKey, v world.View) eventbus.ChunkPayload {
	p := eventbus.ChunkPayload{Key: key, Quads: mesh.Count(v).Quads()}
	e := v.Extent()
	for z := 0; z < e.D; z++ {
		for y := 0; y < e.H; y++ {
			for x := 0; x < e.W; x++ {
				if v.IsSolid(x, y, z) {
					p.Solid++
				}
			}
		}
	}
	return p
}
