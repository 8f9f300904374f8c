package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/annel0/voxelcore/internal/config"
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSelectsBackend(t *testing.T) {
	bus, err := Open(config.EventsConfig{Backend: config.EventsMemory, Buffer: 4})
	require.NoError(t, err)
	defer bus.Close()

	var c collector
	_, err = bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), mustEnvelope(t, ChunkInserted, vec.Vec3{})))
	assert.Eventually(t, func() bool { return c.len() == 1 }, time.Second, time.Millisecond)

	_, err = Open(config.EventsConfig{Backend: "kafka"})
	assert.Error(t, err)

	// на этом порту NATS нет
	_, err = Open(config.EventsConfig{Backend: config.EventsJetStream, URL: "nats://127.0.0.1:1", Stream: "T"})
	assert.Error(t, err)
}

func TestJetStreamSubjects(t *testing.T) {
	assert.Equal(t, "voxel.events.ChunkUpdated", subjectFor(ChunkUpdated))
	assert.Equal(t, "voxel.events.ChunkRemoved", subjectForFilter(Filter{Types: []string{ChunkRemoved}}))
	assert.Equal(t, "voxel.events.*", subjectForFilter(Filter{}))
	assert.Equal(t, "voxel.events.*", subjectForFilter(Filter{Types: []string{ChunkInserted, ChunkRemoved}}))
}

func TestJetStreamDispatch(t *testing.T) {
	jb := &JetStreamBus{}
	ctx := context.Background()
	var c collector

	data, err := json.Marshal(mustEnvelope(t, ChunkInserted, vec.Vec3{X: 2}))
	require.NoError(t, err)

	assert.True(t, jb.dispatch(ctx, Filter{}, c.handle, data))
	assert.False(t, jb.dispatch(ctx, Filter{Types: []string{ChunkRemoved}}, c.handle, data))
	assert.False(t, jb.dispatch(ctx, Filter{Sources: []string{"other"}}, c.handle, data))
	assert.False(t, jb.dispatch(ctx, Filter{}, c.handle, []byte("{broken")))

	require.Equal(t, []string{ChunkInserted}, c.types())
	p, err := DecodeChunk(c.got[0])
	require.NoError(t, err)
	assert.Equal(t, vec.Vec3{X: 2}, p.Key)
	assert.Equal(t, uint64(1), jb.Metrics().Dropped)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, jb.dispatch(cancelled, Filter{}, c.handle, data))
}

func TestJetStreamClosedRejectsCalls(t *testing.T) {
	jb := &JetStreamBus{}
	jb.closed.Store(true)

	err := jb.Publish(context.Background(), mustEnvelope(t, ChunkInserted, vec.Vec3{}))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = jb.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {})
	assert.ErrorIs(t, err, ErrClosed)
}
