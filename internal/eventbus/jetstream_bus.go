package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/voxelcore/internal/config"
	nats "github.com/nats-io/nats.go"
)

// subjectPrefix — события публикуются в voxel.events.<EventType>
const subjectPrefix = "voxel.events."

// JetStreamBus реализует EventBus поверх NATS JetStream.
// Каждая подписка получает только события, опубликованные после неё.
type JetStreamBus struct {
	nc        *nats.Conn
	js        nats.JetStreamContext
	stream    string
	closed    atomic.Bool
	closeOnce sync.Once
	published atomic.Uint64
	consumed  atomic.Uint64
	dropped   atomic.Uint64
}

// NewJetStreamBus подключается к NATS и создаёт стрим, если его ещё нет.
func NewJetStreamBus(url, stream string, retention time.Duration) (*JetStreamBus, error) {
	nc, err := nats.Connect(url, nats.Name("voxeld"))
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if _, err := js.StreamInfo(stream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      stream,
			Subjects:  []string{subjectPrefix + "*"},
			Retention: nats.LimitsPolicy,
			MaxAge:    retention,
			Storage:   nats.MemoryStorage,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("add stream %s: %w", stream, err)
		}
	}

	return &JetStreamBus{nc: nc, js: js, stream: stream}, nil
}

// Open создаёт шину, выбранную в конфигурации
func Open(cfg config.EventsConfig) (EventBus, error) {
	switch cfg.Backend {
	case "", config.EventsMemory:
		buffer := cfg.Buffer
		if buffer < 1 {
			buffer = 1024
		}
		return NewMemoryBus(buffer), nil
	case config.EventsJetStream:
		return NewJetStreamBus(cfg.GetURL(), cfg.Stream, cfg.Retention)
	}
	return nil, fmt.Errorf("eventbus: unknown backend %q", cfg.Backend)
}

func subjectFor(eventType string) string {
	return subjectPrefix + eventType
}

// subjectForFilter сужает подписку до одного subject, если тип ровно один
func subjectForFilter(f Filter) string {
	if len(f.Types) == 1 {
		return subjectFor(f.Types[0])
	}
	return subjectPrefix + "*"
}

// Publish сериализует Envelope в JSON и публикует в voxel.events.<type>.
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	if jb.closed.Load() {
		return ErrClosed
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := jb.js.Publish(subjectFor(ev.EventType), data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", ev.EventType, err)
	}
	jb.published.Add(1)
	return nil
}

// Subscribe создаёт эфемерного потребителя; сообщения приходят по одному, в порядке стрима.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	if jb.closed.Load() {
		return nil, ErrClosed
	}
	sub, err := jb.js.Subscribe(subjectForFilter(f), func(msg *nats.Msg) {
		if jb.dispatch(ctx, f, h, msg.Data) {
			jb.consumed.Add(1)
		}
		_ = msg.Ack()
	}, nats.ManualAck(), nats.DeliverNew(), nats.AckWait(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return &jetSub{s: sub}, nil
}

// dispatch декодирует конверт и вызывает обработчик, если событие проходит фильтр.
// Битые сообщения считаются потерянными.
func (jb *JetStreamBus) dispatch(ctx context.Context, f Filter, h Handler, data []byte) bool {
	var ev Envelope
	if err := json.Unmarshal(data, &ev); err != nil {
		jb.dropped.Add(1)
		return false
	}
	if !matchFilter(&ev, f) || ctx.Err() != nil {
		return false
	}
	h(ctx, &ev)
	return true
}

// Metrics возвращает текущие метрики.
func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: jb.published.Load(),
		Consumed:  jb.consumed.Load(),
		Dropped:   jb.dropped.Load(),
		InFlight:  0, // очередь держит сам JetStream
	}
}

// Close дожидается обработки полученных сообщений и закрывает соединение
func (jb *JetStreamBus) Close() {
	jb.closeOnce.Do(func() {
		jb.closed.Store(true)
		if err := jb.nc.Drain(); err != nil {
			jb.nc.Close()
		}
	})
}

// jetSub обёртка вокруг *nats.Subscription
type jetSub struct {
	s *nats.Subscription
}

func (j *jetSub) Unsubscribe() {
	_ = j.s.Unsubscribe()
}
