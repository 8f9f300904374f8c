package eventbus

import (
	"context"

	"github.com/annel0/voxelcore/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог компонента.
// Функция неблокирующая.
func StartLoggingListener(bus EventBus, log *logging.Logger) (Subscription, error) {
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		if p, err := DecodeChunk(ev); err == nil {
			log.Debug("[EventBus] %s %s src=%s key=%s quads=%d", ev.ID, ev.EventType, ev.Source, p.Key, p.Quads)
			return
		}
		log.Debug("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return nil, err
	}
	log.Info("LoggingListener: подписка на все события активирована")
	return sub, nil
}
