package publisher

import (
	"context"

	"github.com/fortuna/augur/internal/store"
)

// Broadcaster pushes events to connected WebSocket clients.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// Fanout routes settlement-engine events to Kafka, the Redis stream, and
// the WebSocket hub. Any sink may be nil; a disabled sink is skipped.
type Fanout struct {
	kafka  *KafkaPublisher
	stream *RedisStreamPublisher
	hub    Broadcaster
}

// NewFanout wires the sinks together.
func NewFanout(kafkaPub *KafkaPublisher, stream *RedisStreamPublisher, hub Broadcaster) *Fanout {
	return &Fanout{kafka: kafkaPub, stream: stream, hub: hub}
}

// PublishSettlement emits the durable settlement event.
func (f *Fanout) PublishSettlement(ctx context.Context, bet *store.Bet) error {
	if f.kafka == nil {
		return nil
	}
	return f.kafka.PublishSettlement(ctx, bet)
}

// PublishUpdate emits the live update to the stream and the hub.
func (f *Fanout) PublishUpdate(ctx context.Context, bet *store.Bet) error {
	var firstErr error
	if f.stream != nil {
		if err := f.stream.PublishBetUpdate(ctx, bet); err != nil {
			firstErr = err
		}
	}
	if f.hub != nil {
		f.hub.Broadcast("bet_update", bet)
	}
	return firstErr
}
