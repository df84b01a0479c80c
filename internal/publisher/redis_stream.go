package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/augur/internal/store"
)

const (
	// UpdatesStream carries slate/score/settlement live updates. The
	// companion app tails it; readers that fall behind just miss entries.
	UpdatesStream = "augur:updates"

	streamMaxLen = 1000
)

// RedisStreamPublisher publishes events to the updates stream
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a stream publisher from an existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// PublishBetUpdate publishes a bet's current state to the stream
func (rsp *RedisStreamPublisher) PublishBetUpdate(ctx context.Context, bet *store.Bet) error {
	return rsp.publish(ctx, "bet_update", bet)
}

// PublishSlateUpdate publishes a date's refreshed slate to the stream
func (rsp *RedisStreamPublisher) PublishSlateUpdate(ctx context.Context, date string, games interface{}) error {
	return rsp.publish(ctx, "slate_update", map[string]interface{}{
		"date":  date,
		"games": games,
	})
}

func (rsp *RedisStreamPublisher) publish(ctx context.Context, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: UpdatesStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"event":     event,
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
