package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/fortuna/augur/internal/store"
)

// SettlementsTopic receives one event per completed bet.
const SettlementsTopic = "augur.bet.settlements"

// SettlementEvent is the Kafka payload for a settled bet.
type SettlementEvent struct {
	EventID     string    `json:"event_id"`
	BetID       string    `json:"bet_id"`
	UserID      string    `json:"user_id"`
	BetType     string    `json:"bet_type"`
	Result      string    `json:"result"`
	Stake       float64   `json:"stake"`
	Payout      float64   `json:"payout"`
	ActualValue float64   `json:"actual_value"`
	SettledAt   time.Time `json:"settled_at"`
}

// KafkaPublisher writes settlement events to Kafka
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the settlements topic
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  SettlementsTopic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishSettlement writes one settled bet, keyed by bet id so replays of
// the same bet land in one partition
func (kp *KafkaPublisher) PublishSettlement(ctx context.Context, bet *store.Bet) error {
	event := SettlementEvent{
		EventID:     uuid.NewString(),
		BetID:       bet.ID,
		UserID:      bet.UserID,
		BetType:     bet.BetType,
		Result:      bet.Result,
		Stake:       bet.Stake,
		Payout:      bet.Payout.Float64,
		ActualValue: bet.ActualValue.Float64,
		SettledAt:   time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return kp.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(bet.ID),
		Value: data,
		Time:  time.Now(),
	})
}

// Close flushes and closes the writer
func (kp *KafkaPublisher) Close() error {
	return kp.writer.Close()
}
