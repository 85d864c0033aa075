package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes notification events to a Kafka topic where the
// delivery workers (out of scope here) pick them up. When disabled or given
// no brokers it degrades to a no-op.
type KafkaNotifier struct {
	writer  *kafka.Writer
	topic   string
	log     zerolog.Logger
	enabled bool
}

// NewKafkaNotifier builds the producer. A small batch timeout keeps publish
// latency low without hammering the broker per event.
func NewKafkaNotifier(brokers, topic string, enabled bool, logger zerolog.Logger) *KafkaNotifier {
	l := logger.With().Str("component", "notify").Logger()
	if !enabled || brokers == "" {
		l.Info().Msg("kafka notifier disabled")
		return &KafkaNotifier{enabled: false, log: l}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	l.Info().Str("brokers", brokers).Str("topic", topic).Msg("kafka notifier initialized")
	return &KafkaNotifier{writer: w, topic: topic, log: l, enabled: true}
}

type event struct {
	ID        string         `json:"id"`
	PlayerID  string         `json:"player_id"`
	EventType string         `json:"event_type"`
	Payload   map[string]any `json:"payload,omitempty"`
	EmittedAt time.Time      `json:"emitted_at"`
}

// Notify publishes asynchronously. The caller's context only scopes
// enqueueing; delivery runs against its own deadline so request handling is
// never held up by the broker.
func (n *KafkaNotifier) Notify(_ context.Context, playerID, eventType string, payload map[string]any) {
	if !n.enabled {
		return
	}
	ev := event{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		EventType: eventType,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	}
	value, err := json.Marshal(ev)
	if err != nil {
		n.log.Error().Err(err).Str("event_type", eventType).Msg("marshal notification failed")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := n.writer.WriteMessages(ctx, kafka.Message{
			Topic: n.topic,
			Key:   []byte(playerID),
			Value: value,
		})
		if err != nil {
			// Non-fatal per the notification contract; the event is lost.
			n.log.Error().Err(err).Str("player_id", playerID).Str("event_type", eventType).Msg("notification publish failed")
		}
	}()
}

// Close shuts down the underlying writer.
func (n *KafkaNotifier) Close() error {
	if n.writer != nil {
		return n.writer.Close()
	}
	return nil
}

var _ Notifier = (*KafkaNotifier)(nil)
