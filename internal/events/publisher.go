package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/lshigami/quizgrader/config"
	"github.com/rs/zerolog/log"
)

// Publisher emits attempt outcome events. Publishing is best effort: callers
// log failures and carry on.
type Publisher interface {
	PublishAttemptEvent(ctx context.Context, event *AttemptEvent) error
	Close() error
}

// NewPublisher builds the publisher selected by configuration. Disabled
// events yield a no-op publisher.
func NewPublisher(cfg *config.Config) (Publisher, error) {
	if !cfg.Events.Enabled {
		log.Info().Msg("Event publishing disabled")
		return NoopPublisher{}, nil
	}

	logger := NewZerologAdapter()
	switch cfg.Events.Publisher {
	case "kafka":
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.Events.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
		}
		log.Info().Strs("brokers", cfg.Events.KafkaBrokers).Str("topic", cfg.Events.Topic).Msg("Kafka event publisher ready")
		return NewWatermillPublisher(pub, cfg.Events.Topic), nil
	case "", "channel":
		pub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
		log.Info().Str("topic", cfg.Events.Topic).Msg("In-process event publisher ready")
		return NewWatermillPublisher(pub, cfg.Events.Topic), nil
	default:
		return nil, fmt.Errorf("unsupported event publisher: %s", cfg.Events.Publisher)
	}
}

// WatermillPublisher publishes JSON-encoded events on one topic.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

func NewWatermillPublisher(publisher message.Publisher, topic string) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher, topic: topic}
}

func (p *WatermillPublisher) PublishAttemptEvent(ctx context.Context, event *AttemptEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		log.Error().Err(err).Str("eventID", event.ID).Str("eventType", string(event.Type)).Msg("Failed to publish attempt event")
		return fmt.Errorf("failed to publish attempt event: %w", err)
	}

	log.Debug().Str("eventID", event.ID).Str("eventType", string(event.Type)).Uint("attemptID", event.AttemptID).Str("topic", p.topic).Msg("Published attempt event")
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) PublishAttemptEvent(context.Context, *AttemptEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
