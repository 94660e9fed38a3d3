// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pizza-maniac/internal/model"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Event types.
const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusUpdated = "order.status_updated"
)

// Publisher emits order events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, eventType string, order *model.Order) error
	Close() error
}

// Producer is the subset of *kafka.Writer used by KafkaPublisher.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEvent is the JSON payload of every published message.
type OrderEvent struct {
	Type       string       `json:"type"`
	OccurredAt time.Time    `json:"occurredAt"`
	Order      *model.Order `json:"order"`
}

// KafkaPublisher writes order events to a single topic, keyed by order id.
type KafkaPublisher struct {
	producer Producer
	topic    string
	logger   zerolog.Logger
}

// NewKafkaWriter creates a kafka-go writer for the given brokers.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
}

// NewKafkaPublisher creates a publisher over producer.
func NewKafkaPublisher(producer Producer, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

// Publish serializes the order and writes it with event_type and trace context headers.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, order *model.Order) error {
	payload, err := json.Marshal(OrderEvent{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Order:      order,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	msg := kafka.Message{
		Topic:   p.topic,
		Key:     []byte(order.ID.String()),
		Value:   payload,
		Headers: injectHeaders(ctx, []kafka.Header{{Key: "event_type", Value: []byte(eventType)}}),
	}

	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().
			Err(err).
			Str("event_type", eventType).
			Str("order_id", order.ID.String()).
			Msg("failed to publish event")
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	p.logger.Debug().
		Str("event_type", eventType).
		Str("order_id", order.ID.String()).
		Msg("event published")

	return nil
}

// Close flushes and closes the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

func injectHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

// Publish does nothing.
func (NoopPublisher) Publish(context.Context, string, *model.Order) error { return nil }

// Close does nothing.
func (NoopPublisher) Close() error { return nil }
