package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Aivatar/backend/go/internal/config"
	"Aivatar/backend/go/internal/models"

	"github.com/segmentio/kafka-go"
)

// ChatEventPublisher sends chat analytics events to Kafka. Publishing is
// best-effort: callers log and drop failures.
type ChatEventPublisher struct {
	writer *kafka.Writer
}

// NewChatEventPublisher creates a publisher for the configured topic.
func NewChatEventPublisher(cfg *config.KafkaConfig) (*ChatEventPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = "chat_events"
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	})
	return &ChatEventPublisher{writer: writer}, nil
}

// Publish serializes the event to JSON and writes it, keyed by trace ID.
func (p *ChatEventPublisher) Publish(ctx context.Context, event *models.ChatEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("unable to marshal chat event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TraceID),
		Value: jsonData,
	})
	if err != nil {
		return fmt.Errorf("unable to write chat event to kafka: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (p *ChatEventPublisher) Close() error {
	return p.writer.Close()
}
