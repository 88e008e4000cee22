// Package publisher feeds appended events to kafka for downstream readers.
// The pebble log is the source of truth; publishing is best effort and a
// publish failure never fails the command that produced the events.
package publisher

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"exchange-core/src/engine"
)

type Publisher struct {
	writer *kafka.Writer
}

// New returns nil when no brokers are configured; a nil Publisher publishes
// nothing.
func New(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish sends the transaction's events in emission order, keyed by book id
// so one book's events stay on one partition, in order.
func (p *Publisher) Publish(ctx context.Context, bookID engine.BookID, events []engine.Event) {
	if p == nil || len(events) == 0 {
		return
	}

	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		value, err := engine.MarshalEvent(event)
		if err != nil {
			log.Error().Err(err).Str("book_id", string(bookID)).Msg("Failed to encode event for publishing")
			return
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(bookID),
			Value: value,
		})
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		log.Warn().Err(err).Str("book_id", string(bookID)).Int("events", len(events)).
			Msg("Failed to publish events, log remains authoritative")
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
