package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/wildlife-sightings-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes raw sighting records to a topic. The service itself only
// consumes; the writer exists for fixture seeding (cmd/genmock) and the
// integration suite, which play the role of the upstream scrapers.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the given topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishRaw serializes and publishes raw sighting records in a single
// WriteMessages call.
func (w *Writer) PublishRaw(ctx context.Context, records []domain.RawSightingJSON) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeRawRecord(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeRawRecord marshals a raw sighting record into a Kafka message,
// keyed by record id so replays of the same report land on one partition.
func serializeRawRecord(rec domain.RawSightingJSON) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize raw sighting: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source_type", Value: []byte(rec.SourceType)},
		},
	}, nil
}
