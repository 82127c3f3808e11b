package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/stadium-attendance-service/internal/config"
	"github.com/couchcryptid/stadium-attendance-service/internal/domain"
)

// Writer produces prediction events to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured predictions topic.
// Each Publish is a single event written on the request path, so batches
// flush as soon as they hold one message.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaPredictionsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes a prediction and writes it keyed by the home team, so
// events for one stadium stay ordered within a partition.
func (w *Writer) Publish(ctx context.Context, p domain.Prediction) error {
	msg, err := serializeToMessage(p)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write prediction event: %w", err)
	}
	w.logger.Debug("prediction event published", "id", p.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Prediction into a Kafka message.
func serializeToMessage(p domain.Prediction) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(p.HomeTeam),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "prediction_id", Value: []byte(p.ID)},
			{Key: "model_variant", Value: []byte(p.ModelVariant)},
			{Key: "predicted_at", Value: []byte(p.PredictedAt.Format(time.RFC3339))},
		},
	}, nil
}
