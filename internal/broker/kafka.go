package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"smskit/internal/config"
	"smskit/internal/constants"
	"smskit/internal/logger"
	"smskit/pkg/metrics"
	"smskit/pkg/models"
	"smskit/pkg/tracing"
)

type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		AllowAutoTopicCreation: true,
		Async:                  false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error {
	return p.PublishBatch(ctx, topic, []models.MessageEnvelope{msg})
}

// PublishBatch writes msgs in one request, keyed by envelope ID, with the
// trace context of ctx in the headers.
func (p *KafkaProducer) PublishBatch(ctx context.Context, topic string, msgs []models.MessageEnvelope) error {
	if len(msgs) == 0 {
		return nil
	}

	messages, err := encodeMessages(ctx, topic, msgs)
	if err != nil {
		return err
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, messages...)
	metrics.ObserveKafkaWriteDuration(constants.ServiceName, topic, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to write kafka messages: %w", err)
	}

	metrics.IncKafkaMessagesWritten(constants.ServiceName, topic, len(messages))
	p.logger.DebugwCtx(ctx, "Published messages",
		"topic", topic,
		"count", len(messages),
	)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

func encodeMessages(ctx context.Context, topic string, msgs []models.MessageEnvelope) ([]kafka.Message, error) {
	headers := tracing.InjectTraceContext(ctx, []kafka.Header{})
	now := time.Now()

	messages := make([]kafka.Message, 0, len(msgs))
	for i := range msgs {
		msg := msgs[i]
		if err := models.ValidateMessageEnvelope(&msg); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		body, err := json.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message: %w", err)
		}
		messages = append(messages, kafka.Message{
			Topic:   topic,
			Key:     []byte(msg.ID),
			Value:   body,
			Headers: headers,
			Time:    now,
		})
	}
	return messages, nil
}
