// Package broker publishes envelopes to the message broker.
package broker

import (
	"context"

	"smskit/pkg/models"
)

type Producer interface {
	Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error
	PublishBatch(ctx context.Context, topic string, msgs []models.MessageEnvelope) error
	Close() error
}
