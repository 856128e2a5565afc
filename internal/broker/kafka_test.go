package broker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smskit/internal/config"
	"smskit/internal/logger"
	"smskit/pkg/models"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(config.BrokerConfig{Type: "kafka", Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}}}, logger.NopLogger())
	require.NoError(t, err)
	require.NoError(t, p.Close())

	_, err = NewProducer(config.BrokerConfig{Type: "nats"}, logger.NopLogger())
	assert.Error(t, err)
}

func TestEncodeMessages(t *testing.T) {
	env := models.NewMessageEnvelopeBuilder().
		WithID("id-1").
		WithSource("smskit.transactions").
		WithPayload(map[string]interface{}{"body": "INR 5 credited"}).
		Build()

	msgs, err := encodeMessages(context.Background(), "transaction_sms", []models.MessageEnvelope{*env})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	assert.Equal(t, "transaction_sms", msgs[0].Topic)
	assert.Equal(t, []byte("id-1"), msgs[0].Key)

	var decoded models.MessageEnvelope
	require.NoError(t, json.Unmarshal(msgs[0].Value, &decoded))
	assert.Equal(t, "INR 5 credited", decoded.Payload["body"])
}

func TestEncodeMessages_RejectsInvalidEnvelope(t *testing.T) {
	_, err := encodeMessages(context.Background(), "t", []models.MessageEnvelope{{Source: "s"}})
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "id", vErr.Field)
}

func TestPublishBatch_Empty(t *testing.T) {
	p := NewKafkaProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, logger.NopLogger())
	defer p.Close()
	assert.NoError(t, p.PublishBatch(context.Background(), "t", nil))
}
