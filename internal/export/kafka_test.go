package export

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smskit/internal/logger"
	"smskit/internal/sms"
	"smskit/pkg/logging"
	"smskit/pkg/models"
)

type fakeProducer struct {
	topic string
	msgs  []models.MessageEnvelope
	err   error
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error {
	return p.PublishBatch(ctx, topic, []models.MessageEnvelope{msg})
}

func (p *fakeProducer) PublishBatch(_ context.Context, topic string, msgs []models.MessageEnvelope) error {
	if p.err != nil {
		return p.err
	}
	p.topic = topic
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

var _ sms.Exporter = (*TransactionExporter)(nil)

func TestExportTransactions(t *testing.T) {
	producer := &fakeProducer{}
	exp := NewTransactionExporter(producer, "", logger.NopLogger())

	ctx := logging.WithRequestID(context.Background(), "req-1")
	err := exp.ExportTransactions(ctx, []sms.RawMessage{
		{Address: "VK-HDFCBK", Body: "Rs 500 debited", Date: 10, Type: 1},
		{Address: "SHOP", Body: "Pay ₹20", Date: 9, Type: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, "transaction_sms", producer.topic)
	require.Len(t, producer.msgs, 2)

	first := producer.msgs[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "smskit.transactions", first.Source)
	assert.Equal(t, "VK-HDFCBK", first.Payload["address"])
	assert.Equal(t, int64(10), first.Payload["date"])
	assert.Equal(t, "req-1", first.Metadata.RequestID)
	require.NotNil(t, first.Metadata.Classification)
	assert.Equal(t, "keyword", first.Metadata.Classification.Reason)
	assert.Equal(t, "debited", first.Metadata.Classification.Keyword)

	assert.NotEqual(t, first.ID, producer.msgs[1].ID)
}

func TestExportTransactions_Error(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	exp := NewTransactionExporter(producer, "custom", logger.NopLogger())

	err := exp.ExportTransactions(context.Background(), []sms.RawMessage{{Body: "paid"}})
	assert.Error(t, err)
}

func TestEnvelope_AmountReason(t *testing.T) {
	env := Envelope(context.Background(), sms.RawMessage{Body: "Pay ₹20"})
	require.NotNil(t, env.Metadata.Classification)
	// "₹" is itself a keyword, so the keyword path wins.
	assert.Equal(t, "keyword", env.Metadata.Classification.Reason)
}
