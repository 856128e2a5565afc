// Package export publishes transaction listings to the broker.
package export

import (
	"context"

	"smskit/internal/broker"
	"smskit/internal/classifier"
	"smskit/internal/constants"
	"smskit/internal/logger"
	"smskit/internal/sms"
	"smskit/pkg/logging"
	"smskit/pkg/metrics"
	"smskit/pkg/models"
	"smskit/pkg/tracing"
)

// TransactionExporter turns each transaction record into an envelope on
// topic. It implements sms.Exporter.
type TransactionExporter struct {
	producer broker.Producer
	topic    string
	logger   logger.Logger
}

func NewTransactionExporter(producer broker.Producer, topic string, log logger.Logger) *TransactionExporter {
	if topic == "" {
		topic = constants.DefaultExportTopic
	}
	return &TransactionExporter{
		producer: producer,
		topic:    topic,
		logger:   log,
	}
}

func (e *TransactionExporter) ExportTransactions(ctx context.Context, messages []sms.RawMessage) error {
	ctx, span := tracing.StartSpan(ctx, "export.transactions")

	envelopes := make([]models.MessageEnvelope, 0, len(messages))
	for _, msg := range messages {
		env := Envelope(ctx, msg)
		if err := models.ValidateRecordPayload(env); err != nil {
			tracing.EndSpan(span, err)
			metrics.ExportFailuresTotal.WithLabelValues(e.topic).Inc()
			return err
		}
		envelopes = append(envelopes, *env)
	}

	err := e.producer.PublishBatch(ctx, e.topic, envelopes)
	tracing.EndSpan(span, err)
	if err != nil {
		metrics.ExportFailuresTotal.WithLabelValues(e.topic).Inc()
		return err
	}

	e.logger.DebugwCtx(ctx, "Exported transaction messages",
		"topic", e.topic,
		"count", len(envelopes),
	)
	return nil
}

// Envelope wraps one record with its classification and the request ids
// carried by ctx.
func Envelope(ctx context.Context, msg sms.RawMessage) *models.MessageEnvelope {
	verdict := classifier.Explain(msg.Body)

	traceID := logging.GetTraceID(ctx)
	if traceID == "" {
		traceID = tracing.TraceID(ctx)
	}

	return models.NewMessageEnvelopeBuilder().
		WithSource(constants.EnvelopeSourceTransaction).
		WithPayload(map[string]interface{}{
			"address": msg.Address,
			"body":    msg.Body,
			"date":    msg.Date,
			"type":    msg.Type,
		}).
		WithTraceID(traceID).
		WithRequestID(logging.GetRequestID(ctx)).
		WithClassification(models.ClassificationInfo{
			Reason:  string(verdict.Reason),
			Keyword: verdict.Keyword,
			Amount:  verdict.Amount,
		}).
		Build()
}
