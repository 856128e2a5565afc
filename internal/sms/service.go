package sms

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"smskit/internal/classifier"
	"smskit/internal/constants"
	"smskit/internal/logger"
	"smskit/pkg/cel"
	apperrors "smskit/pkg/errors"
	"smskit/pkg/metrics"
	"smskit/pkg/tracing"
)

const (
	ModeFull        = "full"
	ModeSimple      = "simple"
	ModeTransaction = "transaction"
	ModeQuery       = "query"
)

// Service implements the listing modes over a Source. Listings never fail:
// a source error yields an empty result.
type Service struct {
	source        Source
	exporter      Exporter
	exportTimeout time.Duration
	exports       sync.WaitGroup
	evaluator     *cel.Evaluator
	maxLimit      int
	logger        logger.Logger
}

type Option func(*Service)

func WithExporter(e Exporter) Option {
	return func(s *Service) {
		s.exporter = e
	}
}

// WithExportTimeout bounds each background export. Zero or less keeps the
// default.
func WithExportTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.exportTimeout = d
		}
	}
}

// WithMaxLimit bounds caller-supplied limits. Zero or less leaves them
// unbounded.
func WithMaxLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

func NewService(source Source, log logger.Logger, opts ...Option) (*Service, error) {
	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return nil, err
	}

	s := &Service{
		source:        source,
		exportTimeout: constants.DefaultExportTimeout,
		evaluator:     evaluator,
		logger:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NormalizeLimit maps a caller limit to a row cap. A negative limit means no
// cap, and zero yields no rows. The default applies only when the caller
// omits the limit, which is resolved before this point.
func (s *Service) NormalizeLimit(limit int) int {
	if limit < 0 {
		limit = constants.UnboundedRowCap
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// ReadAll returns up to 100 newest messages as full records.
func (s *Service) ReadAll(ctx context.Context) []RawMessage {
	rows := s.fetch(ctx, ModeFull, constants.FullListingRowCap)

	result := make([]RawMessage, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.Message())
	}

	metrics.AddMessagesReturned(ModeFull, len(result))
	return result
}

// ReadSimple returns up to limit newest messages as simplified records.
func (s *Service) ReadSimple(ctx context.Context, limit int) []SimplifiedMessage {
	rows := s.fetch(ctx, ModeSimple, s.NormalizeLimit(limit))

	result := make([]SimplifiedMessage, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.Simplified())
	}

	metrics.AddMessagesReturned(ModeSimple, len(result))
	return result
}

// ReadTransactions scans up to 500 newest messages and keeps the ones the
// classifier accepts, in source order. Export happens in the background and
// never delays the listing.
func (s *Service) ReadTransactions(ctx context.Context) []RawMessage {
	rows := s.fetch(ctx, ModeTransaction, constants.TransactionListingRowCap)

	result := make([]RawMessage, 0)
	for _, row := range rows {
		msg := row.Message()
		ok := classifier.Classify(msg.Body)
		metrics.IncClassified(ok)
		if ok {
			result = append(result, msg)
		}
	}

	metrics.AddMessagesReturned(ModeTransaction, len(result))
	s.export(ctx, result)
	return result
}

// Query scans up to limit newest messages and keeps the ones matching a CEL
// filter over address, body, date, type and is_transaction. Only an invalid
// expression is an error.
func (s *Service) Query(ctx context.Context, expression string, limit int) ([]RawMessage, error) {
	filter, err := s.evaluator.CompileFilter(expression)
	if err != nil {
		return nil, apperrors.ErrValidation.WithCause(err).WithDetail("filter", expression)
	}

	rows := s.fetch(ctx, ModeQuery, s.NormalizeLimit(limit))

	result := make([]RawMessage, 0)
	for _, row := range rows {
		msg := row.Message()
		matched, err := filter.Match(ctx, cel.MessageVars{
			Address:       msg.Address,
			Body:          msg.Body,
			Date:          msg.Date,
			Type:          msg.Type,
			IsTransaction: classifier.Classify(msg.Body),
		})
		if err != nil {
			s.logger.DebugwCtx(ctx, "Filter evaluation failed, skipping message",
				"filter", expression,
				"error", err,
			)
			continue
		}
		if matched {
			result = append(result, msg)
		}
	}

	metrics.AddMessagesReturned(ModeQuery, len(result))
	return result, nil
}

func (s *Service) fetch(ctx context.Context, mode string, rowCap int) []Row {
	if rowCap <= 0 {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "sms.fetch",
		attribute.String("sms.mode", mode),
		attribute.Int("sms.row_cap", rowCap),
		attribute.String("sms.source", s.source.Name()),
	)

	start := time.Now()
	rows, err := s.source.QueryMessages(ctx, rowCap)
	duration := time.Since(start)
	tracing.EndSpan(span, err)

	if err != nil {
		metrics.ObserveSourceQuery(s.source.Name(), "error", duration)
		metrics.FallbackUsageTotal.WithLabelValues("sms", "empty_result", "source_error").Inc()
		s.logger.WarnwCtx(ctx, "Message source query failed, returning empty result",
			"source", s.source.Name(),
			"mode", mode,
			"error", err,
		)
		return nil
	}

	metrics.ObserveSourceQuery(s.source.Name(), "success", duration)
	if len(rows) > rowCap {
		rows = rows[:rowCap]
	}
	return rows
}

// export hands messages to the exporter on its own goroutine. The export
// context keeps the request's values but not its cancellation, and carries
// its own deadline.
func (s *Service) export(ctx context.Context, messages []RawMessage) {
	if s.exporter == nil || len(messages) == 0 {
		return
	}

	batch := slices.Clone(messages)
	exportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.exportTimeout)

	s.exports.Add(1)
	go func() {
		defer s.exports.Done()
		defer cancel()

		if err := s.exporter.ExportTransactions(exportCtx, batch); err != nil {
			s.logger.WarnwCtx(exportCtx, "Transaction export failed",
				"count", len(batch),
				"error", err,
			)
		}
	}()
}

// Close waits for background exports to finish, or for ctx to end.
func (s *Service) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.exports.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
