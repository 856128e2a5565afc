package source

import (
	"context"
	"fmt"

	"smskit/internal/config"
	"smskit/internal/sms"
	"smskit/pkg/circuitbreaker"
)

// BreakerSource fails fast while the wrapped source keeps erroring.
type BreakerSource struct {
	source sms.Source
	cb     *circuitbreaker.Wrapper
}

// NewBreakerSource wraps src, or returns it unchanged when the breaker is
// disabled.
func NewBreakerSource(src sms.Source, cfg config.CircuitBreakerConfig) sms.Source {
	if !cfg.Enabled {
		return src
	}
	return &BreakerSource{
		source: src,
		cb:     circuitbreaker.NewWrapper(circuitbreaker.FromConfig("source-"+src.Name(), cfg)),
	}
}

func (s *BreakerSource) Name() string {
	return s.source.Name()
}

func (s *BreakerSource) QueryMessages(ctx context.Context, rowCap int) ([]sms.Row, error) {
	result, err := s.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return s.source.QueryMessages(ctx, rowCap)
	})

	s.cb.RecordRequest(err == nil)

	if err != nil {
		if s.cb.IsOpen() {
			return nil, fmt.Errorf("circuit breaker is open for %s: %w", s.cb.Name(), err)
		}
		return nil, err
	}

	rows, ok := result.([]sms.Row)
	if !ok {
		return nil, fmt.Errorf("source returned invalid result type")
	}

	return rows, nil
}

func (s *BreakerSource) State() string {
	return s.cb.State().String()
}
