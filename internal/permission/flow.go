package permission

import (
	"context"
	"errors"
	"sync"
	"time"

	"smskit/internal/constants"
	"smskit/internal/logger"
	apperrors "smskit/pkg/errors"
	"smskit/pkg/metrics"
)

const (
	outcomeGranted    = "granted"
	outcomeDenied     = "denied"
	outcomeNoActivity = "no_activity"
	outcomePending    = "pending"
	outcomeTimeout    = "timeout"
	outcomeCancelled  = "cancelled"
	outcomeError      = "error"
)

// Flow runs permission requests. At most one request is outstanding; a second
// one is rejected with ErrRequestPending.
type Flow struct {
	binding    *Binding
	permission string
	timeout    time.Duration
	logger     logger.Logger

	mu      sync.Mutex
	pending *Handle
}

func NewFlow(binding *Binding, permission string, timeout time.Duration, log logger.Logger) *Flow {
	if permission == "" {
		permission = constants.DefaultPermissionName
	}
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &Flow{
		binding:    binding,
		permission: permission,
		timeout:    timeout,
		logger:     log,
	}
}

// Request prompts the attached host and blocks until the decision, the
// request timeout, or ctx is done.
func (f *Flow) Request(ctx context.Context) (State, error) {
	host, ok := f.binding.Current()
	if !ok {
		metrics.IncPermissionRequest(outcomeNoActivity)
		return "", apperrors.ErrNoActiveContext
	}

	if !host.RuntimePermissions() {
		metrics.IncPermissionRequest(outcomeGranted)
		return Granted, nil
	}

	h, err := f.acquire()
	if err != nil {
		metrics.IncPermissionRequest(outcomePending)
		return "", err
	}
	defer f.release(h)

	f.logger.InfowCtx(ctx, "Permission request started",
		"request_id", h.ID(),
		"permission", h.Permission(),
	)

	if err := host.Prompt(ctx, h); err != nil {
		metrics.IncPermissionRequest(outcomeError)
		return "", apperrors.ErrServiceUnavailable.WithCause(err).WithDetail("request_id", h.ID())
	}

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	select {
	case <-h.Done():
		state := h.State()
		if state == Granted {
			metrics.IncPermissionRequest(outcomeGranted)
		} else {
			metrics.IncPermissionRequest(outcomeDenied)
		}
		f.logger.InfowCtx(ctx, "Permission request completed",
			"request_id", h.ID(),
			"state", state,
		)
		return state, nil
	case <-timer.C:
		metrics.IncPermissionRequest(outcomeTimeout)
		f.logger.WarnwCtx(ctx, "Permission request timed out",
			"request_id", h.ID(),
			"timeout", f.timeout,
		)
		return "", apperrors.ErrTimeout.WithDetail("request_id", h.ID())
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metrics.IncPermissionRequest(outcomeTimeout)
			return "", apperrors.ErrTimeout.WithCause(ctx.Err()).WithDetail("request_id", h.ID())
		}
		metrics.IncPermissionRequest(outcomeCancelled)
		return "", ctx.Err()
	}
}

// Resolve delivers a decision for the outstanding request with the given id.
func (f *Flow) Resolve(ctx context.Context, id string, granted bool) error {
	h, ok := f.Pending()
	if !ok || h.ID() != id {
		return apperrors.ErrUnknownRequest.WithDetail("request_id", id)
	}

	if host, attached := f.binding.Current(); attached {
		if rec, ok := host.(Recorder); ok {
			if err := rec.Record(ctx, granted); err != nil {
				return apperrors.ErrInternal.WithCause(err).WithDetail("request_id", id)
			}
		}
	}

	if !h.Complete(granted) {
		return apperrors.ErrUnknownRequest.WithDetail("request_id", id)
	}
	return nil
}

// Pending returns the outstanding request, if any.
func (f *Flow) Pending() (*Handle, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending, f.pending != nil
}

func (f *Flow) acquire() (*Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending != nil {
		return nil, apperrors.ErrRequestPending.WithDetail("request_id", f.pending.ID())
	}
	f.pending = newHandle(f.permission)
	return f.pending, nil
}

// release clears the slot and makes any late decision for h a no-op.
func (f *Flow) release(h *Handle) {
	h.Complete(false)

	f.mu.Lock()
	if f.pending == h {
		f.pending = nil
	}
	f.mu.Unlock()
}
