// Package plugin dispatches named method calls to the inbox operations.
package plugin

import (
	"context"
	"sort"
	"strings"
	"time"

	"smskit/internal/classifier"
	"smskit/internal/constants"
	"smskit/internal/logger"
	"smskit/internal/permission"
	"smskit/internal/sms"
	apperrors "smskit/pkg/errors"
	"smskit/pkg/logging"
	"smskit/pkg/metrics"
)

const (
	MethodGetPlatformVersion   = "getPlatformVersion"
	MethodCheckSmsPermission   = "checkSmsPermission"
	MethodRequestSmsPermission = "requestSmsPermission"
	MethodReadSms              = "readSms"
	MethodGetSimpleSms         = "getSimpleSms"
	MethodGetTransactionSms    = "getTransactionSms"
	MethodQuerySms             = "querySms"
	MethodClassifySms          = "classifySms"
)

var methods = map[string]bool{
	MethodGetPlatformVersion:   true,
	MethodCheckSmsPermission:   true,
	MethodRequestSmsPermission: true,
	MethodReadSms:              true,
	MethodGetSimpleSms:         true,
	MethodGetTransactionSms:    true,
	MethodQuerySms:             true,
	MethodClassifySms:          true,
}

// Methods lists the supported method names in sorted order.
func Methods() []string {
	out := make([]string, 0, len(methods))
	for m := range methods {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

type Plugin struct {
	messages        *sms.Service
	gate            *permission.Gate
	flow            *permission.Flow
	platformVersion string
	logger          logger.Logger
}

func New(messages *sms.Service, gate *permission.Gate, flow *permission.Flow, platformVersion string, log logger.Logger) *Plugin {
	return &Plugin{
		messages:        messages,
		gate:            gate,
		flow:            flow,
		platformVersion: platformVersion,
		logger:          log,
	}
}

// PlatformVersion formats the value getPlatformVersion reports, e.g.
// "Android 14".
func PlatformVersion(name, release string) string {
	return strings.TrimSpace(name + " " + release)
}

// Invoke runs method with args. Reads of the inbox require the Granted state
// and fail with ErrPermissionDenied otherwise, without touching the store.
// Unknown methods fail with ErrNotImplemented.
func (p *Plugin) Invoke(ctx context.Context, method string, args Args) (interface{}, error) {
	ctx = logging.WithMethod(ctx, method)
	start := time.Now()

	result, err := p.dispatch(ctx, method, args)

	label := method
	if !methods[method] {
		label = "unknown"
	}
	status := "ok"
	if err != nil {
		status = strings.ToLower(apperrors.Code(err))
		if status == "" {
			status = "error"
		}
	}
	metrics.ObserveMethodCall(label, status, time.Since(start))

	if err != nil {
		p.logger.InfowCtx(ctx, "Method call failed",
			"status", status,
			"error", err,
		)
		return nil, err
	}

	p.logger.DebugwCtx(ctx, "Method call completed",
		"duration", time.Since(start),
	)
	return result, nil
}

func (p *Plugin) dispatch(ctx context.Context, method string, args Args) (interface{}, error) {
	switch method {
	case MethodGetPlatformVersion:
		return p.platformVersion, nil

	case MethodCheckSmsPermission:
		return p.gate.Check(ctx).String(), nil

	case MethodRequestSmsPermission:
		state, err := p.flow.Request(ctx)
		if err != nil {
			return nil, err
		}
		return state.String(), nil

	case MethodReadSms:
		if err := p.requireGranted(ctx); err != nil {
			return nil, err
		}
		return p.messages.ReadAll(ctx), nil

	case MethodGetSimpleSms:
		limit, err := args.Int("limit", constants.DefaultLimit)
		if err != nil {
			return nil, err
		}
		if err := p.requireGranted(ctx); err != nil {
			return nil, err
		}
		return p.messages.ReadSimple(ctx, limit), nil

	case MethodGetTransactionSms:
		if err := p.requireGranted(ctx); err != nil {
			return nil, err
		}
		return p.messages.ReadTransactions(ctx), nil

	case MethodQuerySms:
		filter, err := args.String("filter")
		if err != nil {
			return nil, err
		}
		limit, err := args.Int("limit", constants.DefaultLimit)
		if err != nil {
			return nil, err
		}
		if err := p.requireGranted(ctx); err != nil {
			return nil, err
		}
		return p.messages.Query(ctx, filter, limit)

	case MethodClassifySms:
		body, err := args.String("body")
		if err != nil {
			return nil, err
		}
		verdict := classifier.Explain(body)
		metrics.IncClassified(verdict.IsTransaction)
		return verdict, nil

	default:
		return nil, apperrors.ErrNotImplemented.WithDetail("method", method)
	}
}

func (p *Plugin) requireGranted(ctx context.Context) error {
	if state := p.gate.Check(ctx); state != permission.Granted {
		return apperrors.ErrPermissionDenied.WithDetail("state", state.String())
	}
	return nil
}
