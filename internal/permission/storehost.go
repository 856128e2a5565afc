package permission

import (
	"context"

	"smskit/internal/constants"
	"smskit/internal/logger"
)

// StoreHost is a Host whose grant state lives in a Store. Prompts are decided
// by Flow.Resolve unless an auto decision is configured.
type StoreHost struct {
	store              Store
	permission         string
	platform           string
	runtimePermissions bool
	autoDecision       string
	logger             logger.Logger
}

type StoreHostOptions struct {
	Permission         string
	Platform           string
	RuntimePermissions bool
	// AutoDecision is "", "grant" or "deny".
	AutoDecision string
}

func NewStoreHost(store Store, opts StoreHostOptions, log logger.Logger) *StoreHost {
	if opts.Permission == "" {
		opts.Permission = constants.DefaultPermissionName
	}
	return &StoreHost{
		store:              store,
		permission:         opts.Permission,
		platform:           opts.Platform,
		runtimePermissions: opts.RuntimePermissions,
		autoDecision:       opts.AutoDecision,
		logger:             log,
	}
}

func (h *StoreHost) grant(ctx context.Context) Grant {
	g, err := h.store.Get(ctx, h.permission)
	if err != nil {
		h.logger.WarnwCtx(ctx, "Failed to read permission state",
			"permission", h.permission,
			"error", err,
		)
		return Grant{}
	}
	return g
}

func (h *StoreHost) PermissionGranted(ctx context.Context) bool {
	if !h.runtimePermissions {
		return true
	}
	return h.grant(ctx).Granted
}

func (h *StoreHost) ShouldShowRationale(ctx context.Context) bool {
	g := h.grant(ctx)
	return !g.Granted && g.Rationale
}

func (h *StoreHost) RuntimePermissions() bool {
	return h.runtimePermissions
}

func (h *StoreHost) Platform() string {
	return h.platform
}

// Prompt completes immediately when the permission is already held or an
// auto decision is set. Otherwise the handle stays open for Flow.Resolve.
func (h *StoreHost) Prompt(ctx context.Context, handle *Handle) error {
	if h.PermissionGranted(ctx) {
		handle.Complete(true)
		return nil
	}

	switch h.autoDecision {
	case constants.AutoDecisionGrant:
		if err := h.Record(ctx, true); err != nil {
			return err
		}
		handle.Complete(true)
	case constants.AutoDecisionDeny:
		if err := h.Record(ctx, false); err != nil {
			return err
		}
		handle.Complete(false)
	default:
		h.logger.InfowCtx(ctx, "Awaiting permission decision",
			"request_id", handle.ID(),
			"permission", handle.Permission(),
		)
	}
	return nil
}

// Record persists a decision. A refusal raises the rationale flag so later
// checks report denied.
func (h *StoreHost) Record(ctx context.Context, granted bool) error {
	return h.store.Set(ctx, h.permission, Grant{
		Granted:   granted,
		Rationale: !granted,
	})
}
