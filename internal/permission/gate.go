package permission

import (
	"context"

	"smskit/pkg/metrics"
)

type Gate struct {
	binding *Binding
}

func NewGate(binding *Binding) *Gate {
	return &Gate{binding: binding}
}

// Check reports the current state. Without an attached host the state is
// NotDetermined. A withheld permission the user already refused reports
// Denied.
func (g *Gate) Check(ctx context.Context) State {
	state := g.check(ctx)
	metrics.IncPermissionCheck(state.String())
	return state
}

func (g *Gate) check(ctx context.Context) State {
	host, ok := g.binding.Current()
	if !ok {
		return NotDetermined
	}
	if host.PermissionGranted(ctx) {
		return Granted
	}
	if host.ShouldShowRationale(ctx) {
		return Denied
	}
	return NotDetermined
}
