package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// newBackOff builds the jittered exponential schedule for policy. A zero
// MaxElapsedTime leaves the elapsed time unbounded.
func newBackOff(policy Policy) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.InitialInterval
	exp.MaxInterval = policy.MaxInterval
	exp.Multiplier = policy.Multiplier
	exp.MaxElapsedTime = policy.MaxElapsedTime
	return exp
}

// NominalDelay is the delay before the attempt after the given one, ignoring
// jitter. It is what retry callbacks report.
func NominalDelay(attempt int, policy Policy) time.Duration {
	delay := float64(policy.InitialInterval) * math.Pow(policy.Multiplier, float64(attempt))
	if delay > float64(policy.MaxInterval) {
		return policy.MaxInterval
	}
	return time.Duration(delay)
}
