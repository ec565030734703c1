package stun

import (
	"errors"
	"math"
)

var (
	// ErrInvalidInput marks caller data that can never produce a meaningful
	// result (negative damage, non-positive life, negative ratios). It is not
	// transient and must not be retried.
	ErrInvalidInput = errors.New("invalid stun input")

	// ErrUnknownTarget is returned by mutations that refuse to create a meter.
	ErrUnknownTarget = errors.New("unknown stun target")
)

// IsUnreachable reports whether a hit count is the "never" sentinel returned
// when a hit contributes nothing.
func IsUnreachable(hits float64) bool {
	return math.IsInf(hits, 1)
}

// Finite reports whether v is neither NaN nor ±Inf.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
