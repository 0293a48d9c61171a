// Package wou computes the Window of Uncertainty and assembles a
// TrueTime interval around a PHC (or sysclock-extrapolated) sample.
package wou

import "math"

// NanosecondsPerSecond converts between seconds and nanoseconds in the
// holdover-growth calculation.
const NanosecondsPerSecond = 1_000_000_000

// TrueTime is the interval guaranteed to bracket the instant of the
// gettime call, under the daemon's correctness model.
type TrueTime struct {
	EarliestNS uint64
	LatestNS   uint64
}

// WindowOfUncertainty returns eb + h*seconds, truncated toward zero, per
// spec scenario S1 (wou(0, 172, 50.5) = 172, wou(10, 172, 50.5) = 677).
func WindowOfUncertainty(seconds float64, errorBoundNS uint64, holdoverRateNS float64) uint64 {
	h := holdoverRateNS * seconds
	return errorBoundNS + uint64(math.Trunc(h))
}

// Assemble builds the symmetric TrueTime interval around centerNS given
// the already-computed window of uncertainty half-width.
func Assemble(centerNS uint64, wouNS uint64) TrueTime {
	return TrueTime{
		EarliestNS: centerNS - wouNS,
		LatestNS:   centerNS + wouNS,
	}
}
