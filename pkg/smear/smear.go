// Package smear converts a TAI nanosecond instant to a continuous UTC
// nanosecond instant, absorbing a leap second's discontinuity into a
// linear ramp across a configured smear window.
package smear

// SmearStepNS is the number of nanoseconds of TAI time that accrue one
// nanosecond of smear; one nanosecond of smear is absorbed every 65
// microseconds.
const SmearStepNS = 65_000

// UTCTAIOffsetNS is the fallback UTC-TAI offset applied when the
// published ClockData carries no tzdata (both offsets are zero): -37
// seconds, expressed as a signed nanosecond delta to add to the TAI
// instant.
const UTCTAIOffsetNS int64 = -37 * 1_000_000_000

// Apply converts TAI nanosecond instant t to UTC given the pre/post leap
// offsets (absolute, non-negative nanosecond magnitudes), the smear
// window [start, end] in TAI nanoseconds, and multiplier (+1 for a
// positive leap second, -1 for a negative one).
func Apply(t, offsetPreNS, offsetPostNS, smearStartNS, smearEndNS uint64, multiplier int64) uint64 {
	switch {
	case t < smearStartNS:
		return t - offsetPreNS
	case t > smearEndNS:
		return t - offsetPostNS
	default:
		steps := int64((t - smearStartNS) / SmearStepNS)
		smear := multiplier * steps
		return uint64(int64(t) - int64(offsetPreNS) - smear)
	}
}

// ApplyDefault applies the fixed UTCTAIOffsetNS fallback used when the
// daemon has not published tzdata information.
func ApplyDefault(t int64) uint64 {
	return uint64(t + UTCTAIOffsetNS)
}
