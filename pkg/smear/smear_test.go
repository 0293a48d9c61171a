package smear

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply_S5_BeforeWindow(t *testing.T) {
	got := Apply(1443142307961555444, 36e9, 37e9, 1483228836e9, 1483293836e9, 1)
	assert.EqualValues(t, 1443142271961555444, got)
}

func TestApply_S6_InsideWindow(t *testing.T) {
	got := Apply(1483261336000000000, 36e9, 37e9, 1483228836e9, 1483293836e9, 1)
	assert.EqualValues(t, 1483261299500000000, got)
}

func TestApply_S7_AfterWindow(t *testing.T) {
	got := Apply(1714142307961569530, 36e9, 37e9, 1483228836e9, 1483293836e9, 1)
	assert.EqualValues(t, 1714142270961569530, got)
}

func TestApply_S8_NegativeLeap(t *testing.T) {
	const start = 1893456037e9
	const end = 1893521037e9
	got := Apply(1893488537000000000, 37e9, 36e9, start, end, -1)
	assert.EqualValues(t, 1893488500500000000, got)
}

func TestApply_MonotonicForPositiveLeap(t *testing.T) {
	const start, end = 1000_000_000_000, 2000_000_000_000
	prev := Apply(start-1, 36e9, 37e9, start, end, 1)
	step := uint64(SmearStepNS)
	for tNS := uint64(start); tNS <= end+1; tNS += step {
		cur := Apply(tNS, 36e9, 37e9, start, end, 1)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestApply_JumpAtBoundaries(t *testing.T) {
	const start, end = 1000_000_000_000, 2000_000_000_000
	atStart := Apply(start, 36e9, 37e9, start, end, 1)
	assert.EqualValues(t, start-36e9, atStart)

	afterEnd := Apply(end+1, 36e9, 37e9, start, end, 1)
	assert.EqualValues(t, end+1-37e9, afterEnd)
}

func TestApplyDefault_FallbackOffset(t *testing.T) {
	got := ApplyDefault(1714142307961569530)
	assert.EqualValues(t, 1714142270961569530, got)
}
