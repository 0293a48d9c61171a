package wou

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowOfUncertainty_S1(t *testing.T) {
	assert.EqualValues(t, 172, WindowOfUncertainty(0, 172, 50.5))
	assert.EqualValues(t, 677, WindowOfUncertainty(10, 172, 50.5))
}

func TestWindowOfUncertainty_S2_HappyPath(t *testing.T) {
	const (
		ingress = 1647269082943150996
		phc     = 1647269091803102957
		eb      = 172
		h       = 50.5
	)
	seconds := float64(phc-ingress) / NanosecondsPerSecond
	wouNS := WindowOfUncertainty(seconds, eb, h)

	tt := Assemble(phc, wouNS)
	assert.EqualValues(t, 1647269091803102338, tt.EarliestNS)
	assert.EqualValues(t, 1647269091803103576, tt.LatestNS)
}

func TestWindowOfUncertainty_S4_LargeHoldover(t *testing.T) {
	const (
		ingress = 1647269082943150996
		phc     = 1647269091803102957 + 6*3600*NanosecondsPerSecond
		eb      = 1000
		h       = 50.5
	)
	seconds := float64(phc-ingress) / NanosecondsPerSecond
	wouNS := WindowOfUncertainty(seconds, eb, h)

	tt := Assemble(phc, wouNS)
	assert.InDelta(t, 2184494, tt.LatestNS-tt.EarliestNS, 1)
}

func TestAssemble_EarliestNeverExceedsLatest(t *testing.T) {
	tt := Assemble(1_000_000, 500)
	assert.LessOrEqual(t, tt.EarliestNS, tt.LatestNS)
	assert.EqualValues(t, 999500, tt.EarliestNS)
	assert.EqualValues(t, 1000500, tt.LatestNS)
}
