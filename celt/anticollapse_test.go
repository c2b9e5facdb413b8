package celt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAntiCollapseFillsMissingBlock(t *testing.T) {
	x := make([]float32, 2*FrameSize)
	band := 12
	n0 := bandWidth(band) // 4 base bins, 32 samples
	start := 8 * eBands[band]

	// A unit-norm band concentrated in the non-collapsed blocks.
	for j := 0; j < n0; j++ {
		for k := 0; k < 8; k++ {
			if k != 3 {
				x[start+j*8+k] = 1
			}
		}
	}
	renormalise(x[start:start+8*n0], 1.0)

	var masks [2 * MaxBands]uint8
	for i := range masks {
		masks[i] = 0xFF
	}
	masks[band*2] = 0xFF &^ (1 << 3) // left channel, block 3 collapsed

	logE := make([]float32, 2*MaxBands)
	prev1 := make([]float32, 2*MaxBands)
	prev2 := make([]float32, 2*MaxBands)
	pulses := make([]int, MaxBands)
	pulses[band] = 8 * n0 * 8

	antiCollapse(x, masks[:], logE, prev1, prev2, pulses, 42)

	// Block 3 now carries noise at a single magnitude r.
	sub := make([]float32, 0, n0)
	for j := 0; j < n0; j++ {
		sub = append(sub, x[start+j*8+3])
	}
	r := float32(math.Abs(float64(sub[0])))
	require.NotZero(t, r)
	for i, v := range sub {
		assert.InDelta(t, float64(r), math.Abs(float64(v)), 1e-6, "sample %d", i)
	}

	// The band is renormalised back to unit energy.
	assert.InDelta(t, 1.0, float64(innerProduct(x[start:start+8*n0], x[start:start+8*n0])), 1e-4)
}

func TestAntiCollapseLeavesFullBandsAlone(t *testing.T) {
	x := make([]float32, 2*FrameSize)
	for i := range x {
		x[i] = 0.25
	}
	orig := append([]float32(nil), x...)

	var masks [2 * MaxBands]uint8
	for i := range masks {
		masks[i] = 0xFF
	}
	logE := make([]float32, 2*MaxBands)
	pulses := make([]int, MaxBands)
	antiCollapse(x, masks[:], logE, logE, logE, pulses, 7)
	assert.Equal(t, orig, x)
}
