package celt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBitexactCosKnownValues(t *testing.T) {
	assert.Equal(t, int16(32767), bitexactCos(0))
	assert.Equal(t, int16(23171), bitexactCos(8192))
	assert.Equal(t, int16(0), bitexactCos(16384))
}

func TestBitexactCosMonotone(t *testing.T) {
	prev := bitexactCos(0)
	for x := int16(1); x <= 16384; x++ {
		cur := bitexactCos(x)
		require.Less(t, cur, prev, "x=%d", x)
		prev = cur
	}
}

func TestBitexactLog2TanKnownValues(t *testing.T) {
	assert.Equal(t, int32(0), bitexactLog2Tan(16384, 16384))
	assert.Equal(t, int32(-32768), bitexactLog2Tan(0, 16384))
	assert.Equal(t, int32(32768), bitexactLog2Tan(16384, 0))
}

func TestBitexactLog2TanAntisymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := int32(rapid.IntRange(1, 32767).Draw(t, "a"))
		b := int32(rapid.IntRange(1, 32767).Draw(t, "b"))
		assert.Equal(t, bitexactLog2Tan(a, b), -bitexactLog2Tan(b, a))
	})
}

func TestHaar1IsInvolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stride := rapid.SampledFrom([]int{1, 2, 4, 8}).Draw(t, "stride")
		pairs := rapid.IntRange(1, 16).Draw(t, "pairs")
		n := stride * 2 * pairs
		x := make([]float32, n)
		for i := range x {
			x[i] = float32(rapid.Float64Range(-4, 4).Draw(t, "v"))
		}
		orig := append([]float32(nil), x...)

		haar1(x, stride)
		haar1(x, stride)
		for i := range x {
			assert.InDelta(t, orig[i], x[i], 1e-5)
		}
	})
}

func TestHadamardInterleaveRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stride := rapid.SampledFrom([]int{1, 2, 4, 8, 16}).Draw(t, "stride")
		n0 := rapid.IntRange(1, 12).Draw(t, "n0")
		hadamard := rapid.Bool().Draw(t, "hadamard")
		x := make([]float32, stride*n0)
		for i := range x {
			x[i] = float32(i + 1)
		}
		orig := append([]float32(nil), x...)

		deinterleaveHadamard(x, stride, hadamard)
		interleaveHadamard(x, stride, hadamard)
		assert.Equal(t, orig, x)
	})
}

func TestStereoMergePreservesEnergy(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(4, 64).Draw(t, "n")
		x := make([]float32, n)
		y := make([]float32, n)
		for i := range x {
			x[i] = float32(rapid.Float64Range(-1, 1).Draw(t, "x"))
			y[i] = float32(rapid.Float64Range(-1, 1).Draw(t, "y"))
		}
		renormalise(x, 1.0)
		renormalise(y, 0.7)
		mid := float32(0.9)

		stereoMerge(x, y, mid)

		// Both outputs are renormalised to unit energy, so the merge
		// preserves total energy at 2 regardless of the input split.
		var out float64
		for i := range x {
			out += float64(x[i])*float64(x[i]) + float64(y[i])*float64(y[i])
		}
		assert.InDelta(t, 2.0, out, 1e-3)
	})
}

func TestStereoMergeZeroSideCopiesMid(t *testing.T) {
	x := []float32{0.5, -0.5, 0.5, -0.5}
	y := []float32{0, 0, 0, 0}
	stereoMerge(x, y, 1.0)
	assert.Equal(t, x, y)
}

func TestComputeQnClamped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		width := rapid.IntRange(1, 22).Draw(t, "width")
		n := rapid.IntRange(2, 176).Draw(t, "n")
		b := rapid.IntRange(0, 1<<14).Draw(t, "b")
		lm := rapid.IntRange(0, 3).Draw(t, "lm")
		qn := computeQn(width, n, b, lm)
		require.LessOrEqual(t, qn, 256)
		require.Equal(t, 0, qn%2)
	})
}

func TestFoldingEstimateNoSource(t *testing.T) {
	masks := make([]uint8, 2*MaxBands)
	xcm, ycm, lowband := foldingEstimate(0, masks, spreadNormal, 0, 8, false)
	assert.Equal(t, -1, lowband)
	assert.Equal(t, uint8(1), xcm)
	assert.Equal(t, uint8(1), ycm)

	xcm, ycm, lowband = foldingEstimate(0, masks, spreadNormal, 0, 8, true)
	assert.Equal(t, -1, lowband)
	assert.Equal(t, uint8(255), xcm)
	assert.Equal(t, uint8(255), ycm)

	// Aggressive spreading without a TF cut disables folding too.
	xcm, _, lowband = foldingEstimate(5, masks, spreadAggressive, 0, 8, false)
	assert.Equal(t, -1, lowband)
	assert.Equal(t, uint8(1), xcm)
}

func TestFoldingEstimateAccumulatesMasks(t *testing.T) {
	masks := make([]uint8, 2*MaxBands)
	masks[4*2] = 0x0F   // band 4, left
	masks[4*2+1] = 0xF0 // band 4, right
	n := 8 * bandWidth(4)
	xcm, ycm, lowband := foldingEstimate(4, masks, spreadNormal, 0, n, true)
	assert.Equal(t, 8*eBands[4]-n, lowband)
	assert.Equal(t, uint8(0x0F), xcm)
	assert.Equal(t, uint8(0xF0), ycm)
}

func TestWindowPowerComplementary(t *testing.T) {
	m := NewMode()
	w := m.Window()
	for i := 0; i < Overlap/2; i++ {
		sum := float64(w[i])*float64(w[i]) + float64(w[Overlap-1-i])*float64(w[Overlap-1-i])
		assert.InDelta(t, 1.0, sum, 1e-5, "i=%d", i)
	}
	assert.True(t, math.Abs(float64(w[0])) < 1e-3)
	assert.InDelta(t, 1.0, float64(w[Overlap-1]), 1e-5)
}
