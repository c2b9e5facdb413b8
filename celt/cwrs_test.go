package celt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPVQTableRecurrence(t *testing.T) {
	v := newPVQTable(176)
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 175).Draw(t, "n")
		k := rapid.IntRange(1, 175).Draw(t, "k")
		if !v.valid(n, k) {
			// Invalid entries must come from an overflowing sum, never
			// from a representable one.
			if v.valid(n-1, k) && v.valid(n, k-1) && v.valid(n-1, k-1) {
				sum := uint64(v.count(n-1, k)) + uint64(v.count(n, k-1)) + uint64(v.count(n-1, k-1))
				require.Greater(t, sum, uint64(0xFFFFFFFF))
			}
			return
		}
		require.Equal(t, uint64(v.count(n, k)),
			uint64(v.count(n-1, k))+uint64(v.count(n, k-1))+uint64(v.count(n-1, k-1)))
	})
}

func TestPVQTableBaseCases(t *testing.T) {
	v := newPVQTable(176)
	for n := 0; n < 176; n++ {
		require.True(t, v.valid(n, 0))
		assert.Equal(t, uint32(1), v.count(n, 0))
	}
	for k := 1; k < 176; k++ {
		require.True(t, v.valid(0, k))
		assert.Equal(t, uint32(0), v.count(0, k))
	}
	// Spot values from the closed-form small table.
	assert.Equal(t, uint32(2), v.count(1, 5))
	assert.Equal(t, uint32(8), v.count(2, 2))
	assert.Equal(t, uint32(18), v.count(3, 2))
	assert.Equal(t, uint32(146), v.count(3, 6))
}

// pulseIndexFromVector inverts pulseVectorFromIndex for round-trip testing:
// it rebuilds the codeword index from a pulse vector with L1 norm k.
func pulseIndexFromVector(x []float32, k int, v *pvqTable) uint32 {
	n := len(x)
	var i uint32
	for j := 0; j < n; j++ {
		pHalf := uint32((uint64(v.count(n-j, k)) + uint64(v.count(n-j-1, k))) / 2)
		m := int(x[j])
		if m < 0 {
			i += pHalf
			m = -m
		}
		p := pHalf - v.count(n-j-1, k)
		for t := 1; t <= m; t++ {
			p -= v.count(n-j-1, k-t)
		}
		i += p
		k -= m
	}
	return i
}

func TestPVQIndexRoundTripExhaustive(t *testing.T) {
	v := newPVQTable(176)
	n, k := 3, 2
	total := v.count(n, k)
	for i := uint32(0); i < total; i++ {
		x := make([]float32, n)
		pulseVectorFromIndex(x, k, i, v)

		l1 := 0
		for _, s := range x {
			l1 += absInt(int(s))
		}
		require.Equal(t, k, l1, "index %d", i)
		assert.Equal(t, i, pulseIndexFromVector(x, k, v), "index %d", i)
	}
}

func TestPVQIndexRoundTripRandom(t *testing.T) {
	v := newPVQTable(176)
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")
		k := rapid.IntRange(1, 16).Draw(t, "k")
		if !v.valid(n, k) {
			t.Skip()
		}
		i := uint32(rapid.Uint32Range(0, v.count(n, k)-1).Draw(t, "i"))

		x := make([]float32, n)
		pulseVectorFromIndex(x, k, i, v)

		l1 := 0
		for _, s := range x {
			l1 += absInt(int(s))
		}
		require.Equal(t, k, l1)
		require.Equal(t, i, pulseIndexFromVector(x, k, v))
	})
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
