package celt

import "github.com/kaldmaer/gocelt/rangecoding"

// PVQ codeword counting and decoding per RFC 6716 Section 4.3.4.2.
//
// v(n, k) is the number of n-dimensional vectors of signed integer pulses
// with L1 norm exactly k. It satisfies
//
//	v(n, k) = v(n-1, k) + v(n, k-1) + v(n-1, k-1)
//
// with v(n, 0) = 1 and v(0, k) = 0 for k > 0. Entries that do not fit in 32
// bits are marked invalid rather than truncated; allocation never produces
// a pulse count whose codebook would need one.

// pvqTable is the precomputed v(n, k) triangle with explicit validity,
// distinct from a zero count.
type pvqTable struct {
	v  [][]uint32
	ok [][]bool
}

// newPVQTable builds the count table for all n, k below size.
func newPVQTable(size int) *pvqTable {
	t := &pvqTable{
		v:  make([][]uint32, size),
		ok: make([][]bool, size),
	}
	for n := range t.v {
		t.v[n] = make([]uint32, size)
		t.ok[n] = make([]bool, size)
	}

	t.v[0][0] = 1
	t.ok[0][0] = true
	for k := 1; k < size; k++ {
		t.v[0][k] = 0
		t.ok[0][k] = true
	}
	for n := 1; n < size; n++ {
		t.v[n][0] = 1
		t.ok[n][0] = true
		for k := 1; k < size; k++ {
			if !t.ok[n-1][k] || !t.ok[n][k-1] || !t.ok[n-1][k-1] {
				continue
			}
			sum := uint64(t.v[n-1][k]) + uint64(t.v[n][k-1]) + uint64(t.v[n-1][k-1])
			if sum > 0xFFFFFFFF {
				continue
			}
			t.v[n][k] = uint32(sum)
			t.ok[n][k] = true
		}
	}
	return t
}

// count returns v(n, k). Indexing an invalid entry is a programming bug in
// allocation, so it aborts.
func (t *pvqTable) count(n, k int) uint32 {
	if !t.ok[n][k] {
		panic("celt: PVQ codebook size not representable")
	}
	return t.v[n][k]
}

// valid reports whether v(n, k) fits in 32 bits.
func (t *pvqTable) valid(n, k int) bool {
	return n < len(t.ok) && k < len(t.ok[n]) && t.ok[n][k]
}

// decodePulses reads one PVQ codeword index as a uniform integer in
// [0, v(n, k)) and expands it into the pulse vector x.
func decodePulses(x []float32, k int, ec *rangecoding.Decoder, v *pvqTable) {
	i := ec.DecodeUniform(v.count(len(x), k))
	pulseVectorFromIndex(x, k, i, v)
}

// pulseVectorFromIndex deconstructs codeword index i into the signed pulse
// vector x with L1 norm k, dimension by dimension: the sign of each
// component is read off against the half-way point p, then pulses are
// peeled off while the residual index stays below p.
func pulseVectorFromIndex(x []float32, k int, i uint32, v *pvqTable) {
	n := len(x)
	for j := 0; j < n; j++ {
		p := uint32((uint64(v.count(n-j, k)) + uint64(v.count(n-j-1, k))) / 2)
		sgn := float32(1)
		if i >= p {
			sgn = -1
			i -= p
		}
		k0 := k
		p -= v.count(n-j-1, k)
		for p > i {
			k--
			p -= v.count(n-j-1, k)
		}
		x[j] = sgn * float32(k0-k)
		i -= p
	}
}
