// Copyright (c) 2003-2004, Mark Borgerding
// Lots of modifications by Jean-Marc Valin
// Copyright (c) 2005-2007, Xiph.Org Foundation
// Copyright (c) 2008, Xiph.Org Foundation, CSIRO
// Go port
//
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
//
//   - Redistributions of source code must retain the above copyright notice,
//     this list of conditions and the following disclaimer.
//   - Redistributions in binary form must reproduce the above copyright notice,
//     this list of conditions and the following disclaimer in the
//     documentation and/or other materials provided with the distribution.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT OWNER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package celt

import "math"

// Mixed-radix FFT driving the inverse MDCT, after the KISS FFT used by
// libopus. The two decoder configurations factor the half-spectrum lengths
// as 480 = 5*4*4*3*2 (long blocks) and 60 = 5*4*3 (short blocks). Twiddles
// for every pass come from the shared length-480 root table in Mode.

// kissFFT holds one FFT configuration: the MDCT shift, the radix
// factorization, the digit-reversal permutation, and the MDCT pre-rotation
// trig table.
type kissFFT struct {
	shift   uint
	factors []int
	bitrev  []int
	trig    []float32
}

// newKissFFT precomputes the permutation and rotation tables for the given
// shift. bitrev reverses the mixed-radix digits of each index so the
// in-place passes of opusFFT produce natural order.
func newKissFFT(shift int, factors []int) *kissFFT {
	f := &kissFFT{
		shift:   uint(shift),
		factors: factors,
		bitrev:  make([]int, FrameSize/2>>shift),
		trig:    make([]float32, FrameSize>>shift),
	}

	for i := range f.bitrev {
		a := 1
		for _, radix := range f.factors {
			f.bitrev[i] = i%(a*radix)/a + radix*f.bitrev[i]
			a *= radix
		}
	}

	for i := range f.trig {
		theta := math.Pi * (float64(i) + 1.0/8.0) / float64(len(f.trig))
		f.trig[i] = float32(math.Cos(theta))
	}

	return f
}

// opusFFT runs the mixed-radix passes over x in place. x must already be in
// digit-reversed order. cw is the length-480 root table; pass strides are
// expressed relative to it so both configurations share one table.
func opusFFT(st *kissFFT, x []complex64, cw []complex64) {
	m2 := 1
	for i := len(st.factors) - 1; i >= 0; i-- {
		m := m2
		m2 *= st.factors[i]
		stride := (FrameSize / 2) / m2
		butterfly(x, st.factors[i], stride, m, stride>>st.shift, m2, cw)
	}
}

// butterfly applies one radix pass: each group of `factor` elements spaced m
// apart is twisted by the twiddles accumulated from earlier passes, then
// transformed by a direct small DFT whose roots are the (480/factor)-spaced
// entries of cw.
func butterfly(x []complex64, factor, s, m, n, mm int, cw []complex64) {
	a := make([]complex64, factor)
	t := make([]complex64, factor)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			base := i*mm + j
			for k := 0; k < factor; k++ {
				a[k] = x[base+k*m] * cw[k*j*s%(FrameSize/2)]
			}
			for k := 0; k < factor; k++ {
				var sum complex64
				for l := 0; l < factor; l++ {
					sum += a[l] * cw[(FrameSize/2)/factor*k*l%(FrameSize/2)]
				}
				t[k] = sum
			}
			for k := 0; k < factor; k++ {
				x[base+k*m] = t[k]
			}
		}
	}
}
