package celt

import (
	"math"

	"github.com/kaldmaer/gocelt/rangecoding"
)

// Band-space transforms shared by the recursive quantiser: Haar lifting
// between time resolutions, Hadamard (de)interleaving between time and
// frequency sample orders, and the mid/side to left/right merge.

// orderyTable gives the Hadamard-ordered block permutation for each stride;
// the slice for stride s is orderyTable[s-1 : 2*s-1].
var orderyTable = [31]int{
	0, 1, 0, 3, 0, 2, 1, 7, 0, 4, 3, 6, 1, 5, 2, 15, 0, 8, 7, 12,
	3, 11, 4, 14, 1, 9, 6, 13, 2, 10, 5,
}

// haar1 applies the orthonormal 2-point Haar butterfly to stride-interleaved
// pairs. It is its own inverse.
func haar1(x []float32, stride int) {
	const invSqrt2 = float32(math.Sqrt2 / 2)
	n0 := len(x) / stride
	for i := 0; i < stride; i++ {
		for j := 0; j < n0/2; j++ {
			tmp1 := invSqrt2 * x[stride*2*j+i]
			tmp2 := invSqrt2 * x[stride*(2*j+1)+i]
			x[stride*2*j+i] = tmp1 + tmp2
			x[stride*(2*j+1)+i] = tmp1 - tmp2
		}
	}
}

// interleaveHadamard converts from time-ordered back to frequency-ordered
// layout. With hadamard set, blocks are taken in the sequency order of
// orderyTable instead of linear order.
func interleaveHadamard(x []float32, stride int, hadamard bool) {
	y := make([]float32, len(x))
	n0 := len(x) / stride
	ordery := orderyTable[stride-1 : 2*stride-1]
	for i := 0; i < stride; i++ {
		src := i
		if hadamard {
			src = ordery[i]
		}
		for j := 0; j < n0; j++ {
			y[stride*j+i] = x[n0*src+j]
		}
	}
	copy(x, y)
}

// deinterleaveHadamard is the inverse of interleaveHadamard.
func deinterleaveHadamard(x []float32, stride int, hadamard bool) {
	y := make([]float32, len(x))
	n0 := len(x) / stride
	ordery := orderyTable[stride-1 : 2*stride-1]
	for i := 0; i < stride; i++ {
		dst := i
		if hadamard {
			dst = ordery[i]
		}
		for j := 0; j < n0; j++ {
			y[n0*dst+j] = x[stride*j+i]
		}
	}
	copy(x, y)
}

// stereoMerge converts a decoded (mid, side) pair into unit-norm left and
// right channels: (m*x - y, m*x + y) with each result renormalised by its
// own energy. Degenerate channels fall back to copying mid into both sides
// so malformed input cannot divide by zero.
func stereoMerge(x, y []float32, mid float32) {
	xp := innerProduct(x, y) * mid
	side := innerProduct(y, y)
	midE := mid * mid * innerProduct(x, x)
	el := float32(math.Sqrt(float64(midE + side - 2*xp)))
	er := float32(math.Sqrt(float64(midE + side + 2*xp)))
	if el < 6e-4 || er < 6e-4 {
		copy(y, x)
		return
	}
	for i := range x {
		l := mid * x[i]
		r := y[i]
		x[i] = (l - r) / el
		y[i] = (l + r) / er
	}
}

const qthetaOffset = 4

// computeQn yields the resolution of the theta quantiser for a split of n
// samples with b eighth-bits, capped at 256 steps.
func computeQn(width, n, b, lm int) int {
	pulseCap := log2Frac8(width) + lm*8
	offset := pulseCap/2 - qthetaOffset
	qb := b/(2*n-1) + offset
	half := math.Exp2(float64(qb)/8.0) / 2.0
	if half >= 128 {
		return 256
	}
	return minInt(2*int(math.Round(half)), 256)
}

// getTheta decodes the split angle index. Mono single-block splits use a
// triangular PDF, multi-block splits a uniform one, and the stereo split a
// piecewise distribution concentrated near zero.
func getTheta(ec *rangecoding.Decoder, qn, b0 int, isStereo bool) int {
	if isStereo {
		const p0 = 3
		x0 := qn / 2
		ft := uint32(p0*(x0+1) + x0)
		fs := int(ec.Decode(ft))
		var itheta int
		if fs < (x0+1)*p0 {
			itheta = fs / p0
		} else {
			itheta = x0 + 1 + (fs - (x0+1)*p0)
		}
		var fl, fh int
		if itheta <= x0 {
			fl = p0 * itheta
			fh = p0 * (itheta + 1)
		} else {
			fl = (itheta - 1 - x0) + (x0+1)*p0
			fh = (itheta - x0) + (x0+1)*p0
		}
		ec.Update(uint32(fl), uint32(fh), ft)
		return itheta
	}

	if b0 > 1 {
		return int(ec.DecodeUniform(uint32(qn) + 1))
	}

	ft := (qn/2 + 1) * (qn/2 + 1)
	fm := int(ec.Decode(uint32(ft)))
	var itheta, fl, fs int
	if fm < qn*(qn/2+1)/4 {
		itheta = (isqrt(8*fm+1) - 1) / 2
		fs = itheta + 1
		fl = fs * (fs - 1) / 2
	} else {
		itheta = (2*(qn+1) - isqrt(8*(ft-fm-1)+1)) / 2
		fs = qn + 1 - itheta
		fl = ft - fs*(fs+1)/2
	}
	ec.Update(uint32(fl), uint32(fl+fs), uint32(ft))
	return itheta
}

// isqrt is the integer square root for the triangular PDF inversion.
func isqrt(x int) int {
	return int(math.Sqrt(float64(x)))
}

// foldingEstimate derives the folding source and initial fill masks for a
// band. offset is the most recent band rich enough to fold from; with no
// usable source (or when aggressive spreading or a TF increase disables
// folding), the lowband is -1 and the fill mask lights every block of a
// transient frame. Otherwise the masks accumulate the collapse bits of all
// bands overlapping the folding window.
func foldingEstimate(offset int, collapseMasks []uint8, spread, tfChange, n int, transient bool) (xcm, ycm uint8, lowband int) {
	if offset == 0 || (spread == spreadAggressive && tfChange >= 0) {
		if transient {
			return 255, 255, -1
		}
		return 1, 1, -1
	}
	// Clamp at zero so a narrow folding source below a wide band cannot
	// push the window before the start of the spectrum.
	lowband = maxInt(0, 8*eBands[offset]-n)
	i := offset
	for 8*eBands[i] > lowband {
		xcm |= collapseMasks[i*2]
		ycm |= collapseMasks[i*2+1]
		i--
	}
	return xcm, ycm, lowband
}
