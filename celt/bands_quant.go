package celt

import (
	"math"

	"github.com/kaldmaer/gocelt/rangecoding"
)

// Recursive band shape decoding per RFC 6716 Section 4.3.4.4. A band is
// split in halves, each carrying a share of the bit budget derived from a
// coded angle theta, until the sub-vector is small enough for one PVQ
// codeword. The same recursion joins the two stereo channels at the top.

// bandCtx carries the per-band decoding state down the recursion.
type bandCtx struct {
	i             int // Current band index
	intensity     int // First intensity-stereo band
	spread        int
	tfChange      int
	remainingBits int // Whole-frame budget remaining, in 1/8 bits
	seed          uint32
}

// splitCtx is the outcome of one theta decode.
type splitCtx struct {
	isInv  bool
	imid   int32 // Q15 cos(theta)
	iside  int32 // Q15 sin(theta)
	delta  int   // Bit-budget tilt between the halves
	itheta int
	qalloc int // 1/8 bits consumed coding theta
}

// computeTheta decodes the split angle and derives the mid/side gains and
// the budget tilt. Stereo bands at or past the intensity boundary skip the
// angle and decode only the inversion flag when there is room.
func computeTheta(ec *rangecoding.Decoder, ctx *bandCtx, sctx *splitCtx, qn, n int, b *int, b0 int, isStereo bool) {
	tell := ec.TellFrac()
	sctx.isInv = false
	if isStereo && ctx.i >= ctx.intensity {
		if *b > 16 {
			sctx.isInv = ec.DecodeBit(2) == 1
		}
		sctx.itheta = 0
	} else {
		sctx.itheta = getTheta(ec, qn, b0, isStereo) * 16384 / qn
	}
	sctx.qalloc = ec.TellFrac() - tell
	*b -= sctx.qalloc

	sctx.imid = int32(bitexactCos(int16(sctx.itheta)))
	sctx.iside = int32(bitexactCos(int16(16384 - sctx.itheta)))
	sctx.delta = ((n-1)*int(bitexactLog2Tan(sctx.iside, sctx.imid)) + (1 << 7)) >> 8
}

// quantNoSplit decodes a leaf sub-vector: the largest affordable pulse
// count is spent on a PVQ codeword, or, with no pulses, the vector is
// synthesised from the folding lowband with dither or from plain LCG noise.
func quantNoSplit(mode *Mode, ec *rangecoding.Decoder, ctx *bandCtx, row []uint8, x []float32, b, blocks int, lowband []float32, gain float32, fill uint32) uint32 {
	for q := bits2pulses(row, b) - 1; q >= 0; q-- {
		curBits := pseudoCost(row, q)
		if curBits <= ctx.remainingBits {
			ctx.remainingBits -= curBits
			return algUnquant(x, getPulses(q+1), ctx.spread, blocks, ec, gain, mode.v)
		}
	}

	fill &= 1<<uint(blocks) - 1
	if fill == 0 {
		for i := range x {
			x[i] = 0
		}
		return 0
	}

	if lowband == nil {
		// Nothing to fold: full-scale LCG noise, renormalised below.
		for i := range x {
			ctx.seed = lcgRand(ctx.seed)
			x[i] = float32(int32(ctx.seed))
		}
	} else {
		for i := range x {
			ctx.seed = lcgRand(ctx.seed)
			dither := float32(-1.0 / 256.0)
			if ctx.seed&0x8000 != 0 {
				dither = 1.0 / 256.0
			}
			x[i] = lowband[i] + dither
		}
	}
	renormalise(x, gain)
	return fill
}

// quantPartition recursively halves the band until the budget or dimension
// makes a single codeword feasible. Each split decodes theta, divides the
// remaining budget between the halves, and gifts large under-spends from
// the first half decoded to the second.
func quantPartition(mode *Mode, ec *rangecoding.Decoder, ctx *bandCtx, x []float32, b, b0 int, lowband []float32, lm int, gain float32, fill uint32) uint32 {
	row := pulseCacheRow(ctx.i, lm)
	if lm == -1 || len(x) <= 2 || b <= splitThreshold(row) {
		blocks := b0
		if blocks == 0 {
			blocks = 1
		}
		return quantNoSplit(mode, ec, ctx, row, x, b, blocks, lowband, gain, fill)
	}

	n := len(x) / 2
	xl, xr := x[:n], x[n:]
	lm--
	fill = (fill & 1) | (fill << 1)

	var sctx splitCtx
	qn := computeQn(bandWidth(ctx.i), n, b, lm)
	computeTheta(ec, ctx, &sctx, qn, n, &b, b0, false)

	b0 /= 2
	if b0 > 0 {
		// Bias the tilt toward the side that carries energy when time
		// blocks remain to be split.
		if sctx.itheta > 8192 {
			sctx.delta -= sctx.delta >> uint(4-lm)
		} else {
			sctx.delta = minInt(0, sctx.delta+(n>>uint(2-lm)))
		}
	}

	if sctx.itheta == 0 {
		fill &= 1<<uint(b0) - 1
	}
	if sctx.itheta == 16384 {
		fill &= (1<<uint(b0) - 1) << uint(b0)
	}

	mbits := maxInt(0, minInt(b, (b-sctx.delta)/2))
	sbits := b - mbits
	mid := float32(sctx.imid) / 32768.0
	side := float32(sctx.iside) / 32768.0
	ctx.remainingBits -= sctx.qalloc

	var lbMid, lbSide []float32
	if lowband != nil {
		lbMid, lbSide = lowband[:n], lowband[n:]
	}

	rebalance := ctx.remainingBits
	var cm uint32
	if mbits >= sbits {
		cm = quantPartition(mode, ec, ctx, xl, mbits, b0, lbMid, lm, gain*mid, fill)
		rebalance = mbits - (rebalance - ctx.remainingBits)
		if rebalance > 3*8 && sctx.itheta != 0 {
			sbits += rebalance - 3*8
		}
		cm |= quantPartition(mode, ec, ctx, xr, sbits, b0, lbSide, lm, gain*side, fill>>uint(b0)) << uint(b0)
	} else {
		cm = quantPartition(mode, ec, ctx, xr, sbits, b0, lbSide, lm, gain*side, fill>>uint(b0)) << uint(b0)
		rebalance = sbits - (rebalance - ctx.remainingBits)
		if rebalance > 3*8 && sctx.itheta != 16384 {
			mbits += rebalance - 3*8
		}
		cm |= quantPartition(mode, ec, ctx, xl, mbits, b0, lbMid, lm, gain*mid, fill)
	}
	return cm
}

// bitInterleaveTable merges pairs of collapse-mask bits when Haar
// recombination halves the block count.
var bitInterleaveTable = [16]uint32{
	0, 1, 1, 1, 2, 3, 3, 3, 2, 3, 3, 3, 2, 3, 3, 3,
}

// bitDeinterleaveTable spreads collapse-mask bits back out after the
// recombination is undone.
var bitDeinterleaveTable = [16]uint32{
	0x00, 0x03, 0x0C, 0x0F, 0x30, 0x33, 0x3C, 0x3F,
	0xC0, 0xC3, 0xCC, 0xCF, 0xF0, 0xF3, 0xFC, 0xFF,
}

// quantBandMono decodes one channel of one band. Around the recursion it
// reshapes the folding lowband and the decoded output between time and
// frequency layouts according to the band's TF resolution change.
func quantBandMono(mode *Mode, ec *rangecoding.Decoder, ctx *bandCtx, x []float32, b int, transient bool, gain float32, lowband []float32, fill uint32) uint32 {
	n := len(x)

	// The folding source is mutated by the Haar passes below; preserve it
	// for later bands unless this is the last band.
	var scratch []float32
	if ctx.i != MaxBands-1 && (ctx.tfChange < 0 || transient) && lowband != nil {
		scratch = make([]float32, n)
		copy(scratch, lowband[:n])
	}

	recombine := maxInt(0, ctx.tfChange)
	for i := 0; i < recombine; i++ {
		if lowband != nil {
			haar1(lowband, 1<<uint(i))
		}
	}
	for i := 0; i < recombine; i++ {
		fill = bitInterleaveTable[fill&0xF] | bitInterleaveTable[fill>>4]<<2
	}

	b0 := 1
	if transient {
		b0 = 8
	}
	b0 >>= uint(recombine)

	timeDivide := 0
	tfChange := ctx.tfChange
	for (n/b0)&1 == 0 && tfChange < 0 {
		if lowband != nil {
			haar1(lowband, b0)
		}
		fill |= fill << uint(b0)
		b0 *= 2
		timeDivide++
		tfChange++
	}

	// Frequency order to time order for the recursion.
	if lowband != nil {
		deinterleaveHadamard(lowband, b0<<uint(recombine), !transient)
	}

	cm := quantPartition(mode, ec, ctx, x, b, b0, lowband, LM, gain, fill)
	if scratch != nil {
		copy(lowband[:n], scratch)
	}

	// Time order back to frequency order.
	if b0 > 1 {
		interleaveHadamard(x, b0<<uint(recombine), !transient)
	}

	for i := 0; i < timeDivide; i++ {
		b0 /= 2
		cm |= cm >> uint(b0)
		haar1(x, b0)
	}

	for i := 0; i < recombine; i++ {
		cm = bitDeinterleaveTable[cm]
		haar1(x, 1<<uint(i))
	}

	if !transient {
		cm &= 1
	}
	return cm
}

// quantBandStereo decodes a band jointly for both channels: one stereo
// theta split, a mono recursion per channel, then the mid/side merge.
func quantBandStereo(mode *Mode, ec *rangecoding.Decoder, ctx *bandCtx, x, y []float32, b int, transient bool, lowband, lowbandOut []float32, fill uint32) uint32 {
	b0 := 1
	if transient {
		b0 = 8
	}

	var sctx splitCtx
	qn := computeQn(bandWidth(ctx.i), len(x), b, LM)
	computeTheta(ec, ctx, &sctx, qn, len(x), &b, b0, true)

	if sctx.itheta == 0 {
		fill &= 1<<uint(b0) - 1
	}
	if sctx.itheta == 16384 {
		fill &= (1<<uint(b0) - 1) << uint(b0)
	}

	mbits := maxInt(0, minInt(b, (b-sctx.delta)/2))
	sbits := b - mbits
	side := float32(sctx.iside) / 32768.0
	ctx.remainingBits -= sctx.qalloc

	rebalance := ctx.remainingBits
	var cm uint32
	if mbits >= sbits {
		cm = quantBandMono(mode, ec, ctx, x, mbits, transient, 1.0, lowband, fill)
		rebalance = mbits - (rebalance - ctx.remainingBits)
		if rebalance > 3*8 && sctx.itheta != 0 {
			sbits += rebalance - 3*8
		}
		cm |= quantBandMono(mode, ec, ctx, y, sbits, transient, side, nil, fill>>uint(b0))
	} else {
		cm = quantBandMono(mode, ec, ctx, y, sbits, transient, side, nil, fill>>uint(b0))
		rebalance = sbits - (rebalance - ctx.remainingBits)
		if rebalance > 3*8 {
			mbits += rebalance - 3*8
		}
		cm |= quantBandMono(mode, ec, ctx, x, mbits, transient, 1.0, lowband, fill)
	}

	// Scale the decoded mid for later folding before it is merged away.
	if lowbandOut != nil {
		f := float32(math.Sqrt(float64(len(x))))
		for i := range x {
			lowbandOut[i] = f * x[i]
		}
	}

	stereoMerge(x, y, float32(sctx.imid)/32768.0)
	if sctx.isInv {
		for i := range y {
			y[i] = -y[i]
		}
	}
	return cm
}
