package celt

import "math"

// quantAllBands walks the 21 bands in order, handing each one to the
// stereo quantiser (or to two mono passes while dual stereo is active),
// while maintaining the bit balance and the folding lowband bookkeeping.
//
// x and y receive the normalised per-channel spectra; collapseMasks gets
// one mask per band and channel. The LCG seed is threaded through the band
// context and left in d.rng for anti-collapse.
func (d *Decoder) quantAllBands(x, y []float32, collapseMasks []uint8, pulses []int, transient bool, spread int, dualStereo bool, intensity int, tfRes []int, totalBits, codedBands int) {
	ctx := bandCtx{
		intensity: intensity,
		spread:    spread,
		seed:      d.rng,
	}

	lowbandOffset := 0
	balance := d.ec.TellFrac()
	updateLowband := true
	normX := make([]float32, 8*eBands[MaxBands-1])
	normY := make([]float32, 8*eBands[MaxBands-1])

	for i := 0; i < MaxBands; i++ {
		band := 8 * eBands[i]
		n := 8 * bandWidth(i)
		tell := d.ec.TellFrac()
		ctx.i = i
		ctx.remainingBits = totalBits - tell - 1
		ctx.tfChange = tfRes[i]
		balance -= tell
		b := 0
		if i < codedBands {
			// One third of the balance per band, one half before the
			// last coded band, all of it on the last.
			b = pulses[i] + balance/minInt(3, codedBands-i)
		}

		if updateLowband {
			lowbandOffset = i
		}
		xcm, ycm, effectiveLowband := foldingEstimate(lowbandOffset, collapseMasks, spread, ctx.tfChange, n, transient)

		if dualStereo && i == intensity {
			// Dual stereo ends at the intensity boundary; collapse the
			// two folding histories into one.
			dualStereo = false
			for j := 0; j < band; j++ {
				normX[j] = (normX[j] + normY[j]) / 2.0
			}
		}

		if dualStereo {
			var lowband []float32
			if effectiveLowband != -1 {
				lowband = normX[effectiveLowband : effectiveLowband+n]
			}
			xcm = uint8(quantBandMono(d.mode, &d.ec, &ctx, x[band:band+n], b/2, transient, 1.0, lowband, uint32(xcm)))
			if i != MaxBands-1 {
				f := float32(math.Sqrt(float64(n)))
				for j := 0; j < n; j++ {
					normX[band+j] = f * x[band+j]
				}
			}

			lowband = nil
			if effectiveLowband != -1 {
				lowband = normY[effectiveLowband : effectiveLowband+n]
			}
			ycm = uint8(quantBandMono(d.mode, &d.ec, &ctx, y[band:band+n], b/2, transient, 1.0, lowband, uint32(ycm)))
			if i != MaxBands-1 {
				f := float32(math.Sqrt(float64(n)))
				for j := 0; j < n; j++ {
					normY[band+j] = f * y[band+j]
				}
			}
		} else {
			// Split the folding buffer into the read window below this
			// band and the write window at it; the two never overlap.
			lb, lbo := normX[:band], normX[band:]
			var lowband []float32
			if effectiveLowband != -1 {
				lowband = lb[effectiveLowband : effectiveLowband+n]
			}
			var lowbandOut []float32
			if i != MaxBands-1 {
				lowbandOut = lbo[:n]
			}
			xcm = uint8(quantBandStereo(d.mode, &d.ec, &ctx, x[band:band+n], y[band:band+n], b, transient, lowband, lowbandOut, uint32(xcm|ycm)))
			ycm = xcm
		}

		collapseMasks[i*2] = xcm
		collapseMasks[i*2+1] = ycm
		balance += pulses[i] + tell

		// A band dense enough to spend more than one bit per sample
		// becomes the folding source for the bands above it.
		updateLowband = b > n*8
	}

	d.rng = ctx.seed
}
