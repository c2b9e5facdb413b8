package celt

import "github.com/kaldmaer/gocelt/rangecoding"

// Band energy dequantisation per RFC 6716 Section 4.3.2: a Laplace-coded
// coarse stage driven by a two-tap predictor across bands and frames, raw
// fine bits, and a final pass that spends leftover bits on the bands whose
// fine rounding needed it most.

const laplaceNMin = 16

// Coarse prediction coefficients. Intra frames drop the time recursion
// entirely; inter frames use the 20 ms alpha/beta pair.
const (
	alphaIntra = float32(0.0)
	alphaInter = float32(0.5)
	betaIntra  = float32(27853.0 / 32768.0)
	betaInter  = float32(26214.0 / 32768.0)
)

// laplaceDecode reads one coarse-energy residual. fs is the probability of
// zero in Q15 and decay controls how fast the tail falls off; both come
// from the per-band model tables.
func laplaceDecode(ec *rangecoding.Decoder, fs, decay uint32) int {
	fm := ec.Decode(32768)
	if fm < fs {
		ec.Update(0, fs, 32768)
		return 0
	}

	fl := fs
	val := 1
	fs = (32768-2*laplaceNMin-fs)*(16384-decay)/32768 + 1
	for fs > 1 && fm >= fl+fs*2 {
		fl += fs * 2
		fs = (fs*2-2)*decay/32768 + 1
		val++
	}
	if fs <= 1 {
		di := (fm - fl) / 2
		val += int(di)
		fl += 2 * di
	}
	if fm < fl+fs {
		val = -val
	} else {
		fl += fs
	}
	fh := fl + fs
	if fh > 32768 {
		fh = 32768
	}
	ec.Update(fl, fh, 32768)
	return val
}

// unquantCoarseEnergy decodes the coarse log-energy for every band of both
// channels. bands holds the previous frame's values on entry and the
// predicted-plus-residual values on exit.
func unquantCoarseEnergy(bands []float32, intra bool, ec *rangecoding.Decoder) {
	alpha, beta := alphaInter, betaInter
	if intra {
		alpha, beta = alphaIntra, betaIntra
	}

	var prev [Channels]float32
	for i := 0; i < MaxBands; i++ {
		for c := 0; c < Channels; c++ {
			var fs, decay uint32
			if intra {
				fs = probIntra[i] << 7
				decay = decayIntra[i] << 6
			} else {
				fs = probInter[i] << 7
				decay = decayInter[i] << 6
			}
			q := float32(laplaceDecode(ec, fs, decay))
			if bands[MaxBands*c+i] < -9.0 {
				bands[MaxBands*c+i] = -9.0
			}
			bands[MaxBands*c+i] = alpha*bands[MaxBands*c+i] + prev[c] + q
			prev[c] += beta * q
		}
	}
}

// unquantFineEnergy refines each band by its allocated fine bits,
// reconstructing a centred fraction of the coarse step.
func unquantFineEnergy(bands []float32, fineQuant []int, ec *rangecoding.Decoder) {
	for i := 0; i < MaxBands; i++ {
		for c := 0; c < Channels; c++ {
			if fineQuant[i] <= 0 {
				continue
			}
			q := ec.DecodeBits(uint(fineQuant[i]))
			bands[MaxBands*c+i] += (float32(q)+0.5)/float32(int32(1)<<uint(fineQuant[i])) - 0.5
		}
	}
}

// unquantEnergyFinalise spends the remaining raw bits, two per band (one
// per channel), on priority-0 bands first and then priority-1 bands.
func unquantEnergyFinalise(bands []float32, fineQuant, finePriority []int, bitsLeft int, ec *rangecoding.Decoder) {
	for prio := 0; prio < 2; prio++ {
		for i := 0; i < MaxBands; i++ {
			if bitsLeft < 2 {
				return
			}
			if finePriority[i] != prio {
				continue
			}
			for c := 0; c < Channels; c++ {
				q := ec.DecodeBits(1)
				bands[MaxBands*c+i] += (float32(q) - 0.5) / float32(int32(1)<<uint(fineQuant[i]+1))
				bitsLeft--
			}
		}
	}
}
