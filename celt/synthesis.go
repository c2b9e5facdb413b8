package celt

import "math"

// denormaliseBands scales the normalised band shapes back to their decoded
// energies. Energies are log2-domain offsets from the per-band means;
// they are clamped before exponentiation so malformed streams cannot
// produce infinities. Bins above the last band are cleared.
func denormaliseBands(x []float32, bands []float32) {
	for i := 0; i < MaxBands; i++ {
		e := bands[i] + float32(eMeans[i])/16.0
		if e > 32 {
			e = 32
		}
		g := float32(math.Exp2(float64(e)))
		for j := 8 * eBands[i]; j < 8*eBands[i+1]; j++ {
			x[j] *= g
		}
	}
	for i := 8 * eBands[MaxBands]; i < FrameSize; i++ {
		x[i] = 0
	}
}

// synthesise converts both channels' spectra to time domain: denormalise,
// then run one long or eight short inverse MDCTs per channel into the
// overlap region of the synthesis history.
func (d *Decoder) synthesise(x []float32, isTransient bool) {
	shift := uint(0)
	if isTransient {
		shift = 3
	}
	for c := 0; c < Channels; c++ {
		denormaliseBands(x[FrameSize*c:FrameSize*(c+1)], d.bands[MaxBands*c:MaxBands*(c+1)])
		for b := 0; b < 1<<shift; b++ {
			y := d.decodeMem[c][BufferSize-FrameSize+Overlap*b : BufferSize-FrameSize+Overlap*b+(FrameSize>>shift)+Overlap/2]
			mdctBackward(d.mode, x[FrameSize*c+b:], y, shift)
		}
	}
}
