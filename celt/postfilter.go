package celt

import "github.com/kaldmaer/gocelt/rangecoding"

// Pitch post-filter per RFC 6716 Section 4.3.7.1: a 3-tap comb filter over
// the synthesis output, cross-faded over one overlap window whenever the
// pitch parameters change between frames.

// decodePostFilterParams reads the optional post-filter block: the enable
// bit, a 3-bit octave, the octave-scaled pitch lag, a 3-bit gain, and the
// tapset. Absent or gated out, it returns zero pitch, gain and tapset with
// ok false, which turns the filter off for this frame.
func decodePostFilterParams(ec *rangecoding.Decoder, totalBits int) (pitch, tapset int, gain float32, ok bool) {
	if ec.Tell()+16 > totalBits || ec.DecodeBit(1) != 1 {
		return 0, 0, 0, false
	}
	octave := int(ec.DecodeUniform(6))
	pitch = (16 << uint(octave)) + int(ec.DecodeBits(uint(4+octave))) - 1
	gain = 3.0 * float32(ec.DecodeBits(3)+1) / 32.0
	tapset = ec.DecodeICDF(tapsetICDF[:], 2)
	return pitch, tapset, gain, true
}

// combFilterConst applies the comb filter with constant gain to
// x[t0 : t0+n], reading pitch samples behind each output.
func combFilterConst(x []float32, t0, n, pitch int, gain float32, tapset int) {
	g := combGains[tapset]
	for i := t0; i < t0+n; i++ {
		x[i] += gain * (g[0]*x[i-pitch] +
			g[1]*(x[i-pitch+1]+x[i-pitch-1]) +
			g[2]*(x[i-pitch+2]+x[i-pitch-2]))
	}
}

// combFilterFadeOut applies the previous frame's comb filter with the gain
// ramped down by 1 - w^2 over the window.
func combFilterFadeOut(window []float32, x []float32, t0, pitch int, gain float32, tapset int) {
	g := combGains[tapset]
	for i := 0; i < len(window); i++ {
		f := 1.0 - window[i]*window[i]
		t := t0 + i
		x[t] += f * gain * (g[0]*x[t-pitch] +
			g[1]*(x[t-pitch+1]+x[t-pitch-1]) +
			g[2]*(x[t-pitch+2]+x[t-pitch-2]))
	}
}

// combFilterFadeIn applies the current frame's comb filter with the gain
// ramped up by w^2 over the window.
func combFilterFadeIn(window []float32, x []float32, t0, pitch int, gain float32, tapset int) {
	g := combGains[tapset]
	for i := 0; i < len(window); i++ {
		f := window[i] * window[i]
		t := t0 + i
		x[t] += f * gain * (g[0]*x[t-pitch] +
			g[1]*(x[t-pitch+1]+x[t-pitch-1]) +
			g[2]*(x[t-pitch+2]+x[t-pitch-2]))
	}
}

// applyPostFilter runs the frame's four comb passes over one channel: a
// constant-gain head and the two-sided cross-fade with the previous
// parameters, then a constant-gain body with the new ones.
func (d *Decoder) applyPostFilter(x []float32, pitch int, gain float32, tapset int) {
	base := BufferSize - FrameSize
	combFilterConst(x, base, Overlap, d.pitch, d.gain, d.tapset)
	combFilterFadeOut(d.mode.window[:], x, base+Overlap, d.pitch, d.gain, d.tapset)
	combFilterFadeIn(d.mode.window[:], x, base+Overlap, pitch, gain, tapset)
	combFilterConst(x, base+2*Overlap, FrameSize-2*Overlap, pitch, gain, tapset)
}
