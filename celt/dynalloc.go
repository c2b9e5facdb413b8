package celt

import "github.com/kaldmaer/gocelt/rangecoding"

// Dynamic allocation symbols: per-band boost quanta, the allocation trim,
// and the spread decision. All three are gated on remaining room so a
// short frame simply keeps the defaults.

// decodeBandBoosts reads the geometric boost code for every band. The
// first boost in a band costs dynallocLogp bits and each further one a
// single bit; a band that received a boost lowers the start cost for later
// bands by one bit (floored at 2). Returns the total boost in 1/8 bits.
func decodeBandBoosts(ec *rangecoding.Decoder, length int, boosts []int) int {
	dynallocLogp := 6
	totalBoost := 0
	tell := ec.TellFrac()
	for i := range boosts {
		width := 2 * bandWidth(i) * 8
		quanta := minInt(8*width, maxInt(48, width))
		boost := 0
		dynallocLoopLogp := dynallocLogp
		for dynallocLoopLogp*8+tell < length*8*8 {
			if ec.DecodeBit(uint(dynallocLoopLogp)) == 0 {
				break
			}
			tell = ec.TellFrac()
			boost += quanta
			totalBoost += quanta
			dynallocLoopLogp = 1
		}
		boosts[i] = boost
		if boost != 0 && dynallocLogp > 2 {
			dynallocLogp--
		}
	}
	return totalBoost
}

// decodeAllocationTrim reads the trim (0..10, default 5) when six bits of
// room remain after the boosts.
func decodeAllocationTrim(ec *rangecoding.Decoder, length, totalBoost int) int {
	trim := 5
	if ec.TellFrac()+6*8 <= length*8*8-totalBoost {
		trim = ec.DecodeICDF(trimICDF[:], 7)
	}
	return trim
}

// decodeSpread reads the spreading decision, defaulting to normal when the
// frame has no room left for it.
func decodeSpread(ec *rangecoding.Decoder, length int) int {
	if ec.Tell()+4 <= length*8 {
		return ec.DecodeICDF(spreadICDF[:], 5)
	}
	return spreadNormal
}
