package celt

import "github.com/kaldmaer/gocelt/rangecoding"

// tfSelectTable maps the accumulated per-band change flags to the final
// time-frequency resolution adjustment for 20 ms frames. Row 0 applies to
// long frames, row 1 to transients; the tf_select bit picks between the
// two column pairs when they differ.
var tfSelectTable = [2][4]int{
	{0, -2, 0, -3},
	{3, 0, 1, -1},
}

// tfDecode reads the per-band time/frequency change flags: a first bit,
// then one differential bit per band, each gated on remaining room, and
// finally the optional table-select bit.
func tfDecode(ec *rangecoding.Decoder, isTransient bool, tfRes []int) {
	row := 0
	logp := 4
	if isTransient {
		row = 1
		logp = 2
	}

	tfChanged := 0
	tfRes[0] = 0
	if ec.Tell()+logp <= ec.StorageBits() {
		tfRes[0] = ec.DecodeBit(uint(logp))
		tfChanged = tfRes[0]
	}
	logp = 5
	if isTransient {
		logp = 4
	}
	for i := 1; i < len(tfRes); i++ {
		tfRes[i] = tfRes[i-1]
		if ec.Tell()+logp <= ec.StorageBits() {
			tfRes[i] ^= ec.DecodeBit(uint(logp))
			tfChanged |= tfRes[i]
		}
	}

	tfSelect := 0
	if tfSelectTable[row][tfChanged] != tfSelectTable[row][2+tfChanged] {
		tfSelect = ec.DecodeBit(1)
	}
	for i := range tfRes {
		tfRes[i] = tfSelectTable[row][2*tfSelect+tfRes[i]]
	}
}
