package celt

import "github.com/kaldmaer/gocelt/rangecoding"

// Decoder holds the per-stream state that persists across frames. Create
// one with NewDecoder; decoders sharing a Mode are independent and may run
// on separate goroutines as long as each owns its state.
type Decoder struct {
	mode *Mode
	ec   rangecoding.Decoder

	// rng carries the final range-coder state into the next frame, where
	// it seeds the noise LCG before being overwritten at end of frame.
	rng uint32

	// Previous post-filter parameters for the cross-fade.
	pitch  int
	gain   float32
	tapset int

	preemphMem [Channels]float32
	decodeMem  [Channels][]float32

	// Three rows of per-channel log energies: current frame, previous,
	// and the one before. The rows shift after non-transient frames.
	bands [6 * MaxBands]float32
}

// NewDecoder creates a decoder with zeroed state using the given mode
// tables, or fresh tables when mode is nil.
func NewDecoder(mode *Mode) *Decoder {
	if mode == nil {
		mode = NewMode()
	}
	d := &Decoder{mode: mode}
	for c := range d.decodeMem {
		d.decodeMem[c] = make([]float32, BufferSize+Overlap/2)
	}
	return d
}

// FinalRange returns the range-coder state left by the last frame, for
// conformance checks against the encoder's recorded value.
func (d *Decoder) FinalRange() uint32 {
	return d.rng
}

// Decode decodes one 20 ms frame. data holds the TOC byte followed by the
// CELT payload; pcm receives FrameSize interleaved stereo sample pairs.
// Decoding never fails: out-of-range reads pad with zeros and the symbol
// gates simply stop firing, so every call produces FrameSize samples.
func (d *Decoder) Decode(data []byte, pcm []float32) int {
	var payload []byte
	if len(data) > 1 {
		payload = data[1:]
	}
	length := len(payload)
	d.ec.Init(payload)

	isSilence := d.ec.DecodeBit(15) == 1

	pitch, tapset, gain, _ := decodePostFilterParams(&d.ec, length*8)

	isTransient := d.ec.Tell()+3 <= length*8 && d.ec.DecodeBit(3) == 1
	intra := d.ec.Tell()+3 <= length*8 && d.ec.DecodeBit(3) == 1

	unquantCoarseEnergy(d.bands[:2*MaxBands], intra, &d.ec)

	tfRes := make([]int, MaxBands)
	tfDecode(&d.ec, isTransient, tfRes)

	spread := decodeSpread(&d.ec, length)

	boosts := make([]int, MaxBands)
	totalBoost := decodeBandBoosts(&d.ec, length, boosts)

	allocationTrim := decodeAllocationTrim(&d.ec, length, totalBoost)

	alloc := computeAllocation(&d.ec, length, boosts, allocationTrim, isTransient)

	unquantFineEnergy(d.bands[:2*MaxBands], alloc.fineBits[:], &d.ec)

	// Advance the synthesis history by one frame.
	for c := 0; c < Channels; c++ {
		copy(d.decodeMem[c][:BufferSize-FrameSize+Overlap/2], d.decodeMem[c][FrameSize:])
	}

	var collapseMasks [2 * MaxBands]uint8
	xy := make([]float32, 2*FrameSize)
	totalBits := length * 8 * 8
	if isTransient {
		totalBits -= 8
	}
	d.quantAllBands(xy[:FrameSize], xy[FrameSize:], collapseMasks[:], alloc.pulses[:],
		isTransient, spread, alloc.dualStereo, alloc.intensity, tfRes, totalBits, alloc.codedBands)

	isAntiCollapse := isTransient && d.ec.DecodeBits(1) == 1

	unquantEnergyFinalise(d.bands[:2*MaxBands], alloc.fineBits[:], alloc.finePriority[:],
		length*8-d.ec.Tell(), &d.ec)

	if isAntiCollapse {
		antiCollapse(xy, collapseMasks[:], d.bands[:2*MaxBands],
			d.bands[2*MaxBands:4*MaxBands], d.bands[4*MaxBands:6*MaxBands],
			alloc.pulses[:], d.rng)
	}

	if isSilence {
		for i := 0; i < 2*MaxBands; i++ {
			d.bands[i] = -28.0
		}
	}

	d.synthesise(xy, isTransient)

	for c := 0; c < Channels; c++ {
		d.applyPostFilter(d.decodeMem[c], pitch, gain, tapset)
	}
	d.pitch = pitch
	d.gain = gain
	d.tapset = tapset

	if !isTransient {
		for i := 0; i < 2*MaxBands; i++ {
			d.bands[4*MaxBands+i] = d.bands[2*MaxBands+i]
			d.bands[2*MaxBands+i] = d.bands[i]
		}
	}
	d.rng = d.ec.Range()

	d.deemphasis(pcm)
	return FrameSize
}

// deemphasis undoes the encoder's pre-emphasis with a one-pole IIR per
// channel and interleaves the scaled PCM output.
func (d *Decoder) deemphasis(pcm []float32) {
	for c := 0; c < Channels; c++ {
		mem := d.preemphMem[c]
		for i := 0; i < FrameSize; i++ {
			mem += d.decodeMem[c][BufferSize-FrameSize+i]
			pcm[2*i+c] = mem / 32768.0
			mem *= PreemphCoef
		}
		d.preemphMem[c] = mem
	}
}
