package celt

import "math"

// Mode holds the immutable per-session tables: the overlap window, the two
// inverse-MDCT FFT configurations, the shared twiddle roots, and the PVQ
// codebook-size table. Build it once with NewMode; it may be shared by
// reference between decoders.
type Mode struct {
	window   [Overlap]float32
	fft0     *kissFFT // Long blocks (shift 0, 480-point FFT)
	fft3     *kissFFT // Short blocks (shift 3, 60-point FFT)
	twiddles []complex64
	v        *pvqTable
}

// NewMode constructs the shared decoder tables for the 20 ms stereo mode.
func NewMode() *Mode {
	m := &Mode{
		fft0:     newKissFFT(0, []int{5, 4, 4, 3, 2}),
		fft3:     newKissFFT(3, []int{5, 4, 3}),
		twiddles: make([]complex64, FrameSize/2),
		// One row past the widest band (176 samples) so an unsplit
		// band-20 codeword can look up v(176, k).
		v: newPVQTable(177),
	}

	// Vorbis power-complementary window over the overlap region.
	for i := range m.window {
		theta := 0.5 * math.Pi * (float64(i) + 0.5) / Overlap
		s := math.Sin(theta)
		m.window[i] = float32(math.Sin(0.5 * math.Pi * s * s))
	}

	// Forward DFT roots e^(-2*pi*i*k/480), shared by every butterfly pass.
	for i := range m.twiddles {
		theta := 2.0 * math.Pi * float64(i) / float64(len(m.twiddles))
		m.twiddles[i] = complex(float32(math.Cos(theta)), float32(-math.Sin(theta)))
	}

	return m
}

// Window returns the overlap window, exposed for synthesis tests.
func (m *Mode) Window() []float32 {
	return m.window[:]
}
