// Package celt implements the CELT decoder layer of the Opus codec per
// RFC 6716 Section 4.3, for 20 ms full-band stereo frames at 48 kHz.
package celt

// Frame geometry for the 20 ms full-band stereo mode.
const (
	// FrameSize is the number of PCM samples per channel in one frame.
	FrameSize = 960
	// MaxBands is the number of Bark-scale frequency bands.
	MaxBands = 21
	// Channels is fixed at stereo for this mode.
	Channels = 2
	// LM is log2(FrameSize / Overlap): 3 for 20 ms frames.
	LM = 3
	// Overlap is the MDCT window overlap length at 48 kHz.
	Overlap = 120
	// BufferSize is the length of the per-channel synthesis history ring.
	BufferSize = 2048
)

// PreemphCoef is the de-emphasis filter coefficient. The decoder applies
// y[n] = x[n] + PreemphCoef * y[n-1] before scaling to PCM range.
// Source: libopus celt/modes.c preemph.
const PreemphCoef = 0.85

// eBands contains the MDCT bin indices of the band edges at the 5 ms base
// resolution. Band i spans eBands[i]..eBands[i+1]; at 20 ms each base bin
// holds 8 MDCT samples.
// Source: libopus celt/modes.c eband5ms.
var eBands = [MaxBands + 1]int{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 10,
	12, 14, 16, 20, 24, 28, 34, 40, 48, 60,
	78, 100,
}

// bandWidth returns the width of band i in base MDCT bins.
func bandWidth(i int) int {
	return eBands[i+1] - eBands[i]
}

// bandAlloc is the static per-quality shape allocation matrix: PVQ bits per
// base bin per channel in 1/32-bit units, for quality rows 0 (nothing) to
// 10 (everything).
// Source: libopus celt/modes.c band_allocation (Table 57 of RFC 6716).
var bandAlloc = [11][MaxBands]int{
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{90, 80, 75, 69, 63, 56, 49, 40, 34, 29, 20, 18, 10, 0, 0, 0, 0, 0, 0, 0, 0},
	{110, 100, 90, 84, 78, 71, 65, 58, 51, 45, 39, 32, 26, 20, 12, 0, 0, 0, 0, 0, 0},
	{118, 110, 103, 93, 86, 80, 75, 70, 65, 59, 53, 47, 40, 31, 23, 15, 4, 0, 0, 0, 0},
	{126, 119, 112, 104, 95, 89, 83, 78, 72, 66, 60, 54, 47, 39, 32, 25, 17, 12, 1, 0, 0},
	{134, 127, 120, 114, 103, 97, 91, 85, 78, 72, 66, 60, 54, 47, 41, 35, 29, 23, 16, 10, 1},
	{144, 137, 130, 124, 113, 107, 101, 95, 88, 82, 76, 70, 64, 57, 51, 45, 39, 33, 26, 15, 1},
	{152, 145, 138, 132, 123, 117, 111, 105, 98, 92, 86, 80, 74, 67, 61, 55, 49, 43, 36, 20, 1},
	{162, 155, 148, 142, 133, 127, 121, 115, 108, 102, 96, 90, 84, 77, 71, 65, 59, 53, 46, 30, 1},
	{172, 165, 158, 152, 143, 137, 131, 125, 118, 112, 106, 100, 94, 87, 81, 75, 69, 63, 56, 45, 20},
	{200, 200, 200, 200, 200, 200, 200, 200, 198, 193, 188, 183, 178, 173, 168, 163, 158, 153, 148, 129, 104},
}

// cacheIndex50 maps (lm+1)*MaxBands + band to the start of that band's
// pulse-count cost row in cacheBits50. Identical rows are shared.
// Source: libopus celt/static_modes_float.h cache_index50.
var cacheIndex50 = [5 * MaxBands]int16{
	-1, -1, -1, -1, -1, -1, -1, -1, 0, 0, 0, 0, 41, 41, 41,
	82, 82, 123, 164, 200, 222, 0, 0, 0, 0, 0, 0, 0, 0, 41,
	41, 41, 41, 123, 123, 123, 164, 164, 240, 266, 283, 295, 41, 41, 41,
	41, 41, 41, 41, 41, 123, 123, 123, 123, 240, 240, 240, 266, 266, 305,
	318, 328, 336, 123, 123, 123, 123, 123, 123, 123, 123, 240, 240, 240, 240,
	305, 305, 305, 318, 318, 343, 351, 358, 364, 240, 240, 240, 240, 240, 240,
	240, 240, 305, 305, 305, 305, 343, 343, 343, 351, 351, 370, 376, 382, 387,
}

// cacheBits50 holds the per-row pulse-count cost caches. Each row starts
// with its length (the maximum pseudo-pulse count); entry q is then the
// cumulative cost of q pseudo-pulses in 1/8 bits, minus one.
// Source: libopus celt/static_modes_float.h cache_bits50.
var cacheBits50 = [392]uint8{
	40, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 40, 15, 23, 28,
	31, 34, 36, 38, 39, 41, 42, 43, 44, 45, 46, 47, 47, 49, 50,
	51, 52, 53, 54, 55, 55, 57, 58, 59, 60, 61, 62, 63, 63, 65,
	66, 67, 68, 69, 70, 71, 71, 40, 20, 33, 41, 48, 53, 57, 61,
	64, 66, 69, 71, 73, 75, 76, 78, 80, 82, 85, 87, 89, 91, 92,
	94, 96, 98, 101, 103, 105, 107, 108, 110, 112, 114, 117, 119, 121, 123,
	124, 126, 128, 40, 23, 39, 51, 60, 67, 73, 79, 83, 87, 91, 94,
	97, 100, 102, 105, 107, 111, 115, 118, 121, 124, 126, 129, 131, 135, 139,
	142, 145, 148, 150, 153, 155, 159, 163, 166, 169, 172, 174, 177, 179, 35,
	28, 49, 65, 78, 89, 99, 107, 114, 120, 126, 132, 136, 141, 145, 149,
	153, 159, 165, 171, 176, 180, 185, 189, 192, 199, 205, 211, 216, 220, 225,
	229, 232, 239, 245, 251, 21, 33, 58, 79, 97, 112, 125, 137, 148, 157,
	166, 174, 182, 189, 195, 201, 207, 217, 227, 235, 243, 251, 17, 35, 63,
	86, 106, 123, 139, 152, 165, 177, 187, 197, 206, 214, 222, 230, 237, 250,
	25, 31, 55, 75, 91, 105, 117, 128, 138, 146, 154, 161, 168, 174, 180,
	185, 190, 200, 208, 215, 222, 229, 235, 240, 245, 255, 16, 36, 65, 89,
	110, 128, 144, 159, 173, 185, 196, 207, 217, 226, 234, 242, 250, 11, 41,
	74, 103, 128, 151, 172, 191, 209, 225, 241, 255, 9, 43, 79, 110, 138,
	163, 186, 207, 227, 246, 12, 39, 71, 99, 123, 144, 164, 182, 198, 214,
	228, 241, 253, 9, 44, 81, 113, 142, 168, 192, 214, 235, 255, 7, 49,
	90, 127, 160, 191, 220, 247, 6, 51, 95, 134, 170, 203, 234, 7, 47,
	87, 123, 155, 184, 212, 237, 6, 52, 97, 137, 174, 208, 240, 5, 57,
	106, 151, 192, 231, 5, 59, 111, 158, 202, 243, 5, 55, 103, 147, 187,
	224, 5, 60, 113, 161, 206, 248, 4, 65, 122, 175, 224, 4, 67, 127,
	182, 234,
}

// eMeans is the mean log-energy per band, quantized in Q4. Denormalisation
// adds these back to the decoded relative energies.
// Source: libopus celt/quant_bands.c eMeans.
var eMeans = [MaxBands]int{
	103, 100, 92, 85, 81, 77, 72, 70, 78, 75,
	73, 71, 78, 74, 69, 72, 70, 74, 76, 71, 60,
}

// Laplace model parameters for coarse energy, per band, scaled at decode
// time (prob << 7, decay << 6).
// Source: libopus celt/quant_bands.c e_prob_model (20 ms row).
var (
	probIntra = [MaxBands]uint32{
		22, 63, 74, 84, 92, 103, 96, 96, 101, 107,
		113, 118, 125, 118, 117, 135, 137, 157, 145, 97, 77,
	}
	probInter = [MaxBands]uint32{
		42, 96, 108, 111, 117, 123, 120, 119, 127, 134,
		139, 147, 152, 158, 154, 166, 173, 184, 184, 150, 139,
	}
	decayIntra = [MaxBands]uint32{
		178, 114, 82, 83, 82, 62, 72, 67, 73, 72,
		55, 52, 52, 52, 55, 49, 39, 32, 29, 33, 40,
	}
	decayInter = [MaxBands]uint32{
		121, 66, 43, 40, 44, 32, 36, 33, 33, 34,
		21, 23, 20, 25, 26, 21, 16, 13, 10, 13, 15,
	}
)

// Spread decision ICDF (Table 56 of RFC 6716).
var spreadICDF = [4]uint8{25, 23, 2, 0}

// Allocation trim ICDF (Table 58 of RFC 6716).
var trimICDF = [11]uint8{126, 124, 119, 109, 87, 41, 19, 9, 4, 2, 0}

// Post-filter tapset ICDF.
var tapsetICDF = [3]uint8{2, 1, 0}

// Comb-filter tap gains by tapset, scaled for the 3-tap symmetric form.
// Source: libopus celt/celt.c gains.
var combGains = [3][3]float32{
	{0.3066406250, 0.2170410156, 0.1296386719},
	{0.4638671875, 0.2680664062, 0.0},
	{0.7998046875, 0.1000976562, 0.0},
}
