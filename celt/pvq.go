package celt

import (
	"math"

	"github.com/kaldmaer/gocelt/rangecoding"
)

// PVQ shape decoding per RFC 6716 Section 4.3.4: codeword expansion,
// collapse-mask extraction, renormalisation, and the spreading rotation
// that softens tonal artifacts.

// spreadFactor maps the decoded spread parameter to f_r in the rotation
// gain g_r = N / (N + f_r*K). Spread 0 disables rotation entirely.
var spreadFactor = [4]int{0, 15, 10, 5}

const (
	spreadNone       = 0
	spreadNormal     = 2
	spreadAggressive = 3
)

// algUnquant decodes one PVQ codeword of k pulses into x, extracts the
// per-block collapse mask, scales to the target gain, and applies the
// spreading rotation when the vector is sparse (2k < N).
func algUnquant(x []float32, k, spread, blocks int, ec *rangecoding.Decoder, gain float32, v *pvqTable) uint32 {
	decodePulses(x, k, ec, v)
	mask := extractCollapseMask(x, blocks)
	renormalise(x, gain)
	if 2*k < len(x) {
		spreadVector(x, blocks, k, spread)
	}
	return mask
}

// extractCollapseMask records, one bit per time block, whether the block
// holds any non-zero pulse. Callers use it for folding and anti-collapse.
func extractCollapseMask(x []float32, blocks int) uint32 {
	if blocks <= 1 {
		return 1
	}
	n := len(x) / blocks
	var mask uint32
	for i := 0; i < blocks; i++ {
		sum := int32(0)
		for j := 0; j < n; j++ {
			sum |= int32(x[i*n+j])
		}
		if sum != 0 {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// spreadVector rotates the decoded vector to spread pulse energy across
// neighbouring bins. Each time block is rotated independently; blocks of 8
// or more samples additionally get a strided pre-rotation by pi/2 - theta.
func spreadVector(x []float32, blocks, k, spread int) {
	if spread == spreadNone {
		return
	}
	n := len(x)
	gain := float64(n) / float64(n+spreadFactor[spread]*k)
	theta := math.Pi * gain * gain / 4.0

	nPerBlock := n / blocks
	if nPerBlock >= 8 {
		stride := int(math.Round(math.Sqrt(float64(nPerBlock))))
		for i := 0; i < blocks; i++ {
			rotateBlock(x[nPerBlock*i:nPerBlock*(i+1)], stride, math.Pi/2.0-theta)
		}
	}
	for i := 0; i < blocks; i++ {
		rotateBlock(x[nPerBlock*i:nPerBlock*(i+1)], 1, theta)
	}
}

// rotateBlock applies the N-D rotation as a forward sweep of 2-D Givens
// rotations followed by a backward sweep over all but the last pair.
func rotateBlock(x []float32, stride int, theta float64) {
	c := float32(math.Cos(theta))
	s := float32(math.Sin(theta))
	if stride > len(x) {
		return
	}
	for i := 0; i < len(x)-stride; i++ {
		tmp := x[i]
		x[i] = x[i]*c - x[i+stride]*s
		x[i+stride] = tmp*s + x[i+stride]*c
	}
	if stride*2 > len(x) {
		return
	}
	for i := len(x) - stride*2 - 1; i >= 0; i-- {
		tmp := x[i]
		x[i] = x[i]*c - x[i+stride]*s
		x[i+stride] = tmp*s + x[i+stride]*c
	}
}
