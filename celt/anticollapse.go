package celt

import "math"

// antiCollapse injects noise into the time sub-blocks of a transient frame
// that decoded to silence, per RFC 6716 Section 4.3.5. The injected level
// follows the band's energy drop against the two previous frames, capped
// by a threshold derived from the band's bit depth, and the band is
// renormalised afterwards.
func antiCollapse(x []float32, collapseMasks []uint8, logE, prev1LogE, prev2LogE []float32, pulses []int, seed uint32) {
	for i := 0; i < MaxBands; i++ {
		n0 := bandWidth(i)
		depth := (1 + pulses[i]) / n0 / 8
		thresh := float32(math.Exp2(-float64(depth)/8.0) / 2.0)
		for c := 0; c < Channels; c++ {
			prevMin := prev1LogE[MaxBands*c+i]
			if prev2LogE[MaxBands*c+i] < prevMin {
				prevMin = prev2LogE[MaxBands*c+i]
			}
			eDiff := prevMin - logE[MaxBands*c+i]
			band := x[len(x)/2*c+8*eBands[i] : len(x)/2*c+8*eBands[i+1]]

			r := float32(math.Exp2(float64(eDiff)) * 2.0 * math.Sqrt2)
			if r > thresh {
				r = thresh
			}
			r /= float32(math.Sqrt(float64(len(band))))

			renorm := false
			for k := 0; k < 8; k++ {
				if collapseMasks[i*2+c]&(1<<uint(k)) != 0 {
					continue
				}
				for j := 0; j < n0; j++ {
					seed = lcgRand(seed)
					if seed&0x8000 != 0 {
						band[k+j*8] = r
					} else {
						band[k+j*8] = -r
					}
				}
				renorm = true
			}
			if renorm {
				renormalise(band, 1.0)
			}
		}
	}
}
