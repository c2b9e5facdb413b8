package celt

import "github.com/kaldmaer/gocelt/rangecoding"

// Bit allocation per RFC 6716 Section 4.3.3. The decoder mirrors the
// encoder's deterministic allocation: a binary search over the static
// quality matrix, a 64-step interpolation to land exactly on the budget,
// the top-down skip loop, and the stereo parameter reservations. Only the
// skip flags, the intensity index, and the dual-stereo bit are read from
// the bitstream.

const numQualities = 11

// maxFineBits caps per-band fine energy depth, as in libopus MAX_FINE_BITS.
const maxFineBits = 8

// allocation is the outcome of computeAllocation.
type allocation struct {
	pulses       [MaxBands]int // Shape budget per band, 1/8 bits
	fineBits     [MaxBands]int // Fine energy bits per band per channel
	finePriority [MaxBands]int
	intensity    int
	dualStereo   bool
	codedBands   int
}

// computeAllocation distributes the remaining frame budget across bands.
// length is the payload size in bytes; boosts come from the dynalloc loop.
func computeAllocation(ec *rangecoding.Decoder, length int, boosts []int, allocationTrim int, isTransient bool) allocation {
	var out allocation

	// One eighth-bit is held back so the allocation stays conservative.
	total := length*8*8 - ec.TellFrac() - 1
	antiCollapseRsv := 0
	if isTransient && LM > 1 && total >= (LM+2)*8 {
		antiCollapseRsv = 8
	}
	total -= antiCollapseRsv
	if total < 0 {
		total = 0
	}
	skipRsv := 0
	if total > 8 {
		skipRsv = 8
	}
	total -= skipRsv

	intensityRsv := log2Frac8(MaxBands + 1)
	dualStereoRsv := 0
	if intensityRsv > total {
		intensityRsv = 0
	} else {
		dualStereoRsv = 8
		total -= intensityRsv + 8
	}

	var thresh, trimOffsets [MaxBands]int
	for i := 0; i < MaxBands; i++ {
		// Minimum useful shape allocation: one bit per channel or
		// 24 128th bits per bin, whichever is greater. Below this a
		// band is better left to folding.
		thresh[i] = maxInt(24*(bandWidth(i)<<LM)/16, 8*Channels)
		trimOffsets[i] = bandWidth(i) * (allocationTrim - 5 - LM) * Channels * (MaxBands - 1 - i)
	}

	// Find the highest quality row whose total fits the budget.
	lo := 1
	hi := numQualities - 1
	for lo <= hi {
		mid := (lo + hi) / 2
		sum := 0
		for i := 0; i < MaxBands; i++ {
			bits := Channels * bandWidth(i) * bandAlloc[mid][i] << LM >> 2
			bits = maxInt(0, bits+trimOffsets[i])
			bits += boosts[i]
			if bits >= thresh[i] {
				sum += bits
			} else {
				sum += 8 * Channels
			}
		}
		if sum > total {
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	hi = minInt(lo, numQualities-1)
	lo = hi - 1

	var bits1, bits2 [MaxBands]int
	skipStart := 0
	for i := 0; i < MaxBands; i++ {
		bits1[i] = Channels * bandWidth(i) * bandAlloc[lo][i] << LM >> 2
		bits2[i] = Channels * bandWidth(i) * bandAlloc[hi][i] << LM >> 2
		bits1[i] = maxInt(0, bits1[i]+trimOffsets[i])
		bits2[i] = maxInt(0, bits2[i]+trimOffsets[i])
		bits1[i] += boosts[i]
		bits2[i] += boosts[i]
		if boosts[i] > 0 {
			skipStart = i
		}
	}

	out.codedBands = interpBits2Pulses(ec, skipStart, bits1[:], bits2[:], thresh[:], total,
		&out.intensity, intensityRsv, &out.dualStereo, dualStereoRsv,
		out.pulses[:], out.fineBits[:], out.finePriority[:])
	return out
}

// allocLerp interpolates band allocations between two quality rows in
// 64ths, summing the effective cost with the per-band minimum applied.
func allocLerp(bits1, bits2, thresh []int, t int) int {
	sum := 0
	for i := 0; i < MaxBands; i++ {
		bits := bits1[i] + (bits2[i]-bits1[i])*t/64
		if bits >= thresh[i] {
			sum += bits
		} else {
			sum += 8 * Channels
		}
	}
	return sum
}

// allocInterpStep finds the largest interpolation step whose total still
// fits. Six halvings resolve the full 0..64 range.
func allocInterpStep(bits1, bits2, thresh []int, total int) int {
	lo, hi := 0, 64
	for i := 0; i < 6; i++ {
		mid := (lo + hi) / 2
		if allocLerp(bits1, bits2, thresh, mid) > total {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

// allocAtStep fills bits with the interpolated allocation, flooring bands
// below their threshold to 16 (the fine-energy minimum) or to nothing.
func allocAtStep(bits, bits1, bits2, thresh []int, t int) {
	for i := 0; i < MaxBands; i++ {
		b := bits1[i] + (bits2[i]-bits1[i])*t/64
		if b < thresh[i] {
			if b >= 16 {
				b = 16
			} else {
				b = 0
			}
		}
		bits[i] = b
	}
}

// interpBits2Pulses converts the interpolated allocation into final
// per-band budgets: the skip loop walks bands from the top deciding where
// coding stops, the stereo parameters are decoded from their reservations,
// leftovers are spread per coefficient, and each coded band's budget is
// split between shape and fine energy.
func interpBits2Pulses(ec *rangecoding.Decoder, skipStart int, bits1, bits2, thresh []int,
	total int, intensity *int, intensityRsv int, dualStereo *bool, dualStereoRsv int,
	bits, ebits, finePriority []int) int {
	t := allocInterpStep(bits1, bits2, thresh, total)
	allocAtStep(bits, bits1, bits2, thresh, t)

	sum := 0
	for i := 0; i < MaxBands; i++ {
		sum += bits[i]
	}

	codedBands := 0
	for i := MaxBands - 1; i >= 0; i-- {
		if i <= skipStart {
			// This band is boosted; coding cannot stop below it.
			total += 8
			codedBands = i + 1
			break
		}
		percoeff := (total - sum) / eBands[i+1]
		left := (total - sum) % eBands[i+1]
		bandBits := bits[i] + percoeff*bandWidth(i) + maxInt(left-eBands[i], 0)
		if bandBits >= thresh[i] {
			if ec.DecodeBit(1) == 1 {
				codedBands = i + 1
				break
			}
			sum += 8
			bandBits -= 8
		}
		sum -= bits[i] + intensityRsv
		if intensityRsv > 0 {
			intensityRsv = log2Frac8(i + 1)
		}
		sum += intensityRsv
		if bandBits >= 16 {
			// Keep the fine-energy minimum for the skipped band.
			sum += 16
			bits[i] = 16
		} else {
			bits[i] = 0
		}
	}

	*intensity = 0
	if intensityRsv > 0 {
		*intensity = int(ec.DecodeUniform(uint32(codedBands) + 1))
	}
	if *intensity == 0 {
		total += dualStereoRsv
		dualStereoRsv = 0
	}
	*dualStereo = dualStereoRsv > 0 && ec.DecodeBit(1) == 1

	// Spread what is left evenly per coefficient, remainder to the lowest
	// bands first.
	percoeff := (total - sum) / eBands[codedBands]
	left := (total - sum) % eBands[codedBands]
	for i := 0; i < codedBands; i++ {
		bits[i] += percoeff * bandWidth(i)
	}
	for i := 0; i < codedBands; i++ {
		tmp := minInt(left, bandWidth(i))
		bits[i] += tmp
		left -= tmp
	}

	for i := 0; i < codedBands; i++ {
		n := bandWidth(i) * 8
		den := 2*n + 1
		if *dualStereo {
			den = 2 * n
		}
		ncLogN := den * log2Frac8(n)
		offset := ncLogN/2 - den*21
		if bits[i]+offset < den*2*8 {
			offset += ncLogN / 4
		} else if bits[i]+offset < den*3*8 {
			offset += ncLogN / 8
		}

		ebits[i] = maxInt(0, bits[i]+offset+den*4) / den / 8
		ebits[i] = minInt(ebits[i], maxFineBits)
		if ebits[i]*den*8 >= bits[i]+offset {
			finePriority[i] = 1
		} else {
			finePriority[i] = 0
		}
		bits[i] -= 2 * ebits[i] * 8
	}

	// Uncoded bands keep fine energy only.
	for i := codedBands; i < MaxBands; i++ {
		ebits[i] = bits[i] / 16
		bits[i] = 0
		finePriority[i] = 0
	}

	return codedBands
}
