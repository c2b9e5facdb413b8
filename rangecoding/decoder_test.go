package rangecoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestInitTellIsOne(t *testing.T) {
	var d Decoder
	d.Init([]byte{0x00, 0x00, 0x00, 0x00})
	// One bit is consumed by the initial normalization regardless of
	// content, matching ec_tell() == 1 after ec_dec_init in libopus.
	assert.Equal(t, 1, d.Tell())
}

func TestSilenceFlagAllOnes(t *testing.T) {
	var d Decoder
	d.Init([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	// An all-ones payload drives value to zero, which decodes the rare
	// branch of the most skewed symbol the format uses (logp = 15).
	assert.Equal(t, 1, d.DecodeBit(15))
}

func TestZeroBufferDecodesZeros(t *testing.T) {
	var d Decoder
	d.Init([]byte{0x00, 0x00, 0x00, 0x00, 0x00})
	for i := 0; i < 8; i++ {
		assert.Equal(t, 0, d.DecodeBit(4), "bit %d", i)
	}
}

func TestEmptyBufferIsDeterministic(t *testing.T) {
	var d1, d2 Decoder
	d1.Init(nil)
	d2.Init(nil)
	for i := 0; i < 16; i++ {
		require.Equal(t, d1.DecodeBit(3), d2.DecodeBit(3))
	}
	assert.Equal(t, d1.Tell(), d2.Tell())
}

func TestDecodeBitsFromTail(t *testing.T) {
	var d Decoder
	d.Init([]byte{0x01, 0x02, 0x03, 0x04, 0xAB})

	// Raw bits come from the last byte first, low bits first.
	assert.Equal(t, uint32(0xB), d.DecodeBits(4))
	assert.Equal(t, uint32(0xA), d.DecodeBits(4))

	head, tail := d.BytesSpanned()
	assert.Equal(t, 1, tail)
	assert.LessOrEqual(t, head+tail, 5)
}

func TestDecodeBitsCountsTowardTell(t *testing.T) {
	var d Decoder
	d.Init([]byte{0x55, 0xAA, 0x55, 0xAA})
	before := d.Tell()
	d.DecodeBits(7)
	assert.Equal(t, before+7, d.Tell())
}

func TestTellFracMatchesTell(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		buf := rapid.SliceOfN(rapid.Byte(), 2, 64).Draw(t, "buf")
		var d Decoder
		d.Init(buf)
		for i := 0; i < 10; i++ {
			d.DecodeBit(uint(rapid.IntRange(1, 15).Draw(t, "logp")))
			tell := d.Tell()
			frac := d.TellFrac()
			// TellFrac rounds the same consumption up to 1/8 bit.
			assert.GreaterOrEqual(t, frac, 8*(tell-1))
			assert.LessOrEqual(t, frac, 8*tell)
		}
	})
}

func TestRangeInvariantAfterEveryOp(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		buf := rapid.SliceOfN(rapid.Byte(), 0, 80).Draw(t, "buf")
		var d Decoder
		d.Init(buf)
		require.Greater(t, d.Range(), uint32(1<<23))
		for i := 0; i < 32; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				d.DecodeBit(uint(rapid.IntRange(1, 15).Draw(t, "logp")))
			case 1:
				ft := uint32(rapid.IntRange(2, 1<<16).Draw(t, "ft"))
				v := d.DecodeUniform(ft)
				require.Less(t, v, ft)
			case 2:
				icdf := []uint8{25, 23, 2, 0}
				k := d.DecodeICDF(icdf, 5)
				require.Less(t, k, len(icdf))
			case 3:
				d.DecodeBits(uint(rapid.IntRange(1, 25).Draw(t, "nbits")))
			}
			require.Greater(t, d.Range(), uint32(1<<23))
		}
	})
}

func TestDecodeUniformSmallRange(t *testing.T) {
	// A two-symbol uniform draw must consume about one bit.
	var d Decoder
	d.Init([]byte{0x80, 0x33, 0x1C, 0x7F})
	before := d.TellFrac()
	v := d.DecodeUniform(2)
	assert.Less(t, v, uint32(2))
	assert.InDelta(t, 8, d.TellFrac()-before, 8)
}

func TestDecodeICDFTerminates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		buf := rapid.SliceOfN(rapid.Byte(), 1, 32).Draw(t, "buf")
		var d Decoder
		d.Init(buf)
		trim := []uint8{126, 124, 119, 109, 87, 41, 19, 9, 4, 2, 0}
		for i := 0; i < 4; i++ {
			k := d.DecodeICDF(trim, 7)
			require.GreaterOrEqual(t, k, 0)
			require.Less(t, k, len(trim))
		}
	})
}
