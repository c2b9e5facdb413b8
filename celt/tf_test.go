package celt

import (
	"testing"

	"github.com/kaldmaer/gocelt/rangecoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTfDecodeRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		buf := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "buf")
		transient := rapid.Bool().Draw(t, "transient")
		var ec rangecoding.Decoder
		ec.Init(buf)
		tfRes := make([]int, MaxBands)
		tfDecode(&ec, transient, tfRes)
		for i, v := range tfRes {
			require.GreaterOrEqual(t, v, -3, "band %d", i)
			require.LessOrEqual(t, v, 3, "band %d", i)
		}
	})
}

func TestTfDecodeZeroBufferLongFrame(t *testing.T) {
	// Zero payload decodes no change flags; the long-frame table maps
	// the all-zero pattern to no TF adjustment.
	var ec rangecoding.Decoder
	ec.Init(make([]byte, 16))
	tfRes := make([]int, MaxBands)
	tfDecode(&ec, false, tfRes)
	for i, v := range tfRes {
		assert.Zero(t, v, "band %d", i)
	}
}

func TestTfDecodeEmptyBufferDeterministic(t *testing.T) {
	run := func() []int {
		var ec rangecoding.Decoder
		ec.Init(nil)
		tfRes := make([]int, MaxBands)
		tfDecode(&ec, true, tfRes)
		return tfRes
	}
	assert.Equal(t, run(), run())
}
