// Command celtdec decodes a stream of CELT frames to raw PCM.
//
// The input uses the opus_demo interchange framing: each packet is a
// 4-byte big-endian payload length and a 4-byte big-endian final range
// checksum, followed by the payload (TOC byte plus CELT frame). Output is
// interleaved stereo float32 samples, little endian.
//
// Usage:
//
//	celtdec -i stream.bin -o out.f32
//	celtdec -i stream.bin -o out.f32 --verify-range -v
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/kaldmaer/gocelt/celt"
)

const maxPacketSize = 1500

func main() {
	input := pflag.StringP("input", "i", "", "input frame stream (opus_demo framing)")
	output := pflag.StringP("output", "o", "", "output raw PCM file (f32le, interleaved stereo)")
	verifyRange := pflag.Bool("verify-range", false, "compare the decoder's final range against the recorded checksum")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false, Prefix: "celtdec"})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if *input == "" || *output == "" {
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(logger, *input, *output, *verifyRange); err != nil {
		logger.Fatal("decode failed", "err", err)
	}
}

func run(logger *log.Logger, input, output string, verifyRange bool) error {
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	dec := celt.NewDecoder(nil)
	pcm := make([]float32, 2*celt.FrameSize)
	pcmBytes := make([]byte, 8*celt.FrameSize)
	var header [8]byte
	packet := make([]byte, maxPacketSize)

	frames := 0
	mismatches := 0
	for {
		if _, err := io.ReadFull(in, header[:]); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("packet header: %w", err)
		}
		size := binary.BigEndian.Uint32(header[:4])
		wantRange := binary.BigEndian.Uint32(header[4:])
		if size < 2 || size > maxPacketSize {
			return fmt.Errorf("packet %d: bad payload size %d", frames, size)
		}
		if _, err := io.ReadFull(in, packet[:size]); err != nil {
			return fmt.Errorf("packet %d payload: %w", frames, err)
		}

		n := dec.Decode(packet[:size], pcm)
		if verifyRange && dec.FinalRange() != wantRange {
			mismatches++
			logger.Warn("final range mismatch", "packet", frames,
				"got", fmt.Sprintf("%#x", dec.FinalRange()),
				"want", fmt.Sprintf("%#x", wantRange))
		}
		logger.Debug("decoded packet", "packet", frames, "bytes", size, "samples", n)

		for i, s := range pcm[:2*n] {
			binary.LittleEndian.PutUint32(pcmBytes[4*i:], math.Float32bits(s))
		}
		if _, err := out.Write(pcmBytes[:8*n]); err != nil {
			return fmt.Errorf("write pcm: %w", err)
		}
		frames++
	}

	logger.Info("done", "frames", frames, "duration", fmt.Sprintf("%.2fs", float64(frames)*0.02))
	if verifyRange {
		if mismatches > 0 {
			return fmt.Errorf("%d of %d packets failed the range check", mismatches, frames)
		}
		logger.Info("all range checksums match", "frames", frames)
	}
	return nil
}
