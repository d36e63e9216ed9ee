package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	player "github.com/tphakala/go-audio-player"
	"github.com/tphakala/go-audio-player/internal/wavenc"
)

const bytesPerFrame = 4 // two int16 samples

// resolveOutputPath returns explicit if set, otherwise the export name of
// input placed in dir, or next to the input when dir is empty.
func resolveOutputPath(input, explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, player.ExportFileName(filepath.Base(input)))
}

// writeBlob writes blob to path.
func writeBlob(path string, blob *player.WavBlob) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := blob.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return f.Close()
}

// encodeS16LE appends frames to dst as interleaved little-endian int16,
// quantized like the WAV export.
func encodeS16LE(dst []byte, frames [][2]float64) []byte {
	need := len(frames) * bytesPerFrame
	if cap(dst) < need {
		dst = make([]byte, 0, need)
	}
	dst = dst[:need]

	for i, f := range frames {
		binary.LittleEndian.PutUint16(dst[i*bytesPerFrame:], uint16(wavenc.Quantize(f[0])))
		binary.LittleEndian.PutUint16(dst[i*bytesPerFrame+2:], uint16(wavenc.Quantize(f[1])))
	}
	return dst
}
