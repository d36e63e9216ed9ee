// Package wavenc serializes planar float samples into 16-bit PCM WAV bytes.
package wavenc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-player/internal/simdops"
)

// ErrUnsupportedChannelLayout indicates a channel count other than one or
// two, or channels of unequal length.
var ErrUnsupportedChannelLayout = errors.New("unsupported channel layout")

// ErrDataTooLarge indicates audio whose data chunk does not fit the 32-bit
// RIFF size fields.
var ErrDataTooLarge = errors.New("audio too large for WAV")

// Encode returns a complete WAV file holding the given channels at
// sampleRate. Samples are clamped to [-1, 1] and quantized to 16 bits.
func Encode(channels [][]float32, sampleRate int) ([]byte, error) {
	numChannels := len(channels)
	if numChannels != monoChannels && numChannels != stereoChannels {
		return nil, fmt.Errorf("%w: %d channels (want 1 or 2)", ErrUnsupportedChannelLayout, numChannels)
	}

	frames := len(channels[0])
	for ch, data := range channels[1:] {
		if len(data) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, channel 0 has %d",
				ErrUnsupportedChannelLayout, ch+1, len(data), frames)
		}
	}

	if err := CheckDataSize(frames, numChannels); err != nil {
		return nil, err
	}

	dataSize := frames * numChannels * bytesPerSample
	out := make([]byte, HeaderSize+dataSize)
	writeHeader(out[:HeaderSize], numChannels, sampleRate, dataSize)
	writeSamples(out[HeaderSize:], interleave(channels))

	return out, nil
}

// CheckDataSize reports whether frames of the given channel count can be
// stored in one WAV file.
func CheckDataSize(frames, channels int) error {
	if frames < 0 || channels < 0 {
		return fmt.Errorf("%w: %d frames, %d channels", ErrUnsupportedChannelLayout, frames, channels)
	}
	size := uint64(frames) * uint64(channels) * bytesPerSample
	if size > MaxDataSize {
		return fmt.Errorf("%w: %d data bytes, limit %d", ErrDataTooLarge, size, uint64(MaxDataSize))
	}
	return nil
}

// writeHeader fills the 44-byte RIFF/WAVE header.
func writeHeader(header []byte, channels, sampleRate, dataSize int) {
	byteRate := sampleRate * channels * bytesPerSample
	blockAlign := channels * bytesPerSample

	// RIFF header
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(riffSizeOverhead+dataSize))
	copy(header[8:12], "WAVE")

	// fmt subchunk
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], pcmSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], pcmAudioFormat)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], BitsPerSample)

	// data subchunk
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))
}

// interleave returns samples in frame order. Mono input is returned as is.
func interleave(channels [][]float32) []float32 {
	if len(channels) == monoChannels {
		return channels[0]
	}
	out := make([]float32, len(channels[0])*stereoChannels)
	simdops.Float32Ops().Interleave2(out, channels[0], channels[1])
	return out
}

// writeSamples quantizes samples into buf as little-endian int16.
func writeSamples(buf []byte, samples []float32) {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*bytesPerSample:], uint16(Quantize(float64(s))))
	}
}

// Quantize maps a sample in [-1, 1] to int16, truncating toward zero.
// Out-of-range samples are clamped and NaN becomes silence.
func Quantize(v float64) int16 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	}

	if v < 0 {
		return int16(v * negativeScale)
	}
	return int16(v * positiveScale)
}
