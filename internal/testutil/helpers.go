// Package testutil provides reusable test helpers for player tests: tone
// generators, WAV fixtures written by an independent encoder, and header
// assertions.
package testutil

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-player/graph"
	"github.com/tphakala/go-audio-player/internal/simdops"
)

// PCM16Tolerance is one 16-bit quantization step.
const PCM16Tolerance = 1.0 / 32768

// wavHeaderSize is the canonical PCM header length.
const wavHeaderSize = 44

// Sine returns frames samples of a sine tone at freq Hz.
func Sine(frames, sampleRate int, freq, amplitude float64) []float32 {
	out := make([]float32, frames)
	for i := range out {
		out[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

// SineBuffer returns a buffer with the same sine tone on every channel.
func SineBuffer(channels, frames, sampleRate int, freq float64) *graph.AudioBuffer {
	buf := &graph.AudioBuffer{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for ch := range buf.Channels {
		buf.Channels[ch] = Sine(frames, sampleRate, freq, 0.5)
	}
	return buf
}

// EncodePCM writes interleaved integer samples to a WAV file with
// go-audio/wav and returns its bytes.
func EncodePCM(t *testing.T, data []int, channels, sampleRate, bitDepth int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	return out
}

// EncodeSine16 returns a 16-bit WAV file holding a sine tone on every channel.
func EncodeSine16(t *testing.T, channels, frames, sampleRate int, freq float64) []byte {
	t.Helper()

	tone := Sine(frames, sampleRate, freq, 0.5)
	data := make([]int, frames*channels)
	for i, v := range tone {
		for ch := 0; ch < channels; ch++ {
			data[i*channels+ch] = int(v * math.MaxInt16)
		}
	}
	return EncodePCM(t, data, channels, sampleRate, 16)
}

// AssertWAVHeader verifies the canonical 16-bit PCM header fields.
func AssertWAVHeader(t *testing.T, data []byte, channels, sampleRate, frames int) bool {
	t.Helper()
	if !assert.GreaterOrEqual(t, len(data), wavHeaderSize, "WAV shorter than header") {
		return false
	}

	dataSize := frames * channels * 2
	ok := assert.Equal(t, "RIFF", string(data[0:4]))
	ok = assert.Equal(t, uint32(36+dataSize), binary.LittleEndian.Uint32(data[4:8]), "RIFF size") && ok
	ok = assert.Equal(t, "WAVE", string(data[8:12])) && ok
	ok = assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]), "audio format") && ok
	ok = assert.Equal(t, uint16(channels), binary.LittleEndian.Uint16(data[22:24]), "channels") && ok
	ok = assert.Equal(t, uint32(sampleRate), binary.LittleEndian.Uint32(data[24:28]), "sample rate") && ok
	ok = assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]), "bits per sample") && ok
	ok = assert.Equal(t, "data", string(data[36:40])) && ok
	ok = assert.Equal(t, uint32(dataSize), binary.LittleEndian.Uint32(data[40:44]), "data size") && ok
	ok = assert.Len(t, data, wavHeaderSize+dataSize) && ok
	return ok
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
// A finite sum proves every element finite; otherwise the slice is scanned
// to report the first offender.
func AssertNoNaNOrInf[F simdops.Float](t *testing.T, s []F) bool {
	t.Helper()
	if sum := float64(simdops.For[F]().Sum(s)); !math.IsNaN(sum) && !math.IsInf(sum, 0) {
		return true
	}
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	// Finite elements whose sum overflows.
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange[F simdops.Float](t *testing.T, s []F, minVal, maxVal float64) bool {
	t.Helper()
	for i, v := range s {
		if f := float64(v); f < minVal || f > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, f, minVal, maxVal)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}
