package player

import (
	"bytes"
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-audio-player/graph"
)

// SourceAudio is decoded source material. It is never modified after import.
type SourceAudio = graph.AudioBuffer

// Decoder turns encoded audio into SourceAudio.
type Decoder interface {
	Decode(data []byte) (*SourceAudio, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte) (*SourceAudio, error)

// Decode calls f(data).
func (f DecoderFunc) Decode(data []byte) (*SourceAudio, error) {
	return f(data)
}

// WAVDecoder decodes PCM WAV files of 8, 16, 24 or 32 bits.
var WAVDecoder Decoder = DecoderFunc(DecodeWAV)

// DecodeWAV decodes a mono or stereo PCM WAV file.
func DecodeWAV(data []byte) (*SourceAudio, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrDecode)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	bitDepth := int(decoder.BitDepth)
	return fromIntBuffer(buf, bitDepth)
}

// fromIntBuffer deinterleaves and normalises decoded PCM.
func fromIntBuffer(buf *audio.IntBuffer, bitDepth int) (*SourceAudio, error) {
	if buf.Format == nil {
		return nil, fmt.Errorf("%w: missing format", ErrDecode)
	}

	channels := buf.Format.NumChannels
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannelLayout, channels)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrDecode, buf.Format.SampleRate)
	}

	scale, offset, err := pcmScale(bitDepth)
	if err != nil {
		return nil, err
	}

	frames := len(buf.Data) / channels
	src := graph.NewAudioBuffer(channels, frames, buf.Format.SampleRate)
	inv := 1.0 / scale
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			v := buf.Data[i*channels+ch] - offset
			src.Channels[ch][i] = float32(float64(v) * inv)
		}
	}
	return src, nil
}

// pcmScale returns the full-scale value and zero offset for a bit depth.
func pcmScale(bitDepth int) (float64, int, error) {
	switch bitDepth {
	case bitsPerSample8:
		return fullScale8, unsigned8Offset, nil
	case bitsPerSample16:
		return fullScale16, 0, nil
	case bitsPerSample24:
		return fullScale24, 0, nil
	case bitsPerSample32:
		return fullScale32, 0, nil
	default:
		return 0, 0, fmt.Errorf("%w: unsupported bit depth %d", ErrDecode, bitDepth)
	}
}
