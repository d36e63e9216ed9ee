package graph

import "fmt"

// AudioBuffer holds planar float32 samples at a fixed sample rate.
//
// A buffer handed to a node or returned from a render is treated as
// immutable: callers must not modify it after sharing it.
type AudioBuffer struct {
	// SampleRate in Hz.
	SampleRate int

	// Channels holds one sample slice per channel, all of equal length.
	Channels [][]float32
}

// NewAudioBuffer allocates a silent buffer.
func NewAudioBuffer(channels, frames, sampleRate int) *AudioBuffer {
	return &AudioBuffer{
		SampleRate: sampleRate,
		Channels:   makePlanar(channels, frames),
	}
}

// NumberOfChannels returns the channel count.
func (b *AudioBuffer) NumberOfChannels() int {
	return len(b.Channels)
}

// Length returns the number of frames.
func (b *AudioBuffer) Length() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b *AudioBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Length()) / float64(b.SampleRate)
}

// ChannelData returns the samples of channel ch.
func (b *AudioBuffer) ChannelData(ch int) []float32 {
	return b.Channels[ch]
}

// Validate checks that the buffer has a positive sample rate, at least one
// channel and equal channel lengths.
func (b *AudioBuffer) Validate() error {
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidBuffer, b.SampleRate)
	}
	if len(b.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}
	frames := len(b.Channels[0])
	for ch, data := range b.Channels {
		if len(data) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, want %d", ErrInvalidBuffer, ch, len(data), frames)
		}
	}
	return nil
}
