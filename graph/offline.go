package graph

import (
	"context"
	"fmt"
	"sync"
)

// OfflineContext renders its graph as fast as possible into a buffer of
// fixed shape. It renders exactly once.
type OfflineContext struct {
	modules

	channels   int
	length     int
	sampleRate int

	mu       sync.Mutex
	inputs   []Renderer
	rendered bool
}

// NewOfflineContext creates a context that renders length frames of the
// given channel count at sampleRate.
func NewOfflineContext(channels, length, sampleRate int) (*OfflineContext, error) {
	switch {
	case channels < 1:
		return nil, fmt.Errorf("%w: channel count must be positive, got %d", ErrInvalidBuffer, channels)
	case length < 0:
		return nil, fmt.Errorf("%w: length must not be negative, got %d", ErrInvalidBuffer, length)
	case sampleRate <= 0:
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidBuffer, sampleRate)
	}

	return &OfflineContext{
		channels:   channels,
		length:     length,
		sampleRate: sampleRate,
	}, nil
}

// SampleRate returns the render sample rate.
func (c *OfflineContext) SampleRate() int {
	return c.sampleRate
}

// Length returns the render length in frames.
func (c *OfflineContext) Length() int {
	return c.length
}

// NumberOfChannels returns the render channel count.
func (c *OfflineContext) NumberOfChannels() int {
	return c.channels
}

// AddModule loads and registers m.
func (c *OfflineContext) AddModule(ctx context.Context, m Module) error {
	return c.add(ctx, m, c.sampleRate)
}

// HasModule reports whether a module is registered.
func (c *OfflineContext) HasModule(name string) bool {
	return c.has(name)
}

// Destination returns the render target.
func (c *OfflineContext) Destination() Sink {
	return offlineDestination{c}
}

// StartRendering pulls every attached renderer block by block until the
// buffer is full. Cancelling ctx aborts between blocks.
func (c *OfflineContext) StartRendering(ctx context.Context) (*AudioBuffer, error) {
	c.mu.Lock()
	if c.rendered {
		c.mu.Unlock()
		return nil, ErrAlreadyRendered
	}
	c.rendered = true
	inputs := append([]Renderer(nil), c.inputs...)
	c.mu.Unlock()

	out := NewAudioBuffer(c.channels, c.length, c.sampleRate)
	var scratch [][]float32
	block := make([][]float32, c.channels)

	for offset := 0; offset < c.length; offset += BlockFrames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frames := min(BlockFrames, c.length-offset)
		for ch := range block {
			block[ch] = out.Channels[ch][offset : offset+frames]
		}
		scratch = resizePlanar(scratch, c.channels, frames)
		mixInto(block, scratch, inputs)
	}

	return out, nil
}

func (c *OfflineContext) attach(r Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, in := range c.inputs {
		if in == r {
			return
		}
	}
	c.inputs = append(c.inputs, r)
}

func (c *OfflineContext) detach(r Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs = removeRenderer(c.inputs, r)
}

type offlineDestination struct {
	c *OfflineContext
}

func (d offlineDestination) Attach(r Renderer) { d.c.attach(r) }
func (d offlineDestination) Detach(r Renderer) { d.c.detach(r) }
