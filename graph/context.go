package graph

import (
	"context"
	"fmt"
	"sync"
)

// Module is a processor implementation that must be registered on a
// context before nodes using it can be constructed there.
type Module interface {
	// Name identifies the module on a context.
	Name() string

	// Load prepares the module for a context running at sampleRate.
	Load(ctx context.Context, sampleRate int) error
}

// Context is an audio processing context.
type Context interface {
	// SampleRate returns the rate the context renders at.
	SampleRate() int

	// AddModule loads m and registers it on the context.
	// Registering a module twice is a no-op.
	AddModule(ctx context.Context, m Module) error

	// HasModule reports whether a module with the given name is registered.
	HasModule(name string) bool

	// Destination returns the sink that ends the context's graph.
	Destination() Sink
}

// modules tracks the modules registered on one context.
type modules struct {
	mu     sync.Mutex
	loaded map[string]struct{}
}

func (m *modules) add(ctx context.Context, mod Module, sampleRate int) error {
	name := mod.Name()

	m.mu.Lock()
	_, ok := m.loaded[name]
	m.mu.Unlock()
	if ok {
		return nil
	}

	if err := mod.Load(ctx, sampleRate); err != nil {
		return fmt.Errorf("load module %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded == nil {
		m.loaded = make(map[string]struct{})
	}
	m.loaded[name] = struct{}{}
	return nil
}

func (m *modules) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.loaded[name]
	return ok
}

// mixInto renders every renderer into scratch and adds the result to dst.
// scratch must have the same shape as dst.
func mixInto(dst, scratch [][]float32, inputs []Renderer) {
	for _, r := range inputs {
		for ch := range scratch {
			clear(scratch[ch])
		}
		n := r.Render(scratch)
		for ch := range dst {
			out, in := dst[ch], scratch[ch][:n]
			for i, v := range in {
				out[i] += v
			}
		}
	}
}

// makePlanar allocates channels slices of frames samples each.
func makePlanar(channels, frames int) [][]float32 {
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	return out
}

// resizePlanar returns buf resliced or reallocated to channels x frames.
func resizePlanar(buf [][]float32, channels, frames int) [][]float32 {
	if len(buf) != channels || (channels > 0 && cap(buf[0]) < frames) {
		return makePlanar(channels, frames)
	}
	for ch := range buf {
		buf[ch] = buf[ch][:frames]
	}
	return buf
}

// removeRenderer returns inputs without r, preserving order.
func removeRenderer(inputs []Renderer, r Renderer) []Renderer {
	for i, in := range inputs {
		if in == r {
			return append(inputs[:i:i], inputs[i+1:]...)
		}
	}
	return inputs
}
