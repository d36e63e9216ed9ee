package graph

import (
	"math"
	"sync"

	"github.com/tphakala/go-audio-player/internal/simdops"
)

// Gain is a volume stage: it sums its inputs and scales the result.
// The level is clamped to [0, 1].
type Gain struct {
	mu      sync.Mutex
	level   float32
	inputs  []Renderer
	scratch [][]float32
	sink    Sink
}

// NewGain creates a gain stage at the given level.
func NewGain(level float64) *Gain {
	g := &Gain{}
	g.SetLevel(level)
	return g
}

// SetLevel sets the output level, clamping it to [0, 1].
// NaN is treated as silence.
func (g *Gain) SetLevel(level float64) {
	switch {
	case math.IsNaN(level) || level < 0:
		level = 0
	case level > 1:
		level = 1
	}

	g.mu.Lock()
	g.level = float32(level)
	g.mu.Unlock()
}

// Level returns the effective, clamped level.
func (g *Gain) Level() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return float64(g.level)
}

// Attach adds an input.
func (g *Gain) Attach(r Renderer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, in := range g.inputs {
		if in == r {
			return
		}
	}
	g.inputs = append(g.inputs, r)
}

// Detach removes an input.
func (g *Gain) Detach(r Renderer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inputs = removeRenderer(g.inputs, r)
}

// Inputs returns the number of attached inputs.
func (g *Gain) Inputs() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inputs)
}

// Connect attaches the gain's output to sink, detaching it from any
// previous sink first.
func (g *Gain) Connect(sink Sink) {
	g.mu.Lock()
	prev := g.sink
	g.sink = sink
	g.mu.Unlock()

	if prev != nil {
		prev.Detach(g)
	}
	sink.Attach(g)
}

// Render mixes all inputs into dst and applies the level.
func (g *Gain) Render(dst [][]float32) int {
	if len(dst) == 0 {
		return 0
	}
	frames := len(dst[0])

	g.mu.Lock()
	defer g.mu.Unlock()

	for ch := range dst {
		clear(dst[ch])
	}
	if len(g.inputs) == 0 {
		return frames
	}

	g.scratch = resizePlanar(g.scratch, len(dst), frames)
	mixInto(dst, g.scratch, g.inputs)

	if g.level != 1 {
		ops := simdops.Float32Ops()
		for ch := range dst {
			ops.Scale(dst[ch], dst[ch], g.level)
		}
	}

	return frames
}
