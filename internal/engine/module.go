package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/dsp/window"
)

// ErrUnsupportedRate indicates a context sample rate the module cannot serve.
var ErrUnsupportedRate = errors.New("unsupported sample rate")

// windows caches grain windows by length. Cached slices are never modified.
var windows sync.Map

// Module registers the stretch processor on a context.
// Loading it prepares the grain window for the context's rate.
type Module struct{}

// Name returns ModuleName.
func (Module) Name() string {
	return ModuleName
}

// Load validates the context rate and builds its grain window.
func (Module) Load(ctx context.Context, sampleRate int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sampleRate < minSampleRate || sampleRate > maxSampleRate {
		return fmt.Errorf("%w: %d Hz (supported %d-%d Hz)", ErrUnsupportedRate, sampleRate, minSampleRate, maxSampleRate)
	}

	windowFor(grainFrames(sampleRate))
	return nil
}

// grainFrames returns the even grain length used at sampleRate.
func grainFrames(sampleRate int) int {
	n := int(float64(sampleRate) * grainSeconds)
	if n < minGrainFrames {
		n = minGrainFrames
	}
	return n &^ 1
}

// windowFor returns the Hann window of length n.
func windowFor(n int) []float64 {
	if w, ok := windows.Load(n); ok {
		return w.([]float64)
	}

	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	window.Hann(w)

	actual, _ := windows.LoadOrStore(n, w)
	return actual.([]float64)
}
