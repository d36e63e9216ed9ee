package player

import (
	"fmt"
	"math"
	"sync"
)

// Parameters are the user-adjustable playback settings.
type Parameters struct {
	// TempoRatio is the playback speed; 1.0 is unchanged, 2.0 twice as fast.
	TempoRatio float64

	// PitchSemitones shifts the pitch without changing the speed.
	PitchSemitones float64

	// Volume is the live output level. It is clamped to [0, 1] by the gain
	// stage and never applied to exports.
	Volume float64

	// PercentagePlayed is the playback position as a fraction of the source.
	PercentagePlayed float64
}

// DefaultParameters returns the parameters of a freshly imported file.
func DefaultParameters() Parameters {
	return Parameters{
		TempoRatio:     DefaultTempo,
		PitchSemitones: DefaultPitch,
		Volume:         DefaultVolume,
	}
}

// paramHooks propagate parameter changes. They run synchronously after the
// store is updated, outside the store lock but under the propagation lock,
// so listeners see changes in the order the store applied them.
type paramHooks struct {
	tempo  func(ratio float64)
	pitch  func(semitones float64)
	volume func(level float64)
}

// paramStore holds the current parameters.
//
// propMu serializes writers with their hooks and is taken before any lock
// the hooks acquire. mu only guards p.
type paramStore struct {
	propMu sync.Mutex
	mu     sync.Mutex
	p      Parameters
	hooks  paramHooks
}

func newParamStore(hooks paramHooks) *paramStore {
	return &paramStore{p: DefaultParameters(), hooks: hooks}
}

func (s *paramStore) snapshot() Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p
}

// reset restores the defaults and propagates the volume. With
// keepAdjustments only the position is reset.
func (s *paramStore) reset(keepAdjustments bool) Parameters {
	s.propMu.Lock()
	defer s.propMu.Unlock()

	s.mu.Lock()
	if keepAdjustments {
		s.p.PercentagePlayed = 0
	} else {
		s.p = DefaultParameters()
	}
	p := s.p
	s.mu.Unlock()

	if s.hooks.volume != nil {
		s.hooks.volume(p.Volume)
	}
	return p
}

func (s *paramStore) setTempo(ratio float64) error {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidTempo, ratio)
	}

	s.propMu.Lock()
	defer s.propMu.Unlock()

	s.mu.Lock()
	s.p.TempoRatio = ratio
	s.mu.Unlock()

	if s.hooks.tempo != nil {
		s.hooks.tempo(ratio)
	}
	return nil
}

func (s *paramStore) setPitch(semitones float64) error {
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return fmt.Errorf("%w: pitch %v", ErrInvalidParameter, semitones)
	}

	s.propMu.Lock()
	defer s.propMu.Unlock()

	s.mu.Lock()
	s.p.PitchSemitones = semitones
	s.mu.Unlock()

	if s.hooks.pitch != nil {
		s.hooks.pitch(semitones)
	}
	return nil
}

func (s *paramStore) setVolume(level float64) error {
	if math.IsNaN(level) || math.IsInf(level, 0) {
		return fmt.Errorf("%w: volume %v", ErrInvalidParameter, level)
	}

	s.propMu.Lock()
	defer s.propMu.Unlock()

	s.mu.Lock()
	s.p.Volume = level
	s.mu.Unlock()

	if s.hooks.volume != nil {
		s.hooks.volume(level)
	}
	return nil
}

// setPercentage stores a clamped position. It does not seek.
func (s *paramStore) setPercentage(p float64) {
	p = clampUnit(p)

	s.mu.Lock()
	s.p.PercentagePlayed = p
	s.mu.Unlock()
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
