package engine

import (
	"math"

	"github.com/tphakala/go-audio-player/graph"
	"github.com/tphakala/go-audio-player/internal/pipeline"
)

// stretcher is a granular overlap-add tempo and pitch processor.
//
// Grains of the source are windowed and overlap-added at a fixed synthesis
// hop of half a grain. Within a grain the source is read with a step of
// pitchRatio (resampled to the output rate), which shifts pitch; between
// grains the read position advances by hop*tempo, which sets the speed.
// Output frames are normalised by the accumulated window weight, so tempo
// and pitch of 1 reproduce the source exactly.
type stretcher struct {
	src       [][]float32
	frames    int
	rateRatio float64 // source frames per output frame at tempo 1

	grain  int
	hop    int
	window []float64

	tempo      float64
	pitchRatio float64

	pos    float64 // source position of the next grain centre
	prev   float64 // source position at the end of the emitted output
	primed bool
	ended  bool

	accum [][]float64
	norm  []float64
	emit  [][]float64
	out   *pipeline.FrameRing
}

func newStretcher(src *graph.AudioBuffer, outputRate int) *stretcher {
	grain := grainFrames(outputRate)
	hop := grain / hopDivisor
	channels := src.NumberOfChannels()

	accum := make([][]float64, channels)
	emit := make([][]float64, channels)
	for ch := range accum {
		accum[ch] = make([]float64, grain)
		emit[ch] = make([]float64, hop)
	}

	return &stretcher{
		src:        src.Channels,
		frames:     src.Length(),
		rateRatio:  float64(src.SampleRate) / float64(outputRate),
		grain:      grain,
		hop:        hop,
		window:     windowFor(grain),
		tempo:      1,
		pitchRatio: 1,
		accum:      accum,
		norm:       make([]float64, grain),
		emit:       emit,
		out:        pipeline.NewFrameRing(channels, grain),
	}
}

// setTempo sets the speed ratio; non-positive values are ignored.
func (s *stretcher) setTempo(tempo float64) {
	if tempo > 0 && !math.IsInf(tempo, 0) {
		s.tempo = tempo
	}
}

// setPitch sets the pitch shift in semitones.
func (s *stretcher) setPitch(semitones float64) {
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return
	}
	s.pitchRatio = math.Pow(2, semitones/semitonesPerOctave)
}

// seek restarts synthesis at a fraction of the source.
func (s *stretcher) seek(fraction float64) {
	fraction = clampUnit(fraction)

	s.pos = fraction * float64(s.frames)
	s.prev = s.pos
	s.primed = false
	s.ended = false
	for ch := range s.accum {
		clear(s.accum[ch])
	}
	clear(s.norm)
	s.out.Clear()
}

// percentage returns the source position of the next frame to be read, as
// a fraction of the source.
func (s *stretcher) percentage() float64 {
	if s.frames == 0 {
		return 1
	}
	consumed := s.prev - float64(s.out.Available())*s.tempo*s.rateRatio
	return clampUnit(consumed / float64(s.frames))
}

// finished reports whether all output has been read.
func (s *stretcher) finished() bool {
	return s.ended && s.out.Available() == 0
}

// read fills dst with output frames and returns how many were written.
// It returns fewer than len(dst[0]) frames only at the end of the source.
func (s *stretcher) read(dst [][]float64) int {
	need := len(dst[0])
	for s.out.Available() < need && !s.ended {
		s.synthesize()
	}
	return s.out.ReadInto(dst)
}

// synthesize adds one grain and emits the hop it completes.
func (s *stretcher) synthesize() {
	if s.primed && s.prev >= float64(s.frames) {
		s.ended = true
		return
	}

	step := s.pitchRatio * s.rateRatio
	centre := float64(s.hop)
	for k := 0; k < s.grain; k++ {
		w := s.window[k]
		p := s.pos + (float64(k)-centre)*step
		for ch, data := range s.src {
			s.accum[ch][k] += w * sampleAt(data, p)
		}
		s.norm[k] += w
	}

	// The first grain after a seek only primes the overlap.
	if s.primed {
		for ch := range s.accum {
			for k := 0; k < s.hop; k++ {
				if s.norm[k] > normEpsilon {
					s.emit[ch][k] = s.accum[ch][k] / s.norm[k]
				} else {
					s.emit[ch][k] = 0
				}
			}
		}
		s.out.Write(s.emit, s.hop)
	}

	tail := s.grain - s.hop
	for ch := range s.accum {
		copy(s.accum[ch], s.accum[ch][s.hop:])
		clear(s.accum[ch][tail:])
	}
	copy(s.norm, s.norm[s.hop:])
	clear(s.norm[tail:])

	s.primed = true
	s.prev = s.pos
	s.pos += float64(s.hop) * s.tempo * s.rateRatio
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
