package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tphakala/go-audio-player/graph"
	"github.com/tphakala/go-audio-player/internal/simdops"
)

// ErrNilSink indicates Connect was called without a sink.
var ErrNilSink = errors.New("nil sink")

// Interface compliance.
var (
	_ graph.Node        = (*Node)(nil)
	_ graph.Module      = Module{}
	_ graph.NodeFactory = NewNode
)

// Node is a tempo and pitch processing node backed by the grain stretcher.
//
// Construction returns immediately; the stretcher is prepared in the
// background and EventInitialized is emitted once it is ready. Parameters
// set before that are applied when initialization completes.
type Node struct {
	mu sync.Mutex

	src        *graph.AudioBuffer
	outputRate int
	st         *stretcher

	tempo     float64
	semitones float64
	percent   float64
	epoch     uint64

	playing bool
	bound   bool
	off     bool
	endSent bool

	sink    graph.Sink
	events  *graph.EventQueue
	scratch [][]float64
}

// NewNode creates a node for src on ctx. The stretch module must be
// registered on ctx.
func NewNode(ctx graph.Context, src *graph.AudioBuffer) (graph.Node, error) {
	if !ctx.HasModule(ModuleName) {
		return nil, fmt.Errorf("%w: %s", graph.ErrModuleNotRegistered, ModuleName)
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}

	n := &Node{
		src:        src,
		outputRate: ctx.SampleRate(),
		tempo:      1,
		events:     graph.NewEventQueue(),
	}
	go n.initialize()
	return n, nil
}

func (n *Node) initialize() {
	st := newStretcher(n.src, n.outputRate)

	n.mu.Lock()
	if n.off {
		n.mu.Unlock()
		return
	}
	st.setTempo(n.tempo)
	st.setPitch(n.semitones)
	st.seek(n.percent)
	n.st = st
	n.mu.Unlock()

	n.events.Emit(graph.Event{Type: graph.EventInitialized})
}

// Render pulls the next block from the stretcher. It renders nothing while
// the node is paused, unbound or still initializing.
func (n *Node) Render(dst [][]float32) int {
	if len(dst) == 0 {
		return 0
	}

	n.mu.Lock()
	if !n.playing || !n.bound || n.st == nil {
		n.mu.Unlock()
		return 0
	}

	frames := len(dst[0])
	n.scratch = resizeScratch(n.scratch, n.src.NumberOfChannels(), frames)
	got := n.st.read(n.scratch)
	mapChannels(dst, n.scratch, got)

	pct := n.st.percentage()
	played := pct * n.src.Duration() / n.tempo
	epoch := n.epoch
	finished := n.st.finished()
	sendEnd := finished && !n.endSent
	if finished {
		n.playing = false
		n.endSent = true
	}
	n.mu.Unlock()

	if got > 0 {
		n.events.Emit(graph.Event{Type: graph.EventPlay, TimePlayed: played, PercentagePlayed: pct, Epoch: epoch})
	}
	if sendEnd {
		n.events.Emit(graph.Event{Type: graph.EventEnd, Epoch: epoch})
	}
	return got
}

// SetTempo sets the speed ratio. Non-positive and non-finite values are
// ignored.
func (n *Node) SetTempo(ratio float64) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.tempo = ratio
	if n.st != nil {
		n.st.setTempo(ratio)
	}
}

// SetPitchSemitones sets the pitch shift.
func (n *Node) SetPitchSemitones(semitones float64) {
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.semitones = semitones
	if n.st != nil {
		n.st.setPitch(semitones)
	}
}

// SetPercentagePlayed seeks to a fraction of the source.
func (n *Node) SetPercentagePlayed(p float64) {
	p = clampUnit(p)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.percent = p
	n.epoch++
	n.endSent = false
	if n.st != nil {
		n.st.seek(p)
	}
}

// PercentagePlayed returns the position of the next frame to be rendered.
func (n *Node) PercentagePlayed() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.st == nil {
		return n.percent
	}
	return n.st.percentage()
}

// Duration returns the source duration in seconds.
func (n *Node) Duration() float64 {
	return n.src.Duration()
}

// SampleRate returns the source sample rate.
func (n *Node) SampleRate() int {
	return n.src.SampleRate
}

// NumberOfChannels returns the source channel count.
func (n *Node) NumberOfChannels() int {
	return n.src.NumberOfChannels()
}

// Playing reports whether the node renders audio.
func (n *Node) Playing() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.playing
}

// Play starts rendering.
func (n *Node) Play() {
	n.mu.Lock()
	n.playing = true
	n.mu.Unlock()
}

// Pause stops rendering and keeps the position.
func (n *Node) Pause() {
	n.mu.Lock()
	n.playing = false
	n.mu.Unlock()
}

// ConnectToBuffer binds the source buffer.
func (n *Node) ConnectToBuffer() {
	n.mu.Lock()
	n.bound = true
	n.mu.Unlock()
}

// Connect attaches the node to sink, moving it off any previous sink.
func (n *Node) Connect(sink graph.Sink) error {
	if sink == nil {
		return ErrNilSink
	}

	n.mu.Lock()
	prev := n.sink
	n.sink = sink
	n.mu.Unlock()

	// Sinks call Render under their own lock; never hold n.mu here.
	if prev != nil && prev != sink {
		prev.Detach(n)
	}
	sink.Attach(n)
	return nil
}

// Disconnect detaches the node from its sink.
func (n *Node) Disconnect() {
	n.mu.Lock()
	sink := n.sink
	n.sink = nil
	n.mu.Unlock()

	if sink != nil {
		sink.Detach(n)
	}
}

// Events returns the notification channel.
func (n *Node) Events() <-chan graph.Event {
	return n.events.Events()
}

// Off stops event delivery and closes the Events channel.
func (n *Node) Off() {
	n.mu.Lock()
	n.off = true
	n.mu.Unlock()
	n.events.Close()
}

// mapChannels copies frames of src into dst, converting the channel layout.
// Mono is duplicated to every output channel and a multi-channel source is
// averaged down to a mono output, overwriting src[0].
func mapChannels(dst [][]float32, src [][]float64, frames int) {
	switch {
	case len(src) == len(dst):
		for ch := range dst {
			for i := 0; i < frames; i++ {
				dst[ch][i] = float32(src[ch][i])
			}
		}
	case len(src) == 1:
		for ch := range dst {
			for i := 0; i < frames; i++ {
				dst[ch][i] = float32(src[0][i])
			}
		}
	case len(dst) == 1:
		mix := src[0][:frames]
		for _, in := range src[1:] {
			for i := range mix {
				mix[i] += in[i]
			}
		}
		simdops.Float64Ops().Scale(mix, mix, 1/float64(len(src)))
		for i, v := range mix {
			dst[0][i] = float32(v)
		}
	default:
		for ch := range dst {
			in := src[ch%len(src)]
			for i := 0; i < frames; i++ {
				dst[ch][i] = float32(in[i])
			}
		}
	}
}

func resizeScratch(buf [][]float64, channels, frames int) [][]float64 {
	if len(buf) != channels {
		buf = make([][]float64, channels)
	}
	for ch := range buf {
		if cap(buf[ch]) < frames {
			buf[ch] = make([]float64, frames)
		}
		buf[ch] = buf[ch][:frames]
	}
	return buf
}
