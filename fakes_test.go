package player

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-player/graph"
)

const (
	waitTimeout = 2 * time.Second
	waitTick    = 5 * time.Millisecond
)

// discardLogger silences player diagnostics in tests.
func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// fakeNode records the calls made by the session. Events are emitted by the
// test through emit.
type fakeNode struct {
	mu      sync.Mutex
	src     *graph.AudioBuffer
	events  *graph.EventQueue
	tempo   float64
	pitch   float64
	pct     float64
	epoch   uint64
	playing bool
	bound   bool
	off     bool
	sink    graph.Sink
}

func newFakeNode(src *graph.AudioBuffer) *fakeNode {
	return &fakeNode{src: src, tempo: 1, events: graph.NewEventQueue()}
}

// emit queues ev stamped with the node's current epoch.
func (n *fakeNode) emit(ev graph.Event) {
	n.mu.Lock()
	ev.Epoch = n.epoch
	n.mu.Unlock()
	n.events.Emit(ev)
}

// emitStamped queues ev with its Epoch left as given.
func (n *fakeNode) emitStamped(ev graph.Event) { n.events.Emit(ev) }

func (n *fakeNode) Render([][]float32) int { return 0 }

func (n *fakeNode) SetTempo(r float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tempo = r
}

func (n *fakeNode) SetPitchSemitones(st float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pitch = st
}

func (n *fakeNode) SetPercentagePlayed(p float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pct = p
	n.epoch++
}

func (n *fakeNode) PercentagePlayed() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pct
}

func (n *fakeNode) Duration() float64     { return n.src.Duration() }
func (n *fakeNode) SampleRate() int       { return n.src.SampleRate }
func (n *fakeNode) NumberOfChannels() int { return n.src.NumberOfChannels() }

func (n *fakeNode) Playing() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.playing
}

func (n *fakeNode) Play() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playing = true
}

func (n *fakeNode) Pause() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playing = false
}

func (n *fakeNode) ConnectToBuffer() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bound = true
}

func (n *fakeNode) Connect(sink graph.Sink) error {
	n.mu.Lock()
	n.sink = sink
	n.mu.Unlock()
	sink.Attach(n)
	return nil
}

func (n *fakeNode) Disconnect() {
	n.mu.Lock()
	sink := n.sink
	n.sink = nil
	n.mu.Unlock()
	if sink != nil {
		sink.Detach(n)
	}
}

func (n *fakeNode) Events() <-chan graph.Event { return n.events.Events() }

func (n *fakeNode) Off() {
	n.mu.Lock()
	n.off = true
	n.mu.Unlock()
	n.events.Close()
}

// nodeState is a copy of what a fake node has been told.
type nodeState struct {
	tempo   float64
	pitch   float64
	pct     float64
	epoch   uint64
	playing bool
	bound   bool
	off     bool
	sink    graph.Sink
}

// snapshot returns the recorded state under the node lock.
func (n *fakeNode) snapshot() nodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return nodeState{
		tempo:   n.tempo,
		pitch:   n.pitch,
		pct:     n.pct,
		epoch:   n.epoch,
		playing: n.playing,
		bound:   n.bound,
		off:     n.off,
		sink:    n.sink,
	}
}

// fakeFactory hands out fake nodes and keeps them for inspection.
type fakeFactory struct {
	mu    sync.Mutex
	nodes []*fakeNode
	err   error
}

func (f *fakeFactory) New(_ graph.Context, src *graph.AudioBuffer) (graph.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	n := newFakeNode(src)
	f.nodes = append(f.nodes, n)
	return n, nil
}

func (f *fakeFactory) last(t *testing.T) *fakeNode {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.nodes, "no node created")
	return f.nodes[len(f.nodes)-1]
}

// fakeModule loads successfully unless err is set.
type fakeModule struct {
	err error
}

func (fakeModule) Name() string { return "fake" }

func (m fakeModule) Load(context.Context, int) error { return m.err }

// newFakePlayer creates a player whose live nodes are fake.
func newFakePlayer(t *testing.T, modify func(*Config)) (*Player, *fakeFactory) {
	t.Helper()
	f := &fakeFactory{}
	cfg := &Config{
		Logger:      discardLogger(),
		Module:      fakeModule{},
		NodeFactory: f.New,
	}
	if modify != nil {
		modify(cfg)
	}
	p, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, f
}

// readyPlayer imports src and completes node initialization.
func readyPlayer(t *testing.T, p *Player, f *fakeFactory, src *SourceAudio) *fakeNode {
	t.Helper()
	require.NoError(t, p.ImportSource("test.wav", src))
	node := f.last(t)
	node.emit(graph.Event{Type: graph.EventInitialized})
	require.Eventually(t, p.AudioReady, waitTimeout, waitTick)
	return node
}
