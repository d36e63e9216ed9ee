package player

import (
	"log"
	"sync"

	"github.com/tphakala/go-audio-player/graph"
)

// State is the playback state of a Player.
type State int

const (
	// StateUnloaded means no live node is loaded.
	StateUnloaded State = iota

	// StateInitializing means a node was created and has not reported
	// initialization yet.
	StateInitializing

	// StatePaused means the node is ready and not playing.
	StatePaused

	// StatePlaying means the node is producing audio.
	StatePlaying

	// StateEnded means playback reached the end of the source.
	StateEnded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateInitializing:
		return "initializing"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// session owns the live node and follows its events.
//
// Lock order: loadMu, then mu, then params. Node and gain methods may be
// called with mu held; the audio thread never takes mu.
type session struct {
	logger  *log.Logger
	ctx     graph.Context
	gain    *graph.Gain
	factory graph.NodeFactory
	params  *paramStore

	// disabled is set when the module could not be registered on ctx.
	// No live node is ever built then.
	disabled error

	loadMu sync.Mutex

	mu       sync.Mutex
	node     graph.Node
	pumpDone chan struct{}
	state    State
	ready    bool

	// epoch counts the seeks sent to node; events stamped with an older
	// epoch describe a position that no longer applies.
	epoch uint64
}

// load replaces the live node with one playing src.
// A node construction failure is logged and leaves the session unloaded.
func (s *session) load(src *SourceAudio) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.detach()

	if s.disabled != nil {
		s.logger.Printf("player: playback unavailable: %v", s.disabled)
		return
	}

	s.mu.Lock()
	s.state = StateInitializing
	s.mu.Unlock()

	node, err := s.factory(s.ctx, src)
	if err != nil {
		s.logger.Printf("player: cannot create playback node: %v", err)
		s.mu.Lock()
		s.state = StateUnloaded
		s.mu.Unlock()
		return
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.node = node
	s.pumpDone = done
	s.epoch = 0
	s.mu.Unlock()

	go s.pump(node, done)
}

// detach stops the current node and waits for its event pump to exit.
// Callers hold loadMu.
func (s *session) detach() {
	s.mu.Lock()
	old, done := s.node, s.pumpDone
	s.node = nil
	s.pumpDone = nil
	s.ready = false
	s.state = StateUnloaded
	s.mu.Unlock()

	if old == nil {
		return
	}
	old.Pause()
	old.Off()
	old.Disconnect()
	<-done
}

func (s *session) close() {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	s.detach()
}

// pump handles the events of one node in emission order until the node's
// event channel is closed.
func (s *session) pump(node graph.Node, done chan struct{}) {
	defer close(done)
	for ev := range node.Events() {
		s.handle(node, ev)
	}
}

func (s *session) handle(node graph.Node, ev graph.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Events from a replaced node are dropped.
	if s.node != node {
		return
	}

	switch ev.Type {
	case graph.EventInitialized:
		if s.ready {
			return
		}
		p := s.params.snapshot()
		node.SetPitchSemitones(p.PitchSemitones)
		node.SetTempo(p.TempoRatio)
		s.seekNode(p.PercentagePlayed)
		node.ConnectToBuffer()
		if err := node.Connect(s.gain); err != nil {
			s.logger.Printf("player: cannot connect playback node: %v", err)
			return
		}
		s.ready = true
		s.state = StatePlaying
		node.Play()

	case graph.EventPlay:
		// Progress queued before a pause, stop or seek is stale.
		if s.state == StatePlaying && ev.Epoch == s.epoch {
			s.params.setPercentage(ev.PercentagePlayed)
		}

	case graph.EventEnd:
		if s.state == StatePlaying && ev.Epoch == s.epoch {
			s.state = StateEnded
			s.params.setPercentage(1)
		}
	}
}

// readyNode returns the live node if it is ready. Callers hold mu.
func (s *session) readyNode() (graph.Node, error) {
	if s.node == nil || !s.ready {
		return nil, ErrNotReady
	}
	return s.node, nil
}

// seekNode moves the live node and starts a new epoch. Callers hold mu.
func (s *session) seekNode(p float64) {
	s.node.SetPercentagePlayed(p)
	s.epoch++
}

func (s *session) play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked()
}

func (s *session) playLocked() error {
	node, err := s.readyNode()
	if err != nil {
		return err
	}
	if s.state == StateEnded {
		s.seekNode(0)
		s.params.setPercentage(0)
	}
	node.Play()
	s.state = StatePlaying
	return nil
}

func (s *session) pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pauseLocked()
}

func (s *session) pauseLocked() error {
	node, err := s.readyNode()
	if err != nil {
		return err
	}
	node.Pause()
	if s.state == StatePlaying {
		s.state = StatePaused
	}
	return nil
}

func (s *session) playPause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePlaying {
		return s.pauseLocked()
	}
	return s.playLocked()
}

func (s *session) stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.readyNode()
	if err != nil {
		return err
	}
	node.Pause()
	s.seekNode(0)
	s.params.setPercentage(0)
	s.state = StatePaused
	return nil
}

// seek moves the playback position. Before initialization completes the
// position is stored and applied once the node is ready.
func (s *session) seek(p float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.node == nil {
		return ErrNotReady
	}
	s.params.setPercentage(p)
	if !s.ready {
		return nil
	}
	s.seekNode(p)
	if s.state == StateEnded {
		s.state = StatePaused
	}
	return nil
}

func (s *session) setTempo(ratio float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.node != nil {
		s.node.SetTempo(ratio)
	}
}

func (s *session) setPitch(semitones float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.node != nil {
		s.node.SetPitchSemitones(semitones)
	}
}

func (s *session) status() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.ready
}
