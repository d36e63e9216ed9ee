// Package graph defines the audio processing graph shared by live playback
// and offline export: buffers, processing contexts, the node contract that a
// tempo/pitch processor must satisfy, and the gain and destination stages
// that nodes connect to.
//
// A node is always constructed against a [Context] on which its [Module] has
// been registered. Live playback uses a [LiveContext], which pulls the graph
// block by block at real-time pace; export uses an [OfflineContext], which
// pulls it as fast as possible into a buffer of fixed length.
package graph

import "errors"

// Common errors returned by graph components.
var (
	// ErrModuleNotRegistered indicates a node was constructed on a context
	// that has not loaded the node's module.
	ErrModuleNotRegistered = errors.New("module not registered on context")

	// ErrAlreadyRendered indicates StartRendering was called twice on the
	// same offline context.
	ErrAlreadyRendered = errors.New("offline context already rendered")

	// ErrInvalidBuffer indicates a malformed audio buffer or context shape.
	ErrInvalidBuffer = errors.New("invalid audio buffer")
)

// Renderer produces audio on demand.
//
// Render fills dst, which holds one slice per output channel of equal
// length, and returns the number of frames written from the start of each
// slice. Frames beyond the returned count are left untouched and treated as
// silence by the caller.
type Renderer interface {
	Render(dst [][]float32) int
}

// Sink accepts renderers as inputs.
type Sink interface {
	Attach(r Renderer)
	Detach(r Renderer)
}

// EventType identifies a node notification.
type EventType int

const (
	// EventInitialized is emitted once when the node finished its
	// asynchronous setup and accepts parameters.
	EventInitialized EventType = iota

	// EventPlay is emitted periodically while the node is playing.
	EventPlay

	// EventEnd is emitted once when playback reaches the end of the source.
	EventEnd
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventInitialized:
		return "initialized"
	case EventPlay:
		return "play"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is a notification from a node.
type Event struct {
	Type EventType

	// TimePlayed is the playback position in seconds of output time.
	// Only set for EventPlay.
	TimePlayed float64

	// PercentagePlayed is the playback position as a fraction of the source
	// in [0, 1]. Only set for EventPlay.
	PercentagePlayed float64

	// Epoch is the number of SetPercentagePlayed calls the node had received
	// when the event was emitted. Consumers use it to drop progress that
	// predates a seek.
	Epoch uint64
}

// Node is the contract of a tempo/pitch processing node.
//
// Setters take effect on the node's next processing cycle. Events are
// delivered in emission order on the channel returned by Events until Off
// is called, after which the channel is closed and no further events are
// delivered.
type Node interface {
	Renderer

	// SetTempo sets the playback speed ratio; 1.0 leaves it unchanged.
	SetTempo(ratio float64)

	// SetPitchSemitones sets the pitch shift in semitones.
	SetPitchSemitones(semitones float64)

	// SetPercentagePlayed moves the playback position to a fraction of the
	// source in [0, 1]. Every call advances the epoch stamped on later
	// events by one.
	SetPercentagePlayed(p float64)

	// PercentagePlayed returns the current playback position in [0, 1].
	PercentagePlayed() float64

	// Duration returns the source duration in seconds at tempo 1.
	Duration() float64

	// SampleRate returns the sample rate of the source material.
	SampleRate() int

	// NumberOfChannels returns the channel count of the source material.
	NumberOfChannels() int

	// Playing reports whether the node is producing audio.
	Playing() bool

	// Play starts or resumes playback.
	Play()

	// Pause halts playback, keeping the position.
	Pause()

	// ConnectToBuffer binds the node's internal source buffer. A node does not
	// render before it is bound.
	ConnectToBuffer()

	// Connect attaches the node's output to a sink.
	Connect(sink Sink) error

	// Disconnect detaches the node from the sink it is connected to.
	Disconnect()

	// Events returns the notification channel.
	Events() <-chan Event

	// Off detaches all event subscriptions and closes the Events channel.
	Off()
}

// NodeFactory constructs a node bound to src on a processing context.
type NodeFactory func(ctx Context, src *AudioBuffer) (Node, error)
