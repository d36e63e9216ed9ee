package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
)

// Device consumes rendered stereo frames from a live context.
type Device interface {
	Write(frames [][2]float64) error
}

// DeviceFunc adapts a function to a Device.
type DeviceFunc func(frames [][2]float64) error

// Write calls f.
func (f DeviceFunc) Write(frames [][2]float64) error {
	return f(frames)
}

// DiscardDevice drops everything written to it.
var DiscardDevice Device = DeviceFunc(func([][2]float64) error { return nil })

// LiveContext is a real-time processing context.
//
// Renderers attached to its destination are mixed with a beep mixer and
// pulled in blocks of BlockFrames. Start paces the pulls at the sample rate;
// Process pulls a single block and can be driven directly.
type LiveContext struct {
	modules

	mu         sync.Mutex
	sampleRate beep.SampleRate
	mixer      *beep.Mixer
	ctrl       *beep.Ctrl
	streamers  map[Renderer]*rendererStreamer
	device     Device
	block      [][2]float64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewLiveContext creates a live context rendering at sampleRate into device.
// A nil device discards the output.
func NewLiveContext(sampleRate int, device Device) (*LiveContext, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidBuffer, sampleRate)
	}
	if device == nil {
		device = DiscardDevice
	}

	mixer := &beep.Mixer{}
	return &LiveContext{
		sampleRate: beep.SampleRate(sampleRate),
		mixer:      mixer,
		ctrl:       &beep.Ctrl{Streamer: mixer},
		streamers:  make(map[Renderer]*rendererStreamer),
		device:     device,
	}, nil
}

// SampleRate returns the context's sample rate.
func (c *LiveContext) SampleRate() int {
	return int(c.sampleRate)
}

// AddModule loads and registers m.
func (c *LiveContext) AddModule(ctx context.Context, m Module) error {
	return c.add(ctx, m, c.SampleRate())
}

// HasModule reports whether a module is registered.
func (c *LiveContext) HasModule(name string) bool {
	return c.has(name)
}

// Destination returns the context's output sink.
func (c *LiveContext) Destination() Sink {
	return liveDestination{c}
}

// Suspend silences the output without stopping the clock.
func (c *LiveContext) Suspend() {
	c.mu.Lock()
	c.ctrl.Paused = true
	c.mu.Unlock()
}

// Resume undoes Suspend.
func (c *LiveContext) Resume() {
	c.mu.Lock()
	c.ctrl.Paused = false
	c.mu.Unlock()
}

// Suspended reports whether the output is suspended.
func (c *LiveContext) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctrl.Paused
}

// Process renders one block of frames and writes it to the device.
func (c *LiveContext) Process(frames int) error {
	if frames <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cap(c.block) < frames {
		c.block = make([][2]float64, frames)
	}
	block := c.block[:frames]

	n, _ := c.ctrl.Stream(block)
	for i := n; i < frames; i++ {
		block[i] = [2]float64{}
	}

	return c.device.Write(block)
}

// Start runs the render clock in a goroutine until ctx is cancelled or
// Close is called. Starting a running context is a no-op.
func (c *LiveContext) Start(ctx context.Context) {
	c.mu.Lock()
	if c.done != nil {
		c.mu.Unlock()
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go c.run(ctx, done)
}

// Close stops the render clock and waits for it to exit.
func (c *LiveContext) Close() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (c *LiveContext) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	interval := c.sampleRate.D(BlockFrames)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Device errors are not fatal to the clock; the next block retries.
			_ = c.Process(BlockFrames)
		}
	}
}

func (c *LiveContext) attach(r Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.streamers[r]; ok {
		return
	}
	s := &rendererStreamer{r: r}
	c.streamers[r] = s
	c.mixer.Add(s)
}

func (c *LiveContext) detach(r Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.streamers[r]
	if !ok {
		return
	}
	// The mixer drops a streamer once it reports exhaustion.
	s.detached = true
	delete(c.streamers, r)
}

type liveDestination struct {
	c *LiveContext
}

func (d liveDestination) Attach(r Renderer) { d.c.attach(r) }
func (d liveDestination) Detach(r Renderer) { d.c.detach(r) }

// rendererStreamer adapts a Renderer to a stereo beep.Streamer.
// It is only touched with the owning context's lock held.
type rendererStreamer struct {
	r        Renderer
	scratch  [][]float32
	detached bool
}

func (s *rendererStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.detached {
		return 0, false
	}

	frames := len(samples)
	s.scratch = resizePlanar(s.scratch, stereoChannels, frames)
	for ch := range s.scratch {
		clear(s.scratch[ch])
	}
	s.r.Render(s.scratch)

	left, right := s.scratch[0], s.scratch[1]
	for i := range samples {
		samples[i][0] = float64(left[i])
		samples[i][1] = float64(right[i])
	}
	return frames, true
}

func (s *rendererStreamer) Err() error {
	return nil
}
