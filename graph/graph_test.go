package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constRenderer writes a constant value on every channel.
type constRenderer struct {
	value  float32
	frames int // frames rendered per call, 0 means fill dst
	calls  int
}

func (r *constRenderer) Render(dst [][]float32) int {
	r.calls++
	n := len(dst[0])
	if r.frames > 0 && r.frames < n {
		n = r.frames
	}
	for ch := range dst {
		for i := 0; i < n; i++ {
			dst[ch][i] = r.value
		}
	}
	return n
}

type testModule struct {
	name  string
	err   error
	loads int
	rate  int
}

func (m *testModule) Name() string { return m.name }

func (m *testModule) Load(_ context.Context, sampleRate int) error {
	m.loads++
	m.rate = sampleRate
	return m.err
}

// =============================================================================
// AudioBuffer
// =============================================================================

func TestAudioBuffer_Shape(t *testing.T) {
	b := NewAudioBuffer(2, 44100, 44100)
	assert.Equal(t, 2, b.NumberOfChannels())
	assert.Equal(t, 44100, b.Length())
	assert.InDelta(t, 1.0, b.Duration(), 1e-12)
	require.NoError(t, b.Validate())
}

func TestAudioBuffer_Validate(t *testing.T) {
	tests := []struct {
		name string
		buf  *AudioBuffer
	}{
		{"zero rate", &AudioBuffer{Channels: [][]float32{{0}}}},
		{"no channels", &AudioBuffer{SampleRate: 8000}},
		{"ragged", &AudioBuffer{SampleRate: 8000, Channels: [][]float32{{0, 0}, {0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.buf.Validate(), ErrInvalidBuffer)
		})
	}
}

// =============================================================================
// EventQueue
// =============================================================================

func TestEventQueue_PreservesOrder(t *testing.T) {
	q := NewEventQueue()
	defer q.Close()

	// Emit everything before anyone reads: Emit must not block.
	q.Emit(Event{Type: EventInitialized})
	for i := 1; i <= 100; i++ {
		q.Emit(Event{Type: EventPlay, PercentagePlayed: float64(i) / 100})
	}
	q.Emit(Event{Type: EventEnd})

	ev := <-q.Events()
	assert.Equal(t, EventInitialized, ev.Type)
	for i := 1; i <= 100; i++ {
		ev = <-q.Events()
		require.Equal(t, EventPlay, ev.Type)
		assert.InDelta(t, float64(i)/100, ev.PercentagePlayed, 1e-12)
	}
	ev = <-q.Events()
	assert.Equal(t, EventEnd, ev.Type)
}

func TestEventQueue_CloseClosesChannel(t *testing.T) {
	q := NewEventQueue()
	q.Emit(Event{Type: EventPlay})
	q.Close()
	q.Close()

	// Pending events may or may not be delivered, but the channel must close.
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-q.Events():
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	q.Emit(Event{Type: EventEnd})
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "initialized", EventInitialized.String())
	assert.Equal(t, "play", EventPlay.String())
	assert.Equal(t, "end", EventEnd.String())
	assert.Equal(t, "unknown", EventType(42).String())
}

// =============================================================================
// Gain
// =============================================================================

func TestGain_ClampsLevel(t *testing.T) {
	g := NewGain(0.2)
	assert.InDelta(t, 0.2, g.Level(), 1e-7)

	g.SetLevel(1.7)
	assert.InDelta(t, 1.0, g.Level(), 1e-12)

	g.SetLevel(-0.3)
	assert.InDelta(t, 0.0, g.Level(), 1e-12)
}

func TestGain_MixesAndScales(t *testing.T) {
	g := NewGain(0.5)
	a := &constRenderer{value: 0.5}
	b := &constRenderer{value: 0.25, frames: 2}
	g.Attach(a)
	g.Attach(b)
	g.Attach(a)
	assert.Equal(t, 2, g.Inputs())

	dst := makePlanar(2, 4)
	n := g.Render(dst)
	require.Equal(t, 4, n)

	for ch := range dst {
		assert.InDeltaSlice(t, []float32{0.375, 0.375, 0.25, 0.25}, dst[ch], 1e-7)
	}

	g.Detach(a)
	g.Render(dst)
	assert.InDeltaSlice(t, []float32{0.125, 0.125, 0, 0}, dst[0], 1e-7)
}

// =============================================================================
// OfflineContext
// =============================================================================

func TestOfflineContext_RendersFixedLength(t *testing.T) {
	c, err := NewOfflineContext(1, 2500, 8000)
	require.NoError(t, err)

	r := &constRenderer{value: 0.75}
	c.Destination().Attach(r)

	out, err := c.StartRendering(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8000, out.SampleRate)
	assert.Equal(t, 1, out.NumberOfChannels())
	require.Equal(t, 2500, out.Length())
	assert.Equal(t, 3, r.calls, "2500 frames in blocks of %d", BlockFrames)
	for i, v := range out.ChannelData(0) {
		if v != 0.75 {
			t.Fatalf("sample %d = %v, want 0.75", i, v)
		}
	}
}

func TestOfflineContext_ShortRendererLeavesSilence(t *testing.T) {
	c, err := NewOfflineContext(2, 10, 8000)
	require.NoError(t, err)
	c.Destination().Attach(&constRenderer{value: 1, frames: 4})

	out, err := c.StartRendering(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1, 1, 0, 0, 0, 0, 0, 0}, out.ChannelData(1))
}

func TestOfflineContext_RendersOnce(t *testing.T) {
	c, err := NewOfflineContext(1, 16, 8000)
	require.NoError(t, err)

	_, err = c.StartRendering(context.Background())
	require.NoError(t, err)

	_, err = c.StartRendering(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRendered)
}

func TestOfflineContext_Cancelled(t *testing.T) {
	c, err := NewOfflineContext(1, 16, 8000)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.StartRendering(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOfflineContext_InvalidShape(t *testing.T) {
	_, err := NewOfflineContext(0, 16, 8000)
	assert.ErrorIs(t, err, ErrInvalidBuffer)
	_, err = NewOfflineContext(1, -1, 8000)
	assert.ErrorIs(t, err, ErrInvalidBuffer)
	_, err = NewOfflineContext(1, 16, 0)
	assert.ErrorIs(t, err, ErrInvalidBuffer)
}

func TestOfflineContext_Detach(t *testing.T) {
	c, err := NewOfflineContext(1, 4, 8000)
	require.NoError(t, err)
	r := &constRenderer{value: 1}
	c.Destination().Attach(r)
	c.Destination().Detach(r)

	out, err := c.StartRendering(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0}, out.ChannelData(0))
	assert.Zero(t, r.calls)
}

// =============================================================================
// Modules
// =============================================================================

func TestAddModule_RegistersOnce(t *testing.T) {
	c, err := NewOfflineContext(1, 4, 22050)
	require.NoError(t, err)

	m := &testModule{name: "proc"}
	require.NoError(t, c.AddModule(context.Background(), m))
	require.NoError(t, c.AddModule(context.Background(), m))

	assert.True(t, c.HasModule("proc"))
	assert.False(t, c.HasModule("other"))
	assert.Equal(t, 1, m.loads)
	assert.Equal(t, 22050, m.rate)
}

func TestAddModule_Failure(t *testing.T) {
	c, err := NewLiveContext(48000, nil)
	require.NoError(t, err)

	loadErr := errors.New("boom")
	err = c.AddModule(context.Background(), &testModule{name: "proc", err: loadErr})
	require.ErrorIs(t, err, loadErr)
	assert.False(t, c.HasModule("proc"))
}

// =============================================================================
// LiveContext
// =============================================================================

func TestLiveContext_ProcessWritesStereo(t *testing.T) {
	var got [][2]float64
	c, err := NewLiveContext(48000, DeviceFunc(func(frames [][2]float64) error {
		got = append(got, frames...)
		return nil
	}))
	require.NoError(t, err)

	g := NewGain(0.5)
	g.Connect(c.Destination())
	g.Attach(&constRenderer{value: 0.5})

	require.NoError(t, c.Process(8))
	require.Len(t, got, 8)
	for _, f := range got {
		assert.InDelta(t, 0.25, f[0], 1e-7)
		assert.InDelta(t, 0.25, f[1], 1e-7)
	}
}

func TestLiveContext_SuspendSilences(t *testing.T) {
	var last [][2]float64
	c, err := NewLiveContext(48000, DeviceFunc(func(frames [][2]float64) error {
		last = append(last[:0], frames...)
		return nil
	}))
	require.NoError(t, err)
	c.Destination().Attach(&constRenderer{value: 1})

	c.Suspend()
	assert.True(t, c.Suspended())
	require.NoError(t, c.Process(4))
	for _, f := range last {
		assert.Equal(t, [2]float64{}, f)
	}

	c.Resume()
	require.NoError(t, c.Process(4))
	assert.Equal(t, [2]float64{1, 1}, last[0])
}

func TestLiveContext_DetachDropsRenderer(t *testing.T) {
	var last [][2]float64
	c, err := NewLiveContext(48000, DeviceFunc(func(frames [][2]float64) error {
		last = append(last[:0], frames...)
		return nil
	}))
	require.NoError(t, err)

	r := &constRenderer{value: 1}
	c.Destination().Attach(r)
	require.NoError(t, c.Process(4))
	c.Destination().Detach(r)
	calls := r.calls

	require.NoError(t, c.Process(4))
	assert.Equal(t, calls, r.calls)
	assert.Equal(t, [2]float64{}, last[0])
}

func TestLiveContext_StartAndClose(t *testing.T) {
	blocks := make(chan int, 64)
	c, err := NewLiveContext(48000, DeviceFunc(func(frames [][2]float64) error {
		select {
		case blocks <- len(frames):
		default:
		}
		return nil
	}))
	require.NoError(t, err)

	c.Start(context.Background())
	select {
	case n := <-blocks:
		assert.Equal(t, BlockFrames, n)
	case <-time.After(2 * time.Second):
		t.Fatal("live context produced no block")
	}
	require.NoError(t, c.Close())
}

func TestLiveContext_InvalidRate(t *testing.T) {
	_, err := NewLiveContext(0, nil)
	assert.ErrorIs(t, err, ErrInvalidBuffer)
}
