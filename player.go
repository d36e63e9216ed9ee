package player

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/tphakala/go-audio-player/graph"
	"github.com/tphakala/go-audio-player/internal/engine"
)

// Config holds player configuration. The zero value is usable.
type Config struct {
	// SampleRate of the live context created when LiveContext is nil.
	// Defaults to DefaultSampleRate.
	SampleRate int

	// Device receives the output of an owned live context.
	// Defaults to graph.DiscardDevice.
	Device graph.Device

	// LiveContext is an externally managed live context. When set, the
	// player neither starts nor closes it and SampleRate and Device are
	// ignored.
	LiveContext graph.Context

	// Module is registered on the live context and on every export context.
	// Defaults to the built-in stretch processor.
	Module graph.Module

	// NodeFactory creates processing nodes. Defaults to engine.NewNode.
	NodeFactory graph.NodeFactory

	// Decoder decodes imported bytes. Defaults to WAVDecoder.
	Decoder Decoder

	// KeepAdjustments keeps tempo, pitch and volume across imports; only
	// the position is reset.
	KeepAdjustments bool

	// Logger receives diagnostics. Defaults to log.Default().
	Logger *log.Logger
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.LiveContext == nil && c.SampleRate < 0 {
		return fmt.Errorf("%w: sample rate must not be negative, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if (c.Module == nil) != (c.NodeFactory == nil) {
		return fmt.Errorf("%w: Module and NodeFactory must be set together", ErrInvalidConfig)
	}
	return nil
}

// Player plays one loaded source at a time and exports it with the current
// tempo and pitch. It is safe for concurrent use.
type Player struct {
	logger          *log.Logger
	decoder         Decoder
	keepAdjustments bool

	live    graph.Context
	owned   *graph.LiveContext
	gain    *graph.Gain
	params  *paramStore
	session *session
	export  *exporter

	mu     sync.Mutex
	source *SourceAudio
	name   string
}

// New creates a player. A failure to register the processing module on the
// live context is logged and leaves the player in degraded mode: AudioReady
// stays false while export keeps working.
func New(config *Config) (*Player, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := *config
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Decoder == nil {
		cfg.Decoder = WAVDecoder
	}
	if cfg.Module == nil {
		cfg.Module = engine.Module{}
		cfg.NodeFactory = engine.NewNode
	}

	p := &Player{
		logger:          cfg.Logger,
		decoder:         cfg.Decoder,
		keepAdjustments: cfg.KeepAdjustments,
		live:            cfg.LiveContext,
		gain:            graph.NewGain(DefaultVolume),
		export: &exporter{
			logger:  cfg.Logger,
			module:  cfg.Module,
			factory: cfg.NodeFactory,
		},
	}

	if p.live == nil {
		rate := cfg.SampleRate
		if rate == 0 {
			rate = DefaultSampleRate
		}
		device := cfg.Device
		if device == nil {
			device = graph.DiscardDevice
		}
		live, err := graph.NewLiveContext(rate, device)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		p.live = live
		p.owned = live
	}

	p.params = newParamStore(paramHooks{
		tempo:  func(r float64) { p.session.setTempo(r) },
		pitch:  func(st float64) { p.session.setPitch(st) },
		volume: p.gain.SetLevel,
	})
	p.session = &session{
		logger:  cfg.Logger,
		ctx:     p.live,
		gain:    p.gain,
		factory: cfg.NodeFactory,
		params:  p.params,
	}

	p.gain.Connect(p.live.Destination())

	if err := p.live.AddModule(context.Background(), cfg.Module); err != nil {
		p.session.disabled = fmt.Errorf("%w: %w", ErrModuleLoadFailed, err)
		p.logger.Printf("player: %v; playback disabled", p.session.disabled)
	}

	if p.owned != nil {
		p.owned.Start(context.Background())
	}
	return p, nil
}

// ImportAudio decodes data and loads it for playback.
func (p *Player) ImportAudio(data []byte) error {
	return p.ImportNamed(DefaultSourceName, data)
}

// ImportNamed decodes data and loads it for playback. name is the original
// file name, used to name exports.
func (p *Player) ImportNamed(name string, data []byte) error {
	src, err := p.decoder.Decode(data)
	if err != nil {
		return err
	}
	return p.ImportSource(name, src)
}

// ImportSource loads already decoded audio for playback. src must not be
// modified afterwards.
//
// Parameters are reset to their defaults, or only the position is reset when
// Config.KeepAdjustments is set.
func (p *Player) ImportSource(name string, src *SourceAudio) error {
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrDecode)
	}
	if err := src.Validate(); err != nil {
		return err
	}
	if n := src.NumberOfChannels(); n != 1 && n != 2 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedChannelLayout, n)
	}
	if name == "" {
		name = DefaultSourceName
	}

	p.mu.Lock()
	p.source = src
	p.name = name
	p.mu.Unlock()

	p.params.reset(p.keepAdjustments)
	p.session.load(src)

	p.logger.Printf("player: loaded %s (%d Hz, %d channels, %.2fs)",
		name, src.SampleRate, src.NumberOfChannels(), src.Duration())
	return nil
}

// Tempo returns the tempo ratio.
func (p *Player) Tempo() float64 {
	return p.params.snapshot().TempoRatio
}

// SetTempo sets the tempo ratio. It must be positive and finite.
func (p *Player) SetTempo(ratio float64) error {
	return p.params.setTempo(ratio)
}

// Pitch returns the pitch shift in semitones.
func (p *Player) Pitch() float64 {
	return p.params.snapshot().PitchSemitones
}

// SetPitch sets the pitch shift in semitones.
func (p *Player) SetPitch(semitones float64) error {
	return p.params.setPitch(semitones)
}

// Volume returns the volume as set.
func (p *Player) Volume() float64 {
	return p.params.snapshot().Volume
}

// SetVolume sets the live playback volume. The applied level is clamped to
// [0, 1]; exports are not affected.
func (p *Player) SetVolume(level float64) error {
	return p.params.setVolume(level)
}

// Parameters returns a copy of the current parameters.
func (p *Player) Parameters() Parameters {
	return p.params.snapshot()
}

// PercentagePlayed returns the playback position as a fraction of the source.
func (p *Player) PercentagePlayed() float64 {
	return p.params.snapshot().PercentagePlayed
}

// Seek moves playback to a fraction of the source, clamped to [0, 1].
func (p *Player) Seek(percentage float64) error {
	if math.IsNaN(percentage) {
		return fmt.Errorf("%w: position %v", ErrInvalidParameter, percentage)
	}
	return p.session.seek(clampUnit(percentage))
}

// Duration returns the playback length in seconds at the current tempo.
func (p *Player) Duration() float64 {
	p.mu.Lock()
	src := p.source
	p.mu.Unlock()
	if src == nil {
		return 0
	}
	return src.Duration() / p.params.snapshot().TempoRatio
}

// CurrentTime returns the playback position in seconds at the current tempo.
func (p *Player) CurrentTime() float64 {
	d := p.Duration()
	t := p.PercentagePlayed() * d
	return max(0, min(t, d))
}

// IsPlaying reports whether audio is playing.
func (p *Player) IsPlaying() bool {
	return p.State() == StatePlaying
}

// State returns the playback state.
func (p *Player) State() State {
	state, _ := p.session.status()
	return state
}

// AudioReady reports whether the live node is initialized and connected.
func (p *Player) AudioReady() bool {
	_, ready := p.session.status()
	return ready
}

// Play starts or resumes playback. From StateEnded it restarts at the
// beginning.
func (p *Player) Play() error {
	return p.session.play()
}

// Pause pauses playback.
func (p *Player) Pause() error {
	return p.session.pause()
}

// PlayPause toggles between playing and paused.
func (p *Player) PlayPause() error {
	return p.session.playPause()
}

// Stop pauses playback and rewinds to the beginning.
func (p *Player) Stop() error {
	return p.session.stop()
}

// StartExport starts rendering the loaded source with the current tempo and
// pitch in the background. The parameters are captured when it is called.
func (p *Player) StartExport(ctx context.Context) *ExportJob {
	p.mu.Lock()
	src, name := p.source, p.name
	p.mu.Unlock()
	snap := p.params.snapshot()

	job := newExportJob()
	go p.export.run(ctx, job, src, snap, ExportFileName(name))
	return job
}

// Export renders the loaded source with the current tempo and pitch and
// returns it as a WAV file. Failures wrap ErrExportFailed.
func (p *Player) Export(ctx context.Context) (*WavBlob, error) {
	return p.StartExport(ctx).Wait()
}

// Close releases the live node and stops an owned live context.
func (p *Player) Close() error {
	p.session.close()
	if p.owned != nil {
		return p.owned.Close()
	}
	return nil
}
