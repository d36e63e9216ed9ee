// Package player loads an audio file, plays it back with live tempo, pitch
// and volume adjustment, and exports a rendered copy with the same tempo and
// pitch as a 16-bit PCM WAV file.
//
// Playback and export run on two separate audio graphs that share only the
// immutable source audio and a copy of the parameters. Live playback pulls a
// node through a gain stage into a [graph.LiveContext]; export builds a fresh
// node on a [graph.OfflineContext] for every call and renders it as fast as
// possible, so exporting never disturbs what is playing.
//
// # Quick Start
//
//	p, err := player.New(&player.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	data, _ := os.ReadFile("song.wav")
//	if err := p.ImportNamed("song.wav", data); err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = p.SetTempo(1.25)
//	_ = p.SetPitch(-2)
//
//	blob, err := p.Export(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f, _ := os.Create(blob.Name())
//	defer f.Close()
//	_, _ = blob.WriteTo(f)
//
// # Parameters
//
// Tempo and pitch changes reach the live node immediately and apply from its
// next grain. Volume only affects live playback: exports always render at
// full amplitude. The playback position is reported as a fraction of the
// source; [Player.CurrentTime] and [Player.Duration] are derived from it and
// from the current tempo.
//
// # Degraded mode
//
// If the processing module cannot be registered on the live context, New
// still succeeds: the failure is logged, [Player.AudioReady] stays false and
// transport calls return [ErrNotReady]. Export registers the module on its
// own context and keeps working.
package player
