// Command tempo-wav changes the tempo and pitch of a WAV file and writes the
// result as a 16-bit PCM WAV file.
//
// Usage:
//
//	tempo-wav -tempo 1.25 input.wav                    # writes input_edited.wav
//	tempo-wav -semitones -2 -o lower.wav input.wav
//	tempo-wav -tempo 0.8 -play input.wav | aplay -f S16_LE -c 2 -r 44100
//
// With -play the adjusted audio is also streamed to stdout as signed 16-bit
// little-endian stereo at the live sample rate until the end of the track.
//
// Defaults can be set through TEMPO_WAV_* environment variables or a .env
// file in the working directory.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	player "github.com/tphakala/go-audio-player"
	"github.com/tphakala/go-audio-player/graph"
	"github.com/tphakala/go-audio-player/internal/config"
)

const (
	// CLI defaults
	minRequiredArgs = 1
	dotEnvFile      = ".env"

	// Playback polling interval while waiting for the end of the track
	playPollInterval = 100 * time.Millisecond

	// Stdout write buffer for -play
	stdoutBufferSize = 64 * 1024
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := config.LoadDotEnv(dotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: cannot read %s: %v", dotEnvFile, err)
	}
	cfg := config.Load()

	tempo := flag.Float64("tempo", cfg.Tempo, "Tempo ratio (1.0 = unchanged, 2.0 = twice as fast)")
	semitones := flag.Float64("semitones", cfg.Semitones, "Pitch shift in semitones")
	volume := flag.Float64("volume", cfg.Volume, "Live playback volume for -play (0-1, not applied to the export)")
	output := flag.String("o", "", "Output file (default: <input>_edited.wav)")
	play := flag.Bool("play", false, "Stream live playback to stdout as s16le stereo")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -tempo 1.25 song.wav            # 25%% faster, same pitch\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -semitones 12 -o up.wav song.wav # one octave up\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}
	inputPath := args[0]
	outputPath := resolveOutputPath(inputPath, *output, cfg.OutputDir)

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var stdout *bufio.Writer
	pconf := &player.Config{
		SampleRate:      cfg.SampleRate,
		KeepAdjustments: cfg.KeepAdjustments,
		Logger:          logger,
	}
	if *play {
		stdout = bufio.NewWriterSize(os.Stdout, stdoutBufferSize)
		pconf.Device = newPCMDevice(stdout)
	}

	p, err := player.New(pconf)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.ImportNamed(inputPath, data); err != nil {
		return err
	}
	if err := p.SetTempo(*tempo); err != nil {
		return err
	}
	if err := p.SetPitch(*semitones); err != nil {
		return err
	}
	if err := p.SetVolume(*volume); err != nil {
		return err
	}

	if *verbose {
		log.Printf("Input: %s (%.2fs), tempo %.3f, pitch %+.2f semitones", inputPath, p.Duration()*p.Tempo(), *tempo, *semitones)
	}

	exportCtx, cancel := context.WithTimeout(ctx, cfg.ExportTimeout)
	defer cancel()

	start := time.Now()
	blob, err := p.Export(exportCtx)
	if err != nil {
		return err
	}
	if err := writeBlob(outputPath, blob); err != nil {
		return err
	}

	if *verbose {
		log.Printf("Wrote %s (%d bytes, %.2fs) in %v", outputPath, blob.Len(), p.Duration(), time.Since(start).Round(time.Millisecond))
	}

	if *play {
		if err := waitForEnd(ctx, p); err != nil {
			return err
		}
		return stdout.Flush()
	}
	return nil
}

// waitForEnd blocks until playback reaches the end of the track or ctx is
// cancelled.
func waitForEnd(ctx context.Context, p *player.Player) error {
	ticker := time.NewTicker(playPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			switch p.State() {
			case player.StateEnded:
				return nil
			case player.StateUnloaded:
				return fmt.Errorf("playback unavailable: %w", player.ErrNotReady)
			}
		}
	}
}

// newPCMDevice returns a device writing s16le stereo frames to w.
func newPCMDevice(w io.Writer) graph.Device {
	var buf []byte
	return graph.DeviceFunc(func(frames [][2]float64) error {
		buf = encodeS16LE(buf[:0], frames)
		_, err := w.Write(buf)
		return err
	})
}
