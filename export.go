package player

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"

	"github.com/tphakala/go-audio-player/graph"
	"github.com/tphakala/go-audio-player/internal/wavenc"
)

// errNodeClosed indicates a node closed its events before initializing.
var errNodeClosed = errors.New("node closed before initialization")

// ExportJob is a pending export. It resolves exactly once.
type ExportJob struct {
	// ID identifies the export in log output.
	ID uuid.UUID

	done chan struct{}
	blob *WavBlob
	err  error
}

func newExportJob() *ExportJob {
	return &ExportJob{ID: uuid.New(), done: make(chan struct{})}
}

func (j *ExportJob) resolve(blob *WavBlob, err error) {
	j.blob, j.err = blob, err
	close(j.done)
}

// Done is closed when the export has finished.
func (j *ExportJob) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the export has finished and returns its result.
// Failures wrap ErrExportFailed.
func (j *ExportJob) Wait() (*WavBlob, error) {
	<-j.done
	return j.blob, j.err
}

// exporter renders a source offline with a snapshot of the parameters.
type exporter struct {
	logger  *log.Logger
	module  graph.Module
	factory graph.NodeFactory
}

// run renders src and resolves job. Every failure wraps ErrExportFailed.
func (e *exporter) run(ctx context.Context, job *ExportJob, src *SourceAudio, snap Parameters, name string) {
	e.logger.Printf("player: export %s started (tempo %.3f, pitch %+.2f)", job.ID, snap.TempoRatio, snap.PitchSemitones)

	blob, err := e.export(ctx, src, snap, name)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExportFailed, err)
		e.logger.Printf("player: export %s failed: %v", job.ID, err)
		job.resolve(nil, err)
		return
	}

	e.logger.Printf("player: export %s finished, %d bytes", job.ID, blob.Len())
	job.resolve(blob, nil)
}

func (e *exporter) export(ctx context.Context, src *SourceAudio, snap Parameters, name string) (*WavBlob, error) {
	if src == nil {
		return nil, ErrNotReady
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}

	frames, err := exportLength(src.Length(), src.NumberOfChannels(), snap.TempoRatio)
	if err != nil {
		return nil, err
	}

	off, err := graph.NewOfflineContext(src.NumberOfChannels(), frames, src.SampleRate)
	if err != nil {
		return nil, err
	}
	if err := off.AddModule(ctx, e.module); err != nil {
		return nil, err
	}

	node, err := e.factory(off, src)
	if err != nil {
		return nil, err
	}
	defer node.Off()

	if err := awaitInitialized(ctx, node); err != nil {
		return nil, err
	}
	// Progress is not reported for exports.
	go func() {
		for range node.Events() {
		}
	}()

	node.SetTempo(snap.TempoRatio)
	node.SetPitchSemitones(snap.PitchSemitones)
	node.SetPercentagePlayed(0)
	node.ConnectToBuffer()
	if err := node.Connect(off.Destination()); err != nil {
		return nil, err
	}
	defer node.Disconnect()
	node.Play()

	rendered, err := off.StartRendering(ctx)
	if err != nil {
		return nil, err
	}

	data, err := wavenc.Encode(rendered.Channels, rendered.SampleRate)
	if err != nil {
		return nil, err
	}
	return newWavBlob(data, name), nil
}

// awaitInitialized blocks until node reports initialization.
func awaitInitialized(ctx context.Context, node graph.Node) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-node.Events():
			if !ok {
				return errNodeClosed
			}
			if ev.Type == graph.EventInitialized {
				return nil
			}
		}
	}
}

// exportLength returns the rendered frame count, refusing lengths whose WAV
// data chunk could not be addressed before anything is allocated.
func exportLength(sourceFrames, channels int, tempo float64) (int, error) {
	if n := math.Floor(float64(sourceFrames)/tempo + exportFrameGuard); n > float64(wavenc.MaxDataSize) {
		return 0, fmt.Errorf("%w: tempo %v renders %.0f frames", wavenc.ErrDataTooLarge, tempo, n)
	}
	frames := exportFrames(sourceFrames, tempo)
	if err := wavenc.CheckDataSize(frames, channels); err != nil {
		return 0, err
	}
	return frames, nil
}

// exportFrames returns the rendered length of a source of the given frame
// count at tempo.
func exportFrames(sourceFrames int, tempo float64) int {
	return int(math.Floor(float64(sourceFrames)/tempo + exportFrameGuard))
}
