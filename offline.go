package midisynth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	intaudio "github.com/cbegin/midisynth-go/internal/audio"
	intfx "github.com/cbegin/midisynth-go/internal/effects"
	intseq "github.com/cbegin/midisynth-go/internal/sequencer"
	intwt "github.com/cbegin/midisynth-go/internal/wavetable"
)

func renderConfig(opts []PlayerOption) (playerConfig, error) {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tickRate <= 0 {
		return cfg, fmt.Errorf("tick rate must be positive, got %d", cfg.tickRate)
	}
	return cfg, nil
}

// RenderLevels plays data against a stepped clock and returns every level
// the synthesis callback produced while notes were released. The result is
// deterministic for a given stream and option set.
func RenderLevels(data []byte, opts ...PlayerOption) ([]uint8, error) {
	cfg, err := renderConfig(opts)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	engine := intwt.New(cfg.tickRate, cfg.params)
	seq := intseq.NewWithOptions(engine, &intseq.SteppedClock{Out: &out}, sequencerOptions(cfg.hook))
	if err := seq.Play(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// RenderWAV renders data as a 16-bit mono WAV at the tick rate, running the
// output filter if one is configured. It returns the number of frames.
func RenderWAV(data []byte, w io.WriteSeeker, opts ...PlayerOption) (int, error) {
	cfg, err := renderConfig(opts)
	if err != nil {
		return 0, err
	}
	chain, err := intfx.ParseChain(cfg.filter, cfg.tickRate)
	if err != nil {
		return 0, err
	}
	var filter intaudio.Filter
	if chain != nil {
		filter = chain
	}
	wavw := intaudio.NewWAVWriter(w, cfg.tickRate, filter)
	engine := intwt.New(cfg.tickRate, cfg.params)
	seq := intseq.NewWithOptions(engine, &intseq.SteppedClock{Out: wavw}, sequencerOptions(cfg.hook))
	if err := seq.Play(bytes.NewReader(data)); err != nil {
		wavw.Close()
		return wavw.Frames(), err
	}
	if err := wavw.Close(); err != nil {
		return wavw.Frames(), err
	}
	return wavw.Frames(), nil
}

// RenderJob maps one SMF file onto one WAV file.
type RenderJob struct {
	Input  string
	Output string
}

// RenderFiles renders jobs concurrently, at most limit at a time (limit <= 0
// means unbounded). The first failure cancels jobs that have not started.
func RenderFiles(ctx context.Context, jobs []RenderJob, limit int, opts ...PlayerOption) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := renderFile(job, opts); err != nil {
				return fmt.Errorf("%s: %w", job.Input, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func renderFile(job RenderJob, opts []PlayerOption) error {
	data, err := os.ReadFile(job.Input)
	if err != nil {
		return err
	}
	f, err := os.Create(job.Output)
	if err != nil {
		return err
	}
	if _, err := RenderWAV(data, f, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
