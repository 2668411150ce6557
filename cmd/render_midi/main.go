package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cbegin/midisynth-go"
)

func main() {
	var (
		outDir    = flag.String("out", ".", "output directory for .wav files")
		tickRate  = flag.Int("tick-rate", midisynth.DefaultTickRate, "synthesis tick rate in Hz (also the WAV sample rate)")
		waveName  = flag.String("wave", "sine", "waveform: sine|triangle|square|saw")
		envName   = flag.String("envelope", "piano", "envelope: piano|organ|pluck|flat")
		center    = flag.String("center", "midpoint", "amplitude centering: midpoint|none")
		transpose = flag.Int("transpose", 6, "semitones added before pitch lookup")
		fx        = flag.String("fx", "", `output filter chain, e.g. "dcblock;lowpass 8000"`)
		jobs      = flag.Int("j", runtime.NumCPU(), "files rendered concurrently")
	)
	flag.Parse()

	mode, err := midisynth.ParseCenterMode(strings.ToLower(*center))
	if err != nil {
		log.Fatal(err)
	}
	wave, err := midisynth.Wave(*waveName)
	if err != nil {
		log.Fatal(err)
	}
	env, err := midisynth.Envelope(*envName)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}
	opts := []midisynth.PlayerOption{
		midisynth.WithTickRate(*tickRate),
		midisynth.WithCenterMode(mode),
		midisynth.WithTranspose(*transpose),
		midisynth.WithTables(&midisynth.Tables{Wave: wave, Envelope: env}),
		midisynth.WithOutputFilter(*fx),
	}

	if flag.NArg() == 0 {
		out := filepath.Join(*outDir, "default.wav")
		f, err := os.Create(out)
		if err != nil {
			log.Fatal(err)
		}
		frames, err := midisynth.RenderWAV(midisynth.DefaultTune(), f, opts...)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s (%d frames)", out, frames)
		return
	}

	var list []midisynth.RenderJob
	for _, in := range flag.Args() {
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		list = append(list, midisynth.RenderJob{Input: in, Output: filepath.Join(*outDir, base+".wav")})
	}
	if err := midisynth.RenderFiles(context.Background(), list, *jobs, opts...); err != nil {
		log.Fatal(err)
	}
	log.Printf("rendered %d files to %s", len(list), *outDir)
}
