package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/cbegin/midisynth-go"
)

func main() {
	var (
		midiPath  = flag.String("file", "", "path to a Standard MIDI File (default: built-in tune)")
		backend   = flag.String("backend", "ebiten", "audio backend: ebiten|oto")
		tickRate  = flag.Int("tick-rate", midisynth.DefaultTickRate, "synthesis tick rate in Hz (also the output sample rate)")
		waveName  = flag.String("wave", "sine", "waveform: sine|triangle|square|saw")
		envName   = flag.String("envelope", "piano", "envelope: piano|organ|pluck|flat")
		center    = flag.String("center", "midpoint", "amplitude centering: midpoint|none")
		transpose = flag.Int("transpose", 6, "semitones added before pitch lookup")
		fx        = flag.String("fx", "", `output filter chain, e.g. "dcblock;lowpass 8000"`)
		volume    = flag.Float64("volume", 1.0, "master volume scalar")
		verbose   = flag.Bool("v", false, "print decoded commands")
	)
	flag.Parse()

	be, err := midisynth.ParseBackend(strings.ToLower(*backend))
	if err != nil {
		log.Fatal(err)
	}
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

	pl, err := midisynth.NewPlayer(
		midisynth.WithBackend(be),
		midisynth.WithTickRate(*tickRate),
		midisynth.WithCenterMode(mode),
		midisynth.WithTranspose(*transpose),
		midisynth.WithOutputFilter(*fx),
		midisynth.WithEventHook(func(ev midisynth.PlaybackEvent) {
			switch ev.Kind {
			case midisynth.EventCommand:
				if *verbose {
					fmt.Printf("track %d: %s\n", ev.Track, ev.Command)
				}
			case midisynth.EventTrackCompleted:
				fmt.Printf("track %d completed\n", ev.Track)
			case midisynth.EventPlaybackEnded:
				fmt.Println("playback completed")
			}
		}),
	)
	if err != nil {
		log.Fatal(err)
	}
	pl.SelectTables(wave, env)
	pl.SetMasterVolume(*volume)

	if *midiPath == "" {
		err = pl.PlayTrack(midisynth.DefaultTune())
	} else {
		err = pl.PlayFile(*midiPath)
	}
	if err != nil {
		log.Fatal(err)
	}
}
