package midisynth

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"

	intaudio "github.com/cbegin/midisynth-go/internal/audio"
	intfx "github.com/cbegin/midisynth-go/internal/effects"
	intseq "github.com/cbegin/midisynth-go/internal/sequencer"
	intsmf "github.com/cbegin/midisynth-go/internal/smf"
	intwt "github.com/cbegin/midisynth-go/internal/wavetable"
)

type (
	Tables        = intwt.Tables
	WaveTable     = intwt.WaveTable
	EnvelopeTable = intwt.EnvelopeTable
	CenterMode    = intwt.CenterMode
	Command       = intsmf.Command
	Backend       = intaudio.Backend
)

const (
	CenterMidpoint = intwt.CenterMidpoint
	CenterNone     = intwt.CenterNone

	BackendEbiten = intaudio.BackendEbiten
	BackendOto    = intaudio.BackendOto

	DefaultTickRate = intwt.DefaultTickRate
)

// EventKind classifies a PlaybackEvent.
type EventKind int

const (
	EventCommand EventKind = iota
	EventTrackCompleted
	EventPlaybackEnded
)

// PlaybackEvent is delivered to the event hook. Command is only set for
// EventCommand.
type PlaybackEvent struct {
	Kind    EventKind
	Track   int
	Command Command
}

type PlayerOption func(*playerConfig)

type playerConfig struct {
	tickRate int
	backend  Backend
	params   intwt.Params
	filter   string
	volume   float64
	hook     func(PlaybackEvent)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		tickRate: DefaultTickRate,
		backend:  BackendEbiten,
		params:   intwt.DefaultParams(),
		volume:   1,
	}
}

// WithTickRate sets the synthesis callback rate, which is also the output
// sample rate.
func WithTickRate(rate int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.tickRate = rate
	}
}

func WithBackend(b Backend) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.backend = b
	}
}

func WithCenterMode(mode CenterMode) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.params.Center = mode
	}
}

// WithTranspose replaces the semitone offset applied before the pitch
// lookup (default 6).
func WithTranspose(semitones int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.params.Transpose = semitones
	}
}

func WithTables(t *Tables) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.params.Tables = t
	}
}

// WithOutputFilter installs a post-processing chain such as
// "dcblock;lowpass 8000". See effects.ParseChain.
func WithOutputFilter(desc string) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.filter = desc
	}
}

// WithEventHook installs a callback for decoded commands and track
// boundaries. It runs on the playback goroutine; keep it brief.
func WithEventHook(hook func(PlaybackEvent)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.hook = hook
	}
}

type openFunc func(intaudio.Backend, int, intaudio.Ticker, intaudio.Filter) (intaudio.Output, *intaudio.StreamReader, error)

// Player plays SMF streams in real time through an audio backend.
type Player struct {
	playMu sync.Mutex // held for a whole PlayTrack

	mu     sync.Mutex
	reader *intaudio.StreamReader // current stream, nil when idle

	tickRate int
	backend  Backend
	filter   string
	hook     func(PlaybackEvent)
	engine   *intwt.Engine
	volume   atomic.Uint64 // float64 bits
	open     openFunc
}

func NewPlayer(opts ...PlayerOption) (*Player, error) {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tickRate <= 0 {
		return nil, errors.New("tick rate must be positive")
	}
	if _, err := intaudio.ParseBackend(string(cfg.backend)); err != nil {
		return nil, err
	}
	if _, err := intfx.ParseChain(cfg.filter, cfg.tickRate); err != nil {
		return nil, err
	}
	p := &Player{
		tickRate: cfg.tickRate,
		backend:  cfg.backend,
		filter:   cfg.filter,
		hook:     cfg.hook,
		engine:   intwt.New(cfg.tickRate, cfg.params),
		open:     intaudio.Open,
	}
	p.volume.Store(math.Float64bits(cfg.volume))
	return p, nil
}

// SelectTables replaces the wave and envelope tables for subsequently
// started notes.
func (p *Player) SelectTables(wave WaveTable, env EnvelopeTable) {
	p.engine.SelectTables(intwt.NewTables(wave, env))
}

// SetMasterVolume sets the output gain, applying it to a stream that is
// already playing. 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.volume.Store(math.Float64bits(volume))
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reader != nil {
		p.reader.SetGain(float32(volume))
	}
}

func (p *Player) MasterVolume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// PlayFile reads and plays an SMF file.
func (p *Player) PlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return p.PlayTrack(data)
}

// PlayTrack plays every track of an SMF stream and blocks until the last
// note's envelope has completed. Only one stream plays at a time.
func (p *Player) PlayTrack(data []byte) error {
	p.playMu.Lock()
	defer p.playMu.Unlock()

	filter, err := intfx.ParseChain(p.filter, p.tickRate)
	if err != nil {
		return err
	}
	var f intaudio.Filter
	if filter != nil {
		f = filter
	}
	out, reader, err := p.open(p.backend, p.tickRate, p.engine, f)
	if err != nil {
		return fmt.Errorf("open %s output: %w", p.backend, err)
	}
	p.mu.Lock()
	p.reader = reader
	reader.SetGain(float32(p.MasterVolume()))
	p.mu.Unlock()
	out.Play()

	seq := intseq.NewWithOptions(p.engine, intseq.RealtimeClock{}, sequencerOptions(p.hook))
	playErr := seq.Play(bytes.NewReader(data))
	reader.Finish()
	p.mu.Lock()
	p.reader = nil
	p.mu.Unlock()
	if err := out.Stop(); err != nil && playErr == nil {
		playErr = err
	}
	return playErr
}

func sequencerOptions(hook func(PlaybackEvent)) intseq.Options {
	if hook == nil {
		return intseq.Options{}
	}
	track := 0
	return intseq.Options{
		OnCommand: func(c intsmf.Command) {
			hook(PlaybackEvent{Kind: EventCommand, Track: track, Command: c})
		},
		OnEvent: func(kind intseq.EventKind) {
			switch kind {
			case intseq.EventTrackCompleted:
				hook(PlaybackEvent{Kind: EventTrackCompleted, Track: track})
				track++
			case intseq.EventPlaybackEnded:
				hook(PlaybackEvent{Kind: EventPlaybackEnded, Track: track})
			}
		},
	}
}

// Wave returns a built-in waveform: sine, triangle, square or saw.
func Wave(name string) (WaveTable, error) {
	return intwt.Wave(name)
}

// Envelope returns a built-in envelope: piano, organ, pluck or flat.
func Envelope(name string) (EnvelopeTable, error) {
	return intwt.EnvelopeShape(name)
}

// ParseCenterMode maps "midpoint" or "none" to a CenterMode.
func ParseCenterMode(name string) (CenterMode, error) {
	return intwt.ParseCenterMode(name)
}

// ParseBackend maps "ebiten" or "oto" to a Backend.
func ParseBackend(name string) (Backend, error) {
	return intaudio.ParseBackend(name)
}
