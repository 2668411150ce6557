package sequencer

import (
	"fmt"
	"io"

	"github.com/cbegin/midisynth-go/internal/smf"
	"github.com/cbegin/midisynth-go/internal/wavetable"
)

// VoiceEngine is the single voice the sequencer drives.
type VoiceEngine interface {
	// NoteOn retunes the voice to note.
	NoteOn(note int)
	// NoteOff restarts the envelope over durationUs and returns a handle
	// that completes when the envelope reaches its final entry.
	NoteOff(durationUs uint32) wavetable.Completion
	// Tick runs one synthesis period. Only stepped clocks call it.
	Tick() uint8
}

// EventKind identifies sequencer lifecycle events.
type EventKind int

const (
	EventTrackCompleted EventKind = iota
	EventPlaybackEnded
)

type Options struct {
	OnEvent   func(EventKind)
	OnCommand func(smf.Command) // called for every decoded command, ignored ones included
}

// Sequencer drains an SMF stream one command at a time. A note-off blocks
// until the voice's envelope completes, so notes never overlap.
type Sequencer struct {
	engine    VoiceEngine
	clock     Clock
	onEvent   func(EventKind)
	onCommand func(smf.Command)
	notes     int
}

func New(engine VoiceEngine, clock Clock) *Sequencer {
	return NewWithOptions(engine, clock, Options{})
}

func NewWithOptions(engine VoiceEngine, clock Clock, opts Options) *Sequencer {
	if clock == nil {
		clock = RealtimeClock{}
	}
	return &Sequencer{
		engine:    engine,
		clock:     clock,
		onEvent:   opts.OnEvent,
		onCommand: opts.OnCommand,
	}
}

// Play decodes and plays every track of the stream, returning once the last
// note's envelope has completed. Decode failures abort playback.
func (s *Sequencer) Play(r io.Reader) error {
	d := smf.NewDecoder(r)
	h, err := d.ReadHeader()
	if err != nil {
		return err
	}
	for i := 0; i < int(h.Tracks); i++ {
		if err := d.ReadTrackHeader(); err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
		if err := s.playTrack(d); err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
		s.emit(EventTrackCompleted)
	}
	s.emit(EventPlaybackEnded)
	return nil
}

// NotesPlayed returns the number of notes released so far.
func (s *Sequencer) NotesPlayed() int {
	return s.notes
}

func (s *Sequencer) playTrack(d *smf.Decoder) error {
	for {
		cmd, err := d.ReadEvent()
		if err != nil {
			return err
		}
		if s.onCommand != nil {
			s.onCommand(cmd)
		}
		switch cmd.Kind {
		case smf.CommandNoteOn:
			s.engine.NoteOn(cmd.Note)
		case smf.CommandNoteOff:
			done := s.engine.NoteOff(cmd.Micros)
			if err := s.clock.Await(s.engine, done); err != nil {
				return err
			}
			s.notes++
		case smf.CommandEndOfTrack:
			return nil
		}
	}
}

func (s *Sequencer) emit(kind EventKind) {
	if s.onEvent != nil {
		s.onEvent(kind)
	}
}
