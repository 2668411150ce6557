package smf

import (
	"errors"
	"fmt"
)

const (
	msbMask      = 1 << 7
	sevenBitMask = 0x7F
	statusMask   = 0xF0

	// Channel voice status nibbles.
	NoteOffEvent          = 0x80
	NoteOnEvent           = 0x90
	PolyphonicKeyPressure = 0xA0
	ControlChange         = 0xB0
	ProgramChange         = 0xC0
	ChannelPressure       = 0xD0
	PitchWheelChange      = 0xE0

	SysExEvent       = 0xF0
	SysExEscapeEvent = 0xF7
	MetaEvent        = 0xFF

	// Meta event types.
	MetaText          = 0x01
	MetaTrackName     = 0x03
	MetaLyric         = 0x05
	MetaEndOfTrack    = 0x2F
	MetaTempo         = 0x51
	MetaTimeSignature = 0x58
	MetaKeySignature  = 0x59

	// DefaultTempo is the tempo in effect until a tempo meta event, in
	// microseconds per quarter note (120 BPM).
	DefaultTempo = 500000

	headerLength = 6
	maxVLQBytes  = 4
)

var (
	headerChunk = [4]byte{'M', 'T', 'h', 'd'}
	trackChunk  = [4]byte{'M', 'T', 'r', 'k'}
)

var (
	ErrShortRead           = errors.New("smf: unexpected end of stream")
	ErrBadChunk            = errors.New("smf: malformed chunk")
	ErrBadVLQ              = errors.New("smf: variable-length quantity too long")
	ErrBadStatus           = errors.New("smf: data byte without running status")
	ErrUnsupportedDivision = errors.New("smf: SMPTE time division not supported")
)

// CommandKind tags a decoded Command.
type CommandKind int

const (
	CommandIgnored CommandKind = iota
	CommandNoteOn
	CommandNoteOff
	CommandTempo
	CommandEndOfTrack
)

func (k CommandKind) String() string {
	switch k {
	case CommandIgnored:
		return "Ignored"
	case CommandNoteOn:
		return "NoteOn"
	case CommandNoteOff:
		return "NoteOff"
	case CommandTempo:
		return "TempoChange"
	case CommandEndOfTrack:
		return "EndOfTrack"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command is one decoded event. Note and Micros are set for NoteOn/NoteOff,
// where Micros is the preceding delta time scaled to microseconds.
// UsPerTick is set for CommandTempo.
type Command struct {
	Kind      CommandKind
	Note      int
	Micros    uint32
	UsPerTick uint32
	Delta     uint32 // unscaled delta time in ticks
}

func (c Command) String() string {
	switch c.Kind {
	case CommandNoteOn, CommandNoteOff:
		return fmt.Sprintf("%s(%d, %dus)", c.Kind, c.Note, c.Micros)
	case CommandTempo:
		return fmt.Sprintf("%s(%dus/tick)", c.Kind, c.UsPerTick)
	default:
		return c.Kind.String()
	}
}

// Header is the decoded MThd chunk.
type Header struct {
	Format          uint16
	Tracks          uint16
	TicksPerQuarter uint16
}
