/*
Package smf decodes Standard MIDI Files as a single forward pass over a byte
stream. Only the events a monophonic player needs are surfaced as commands;
everything else is consumed and reported as ignored.
*/
package smf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

/*
Decoder reads an SMF stream. Its cursor only ever moves forward; a short read
anywhere leaves the stream unusable and every such failure wraps
ErrShortRead.
*/
type Decoder struct {
	r         *bufio.Reader
	pos       int64
	header    Header
	usPerTick uint32
	status    byte  // running status, 0 when none is in effect
	chunkEnd  int64 // end of the current MTrk chunk, -1 before the first
	buf       [8]byte
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r), chunkEnd: -1}
}

// Pos returns the number of bytes consumed so far.
func (d *Decoder) Pos() int64 { return d.pos }

// Header returns the header read by ReadHeader.
func (d *Decoder) Header() Header { return d.header }

// UsPerTick returns the tempo currently in effect in microseconds per tick.
func (d *Decoder) UsPerTick() uint32 { return d.usPerTick }

/*
ReadHeader consumes the MThd chunk. The chunk must declare at least six bytes
of data; any excess is skipped. Division values with the high bit set
describe SMPTE frames and are rejected.
*/
func (d *Decoder) ReadHeader() (Header, error) {
	id, length, err := d.readChunkPrefix("header")
	if err != nil {
		return Header{}, err
	}
	if id != headerChunk {
		return Header{}, fmt.Errorf("%w: expected MThd, found %q", ErrBadChunk, id[:])
	}
	if length < headerLength {
		return Header{}, fmt.Errorf("%w: header length %d, want at least %d", ErrBadChunk, length, headerLength)
	}
	if err := d.readFull(d.buf[:headerLength], "header"); err != nil {
		return Header{}, err
	}
	h := Header{
		Format:          binary.BigEndian.Uint16(d.buf[0:2]),
		Tracks:          binary.BigEndian.Uint16(d.buf[2:4]),
		TicksPerQuarter: binary.BigEndian.Uint16(d.buf[4:6]),
	}
	if h.TicksPerQuarter&0x8000 != 0 {
		return Header{}, ErrUnsupportedDivision
	}
	if h.TicksPerQuarter == 0 {
		return Header{}, fmt.Errorf("%w: zero ticks per quarter note", ErrBadChunk)
	}
	if err := d.skip(int64(length-headerLength), "header"); err != nil {
		return Header{}, err
	}
	d.header = h
	d.usPerTick = perTick(DefaultTempo, h.TicksPerQuarter)
	return h, nil
}

// ReadTrackHeader advances to the next MTrk chunk, skipping any chunks of
// other types. Running status does not carry across tracks.
func (d *Decoder) ReadTrackHeader() error {
	for {
		id, length, err := d.readChunkPrefix("track header")
		if err != nil {
			return err
		}
		if id == trackChunk {
			d.chunkEnd = d.pos + int64(length)
			d.status = 0
			return nil
		}
		if err := d.skip(int64(length), "unknown chunk"); err != nil {
			return err
		}
	}
}

// ReadVLQ consumes a variable-length quantity: seven bits per byte, most
// significant first, with the high bit set on every byte but the last.
func (d *Decoder) ReadVLQ() (uint32, error) {
	var value uint32
	for i := 0; i < maxVLQBytes; i++ {
		b, err := d.readByte("variable-length quantity")
		if err != nil {
			return 0, err
		}
		value = value<<7 | uint32(b&sevenBitMask)
		if b&msbMask == 0 {
			return value, nil
		}
	}
	return 0, fmt.Errorf("%w at byte %d", ErrBadVLQ, d.pos)
}

/*
ReadEvent consumes one delta-time and event. Note events carry their delta
time scaled by the tempo in effect now; a later tempo change does not alter
them. Reaching the end of the track chunk without an end-of-track meta event
is reported as CommandEndOfTrack; an event that runs past the end of the
chunk is an ErrBadChunk.
*/
func (d *Decoder) ReadEvent() (Command, error) {
	if d.chunkEnd >= 0 && d.pos >= d.chunkEnd {
		return Command{Kind: CommandEndOfTrack}, nil
	}
	cmd, err := d.readEvent()
	if err != nil {
		return Command{}, err
	}
	if d.chunkEnd >= 0 && d.pos > d.chunkEnd {
		return Command{}, fmt.Errorf("%w: event overruns track chunk by %d bytes", ErrBadChunk, d.pos-d.chunkEnd)
	}
	return cmd, nil
}

func (d *Decoder) readEvent() (Command, error) {
	delta, err := d.ReadVLQ()
	if err != nil {
		return Command{}, err
	}
	status, err := d.readByte("event type")
	if err != nil {
		return Command{}, err
	}

	switch {
	case status == MetaEvent:
		d.status = 0
		return d.readMeta(delta)
	case status == SysExEvent || status == SysExEscapeEvent:
		d.status = 0
		length, err := d.ReadVLQ()
		if err != nil {
			return Command{}, err
		}
		if err := d.skip(int64(length), "sysex"); err != nil {
			return Command{}, err
		}
		return Command{Kind: CommandIgnored, Delta: delta}, nil
	case status >= SysExEvent:
		return Command{}, fmt.Errorf("%w: system status %#x at byte %d", ErrBadStatus, status, d.pos)
	}

	// channel voice event, possibly under running status
	data := d.buf[:2]
	n := dataLength(status)
	got := 0
	if status < msbMask {
		if d.status == 0 {
			return Command{}, fmt.Errorf("%w: %#x at byte %d", ErrBadStatus, status, d.pos)
		}
		data[0] = status
		got = 1
		status = d.status
		n = dataLength(status)
	} else {
		d.status = status
	}
	if err := d.readFull(data[got:n], "channel event"); err != nil {
		return Command{}, err
	}

	cmd := Command{Kind: CommandIgnored, Delta: delta}
	switch status & statusMask {
	case NoteOnEvent:
		cmd.Kind = CommandNoteOn
		if data[1] == 0 {
			cmd.Kind = CommandNoteOff
		}
	case NoteOffEvent:
		cmd.Kind = CommandNoteOff
	default:
		return cmd, nil
	}
	cmd.Note = int(data[0] & sevenBitMask)
	cmd.Micros = scale(delta, d.usPerTick)
	return cmd, nil
}

func (d *Decoder) readMeta(delta uint32) (Command, error) {
	typ, err := d.readByte("meta type")
	if err != nil {
		return Command{}, err
	}
	length, err := d.ReadVLQ()
	if err != nil {
		return Command{}, err
	}
	switch typ {
	case MetaEndOfTrack:
		if err := d.skip(int64(length), "end of track"); err != nil {
			return Command{}, err
		}
		// align on the next chunk even if the track carries trailing bytes
		if d.chunkEnd > d.pos {
			if err := d.skip(d.chunkEnd-d.pos, "track trailer"); err != nil {
				return Command{}, err
			}
		}
		return Command{Kind: CommandEndOfTrack, Delta: delta}, nil
	case MetaTempo:
		if length < 3 {
			return Command{}, fmt.Errorf("%w: tempo payload of %d bytes", ErrBadChunk, length)
		}
		if err := d.readFull(d.buf[:3], "tempo"); err != nil {
			return Command{}, err
		}
		if err := d.skip(int64(length-3), "tempo"); err != nil {
			return Command{}, err
		}
		tempo := uint32(d.buf[0])<<16 | uint32(d.buf[1])<<8 | uint32(d.buf[2])
		d.usPerTick = perTick(tempo, d.header.TicksPerQuarter)
		return Command{Kind: CommandTempo, UsPerTick: d.usPerTick, Delta: delta}, nil
	default:
		// text, track name, lyrics, time and key signature and anything
		// unrecognised
		if err := d.skip(int64(length), "meta event"); err != nil {
			return Command{}, err
		}
		return Command{Kind: CommandIgnored, Delta: delta}, nil
	}
}

func (d *Decoder) readChunkPrefix(what string) ([4]byte, uint32, error) {
	var id [4]byte
	if err := d.readFull(d.buf[:8], what); err != nil {
		return id, 0, err
	}
	copy(id[:], d.buf[:4])
	return id, binary.BigEndian.Uint32(d.buf[4:8]), nil
}

func (d *Decoder) readFull(p []byte, what string) error {
	n, err := io.ReadFull(d.r, p)
	d.pos += int64(n)
	if err != nil {
		return fmt.Errorf("%w: reading %s at byte %d", ErrShortRead, what, d.pos)
	}
	return nil
}

func (d *Decoder) readByte(what string) (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: reading %s at byte %d", ErrShortRead, what, d.pos)
	}
	d.pos++
	return b, nil
}

func (d *Decoder) skip(n int64, what string) error {
	if n <= 0 {
		return nil
	}
	m, err := io.CopyN(io.Discard, d.r, n)
	d.pos += m
	if err != nil {
		return fmt.Errorf("%w: skipping %s at byte %d", ErrShortRead, what, d.pos)
	}
	return nil
}

func dataLength(status byte) int {
	switch status & statusMask {
	case ProgramChange, ChannelPressure:
		return 1
	default:
		return 2
	}
}

func perTick(tempo uint32, ticksPerQuarter uint16) uint32 {
	if ticksPerQuarter == 0 {
		return tempo
	}
	v := tempo / uint32(ticksPerQuarter)
	if v == 0 {
		return 1
	}
	return v
}

func scale(delta, usPerTick uint32) uint32 {
	v := uint64(delta) * uint64(usPerTick)
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
