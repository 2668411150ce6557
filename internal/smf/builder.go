package smf

import (
	"bytes"
	"encoding/binary"
)

// AppendVLQ appends v as a variable-length quantity.
func AppendVLQ(dst []byte, v uint32) []byte {
	var tmp [maxVLQBytes + 1]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & sevenBitMask)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		tmp[i] = byte(v&sevenBitMask) | msbMask
	}
	return append(dst, tmp[i:]...)
}

// Builder assembles an SMF byte stream track by track. It is used for the
// built-in tunes and for fixtures.
type Builder struct {
	ticksPerQuarter uint16
	format          uint16
	runningStatus   bool
	tracks          [][]byte
	cur             bytes.Buffer
	status          byte
	open            bool
}

// NewBuilder starts a stream with the given time division.
func NewBuilder(ticksPerQuarter uint16) *Builder {
	return &Builder{ticksPerQuarter: ticksPerQuarter, format: 1}
}

// RunningStatus makes the builder omit repeated channel status bytes.
func (b *Builder) RunningStatus(on bool) *Builder {
	b.runningStatus = on
	return b
}

// StartTrack begins a new track, closing any open one without an
// end-of-track event.
func (b *Builder) StartTrack() *Builder {
	b.flush()
	b.open = true
	b.status = 0
	return b
}

// Tempo writes a tempo meta event in microseconds per quarter note.
func (b *Builder) Tempo(delta uint32, usPerQuarter uint32) *Builder {
	return b.Meta(delta, MetaTempo, []byte{byte(usPerQuarter >> 16), byte(usPerQuarter >> 8), byte(usPerQuarter)})
}

// Meta writes an arbitrary meta event.
func (b *Builder) Meta(delta uint32, typ byte, payload []byte) *Builder {
	b.delta(delta)
	b.cur.WriteByte(MetaEvent)
	b.cur.WriteByte(typ)
	b.cur.Write(AppendVLQ(nil, uint32(len(payload))))
	b.cur.Write(payload)
	b.status = 0
	return b
}

// SysEx writes a system exclusive event.
func (b *Builder) SysEx(delta uint32, payload []byte) *Builder {
	b.delta(delta)
	b.cur.WriteByte(SysExEvent)
	b.cur.Write(AppendVLQ(nil, uint32(len(payload))))
	b.cur.Write(payload)
	b.status = 0
	return b
}

func (b *Builder) NoteOn(delta uint32, channel, note, velocity uint8) *Builder {
	return b.channel(delta, NoteOnEvent|channel&0x0F, note, velocity)
}

func (b *Builder) NoteOff(delta uint32, channel, note, velocity uint8) *Builder {
	return b.channel(delta, NoteOffEvent|channel&0x0F, note, velocity)
}

func (b *Builder) Controller(delta uint32, channel, controller, value uint8) *Builder {
	return b.channel(delta, ControlChange|channel&0x0F, controller, value)
}

func (b *Builder) Program(delta uint32, channel, program uint8) *Builder {
	return b.channel(delta, ProgramChange|channel&0x0F, program)
}

// Note writes a note-on followed by a note-off duration ticks later.
func (b *Builder) Note(delta uint32, note uint8, duration uint32) *Builder {
	return b.NoteOn(delta, 0, note, 100).NoteOff(duration, 0, note, 64)
}

// EndTrack writes the end-of-track meta event and closes the track.
func (b *Builder) EndTrack(delta uint32) *Builder {
	b.Meta(delta, MetaEndOfTrack, nil)
	b.flush()
	return b
}

// Bytes returns the complete stream. Open tracks are closed as they are.
func (b *Builder) Bytes() []byte {
	b.flush()
	format := b.format
	if len(b.tracks) == 1 {
		format = 0
	}
	var out bytes.Buffer
	out.Write(headerChunk[:])
	var hdr [10]byte
	binary.BigEndian.PutUint32(hdr[0:4], headerLength)
	binary.BigEndian.PutUint16(hdr[4:6], format)
	binary.BigEndian.PutUint16(hdr[6:8], uint16(len(b.tracks)))
	binary.BigEndian.PutUint16(hdr[8:10], b.ticksPerQuarter)
	out.Write(hdr[:])
	for _, tr := range b.tracks {
		out.Write(trackChunk[:])
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(tr)))
		out.Write(n[:])
		out.Write(tr)
	}
	return out.Bytes()
}

func (b *Builder) channel(delta uint32, status byte, data ...byte) *Builder {
	b.delta(delta)
	if !b.runningStatus || status != b.status {
		b.cur.WriteByte(status)
	}
	b.status = status
	for _, v := range data {
		b.cur.WriteByte(v & sevenBitMask)
	}
	return b
}

func (b *Builder) delta(delta uint32) {
	if !b.open {
		b.open = true
		b.status = 0
	}
	b.cur.Write(AppendVLQ(nil, delta))
}

func (b *Builder) flush() {
	if !b.open {
		return
	}
	b.tracks = append(b.tracks, append([]byte(nil), b.cur.Bytes()...))
	b.cur.Reset()
	b.open = false
	b.status = 0
}
