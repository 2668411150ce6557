package audio

import (
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth    = 16
	wavPCMFormat   = 1
	wavChunkFrames = 4096
)

// WAVWriter encodes 8-bit output levels as 16-bit mono PCM. It satisfies
// io.ByteWriter so it can sit directly behind a stepped clock.
type WAVWriter struct {
	enc    *wav.Encoder
	buf    *goaudio.IntBuffer
	filter Filter
	frames int
}

// NewWAVWriter starts a WAV stream on w. Close must be called to finish the
// header.
func NewWAVWriter(w io.WriteSeeker, sampleRate int, filter Filter) *WAVWriter {
	return &WAVWriter{
		enc: wav.NewEncoder(w, sampleRate, wavBitDepth, 1, wavPCMFormat),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
			Data:           make([]int, 0, wavChunkFrames),
			SourceBitDepth: wavBitDepth,
		},
		filter: filter,
	}
}

// LevelToPCM16 maps an 8-bit output level onto the signed 16-bit range.
func LevelToPCM16(level uint8) int {
	return (int(level) - 128) << 8
}

func (w *WAVWriter) WriteByte(level byte) error {
	var v int
	if w.filter != nil {
		f := w.filter.Process(LevelToFloat(level)) * 32768
		switch {
		case f > 32767:
			v = 32767
		case f < -32768:
			v = -32768
		default:
			v = int(f)
		}
	} else {
		v = LevelToPCM16(level)
	}
	w.buf.Data = append(w.buf.Data, v)
	w.frames++
	if len(w.buf.Data) == cap(w.buf.Data) {
		return w.flush()
	}
	return nil
}

// Frames returns the number of frames written.
func (w *WAVWriter) Frames() int {
	return w.frames
}

// Close flushes buffered frames and finalises the header.
func (w *WAVWriter) Close() error {
	if err := w.flush(); err != nil {
		return err
	}
	return w.enc.Close()
}

func (w *WAVWriter) flush() error {
	if len(w.buf.Data) == 0 {
		return nil
	}
	err := w.enc.Write(w.buf)
	w.buf.Data = w.buf.Data[:0]
	return err
}
