package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Ticker is the periodic synthesis callback. The stream invokes it exactly
// once per output frame, which makes the device clock the tick timer.
type Ticker interface {
	Tick() uint8
}

// Filter post-processes the converted float signal.
type Filter interface {
	Process(x float32) float32
}

// LevelToFloat maps an 8-bit output level onto [-1, 1).
func LevelToFloat(level uint8) float32 {
	return (float32(level) - 128) / 128
}

// StreamReader converts ticks into little-endian float32 frames, repeating
// the mono level on every channel.
type StreamReader struct {
	mu       sync.Mutex
	source   Ticker
	filter   Filter
	channels int
	gain     atomic.Uint32 // float32 bits
	finished atomic.Bool
	frames   atomic.Uint64
}

func NewStreamReader(source Ticker, channels int, filter Filter) *StreamReader {
	if channels <= 0 {
		channels = 1
	}
	r := &StreamReader{source: source, channels: channels, filter: filter}
	r.gain.Store(math.Float32bits(1))
	return r
}

// SetGain sets the output gain atomically.
func (r *StreamReader) SetGain(gain float32) {
	if gain < 0 {
		gain = 0
	}
	r.gain.Store(math.Float32bits(gain))
}

// Gain returns the current output gain.
func (r *StreamReader) Gain() float32 {
	return math.Float32frombits(r.gain.Load())
}

// Finish makes the next Read return io.EOF.
func (r *StreamReader) Finish() {
	r.finished.Store(true)
}

// Frames returns the number of frames produced so far.
func (r *StreamReader) Frames() uint64 {
	return r.frames.Load()
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frameBytes := 4 * r.channels
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	gain := math.Float32frombits(r.gain.Load())
	for f := 0; f < frames; f++ {
		s := LevelToFloat(r.source.Tick())
		if r.filter != nil {
			s = r.filter.Process(s)
		}
		u := math.Float32bits(s * gain)
		for c := 0; c < r.channels; c++ {
			binary.LittleEndian.PutUint32(p[f*frameBytes+c*4:], u)
		}
	}
	r.frames.Add(uint64(frames))
	n := frames * frameBytes
	if r.finished.Load() {
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }

// Output is a running audio device fed by a StreamReader.
type Output interface {
	Play()
	Pause()
	Stop() error
	Position() time.Duration
}

// Backend names an audio output implementation.
type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendOto    Backend = "oto"
)

// ParseBackend maps a name to a Backend.
func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case BackendEbiten, "":
		return BackendEbiten, nil
	case BackendOto:
		return BackendOto, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected ebiten|oto)", name)
	}
}

// Open creates a paused output of the given kind that pulls one tick from
// source per frame. Call Play on the result to start it.
func Open(backend Backend, sampleRate int, source Ticker, filter Filter) (Output, *StreamReader, error) {
	switch backend {
	case BackendOto:
		reader := NewStreamReader(source, 1, filter)
		out, err := NewOtoPlayer(sampleRate, reader)
		if err != nil {
			return nil, nil, err
		}
		return out, reader, nil
	case BackendEbiten, "":
		reader := NewStreamReader(source, 2, filter)
		out, err := NewPlayer(sampleRate, reader)
		if err != nil {
			return nil, nil, err
		}
		return out, reader, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// Player plays a stereo StreamReader through ebiten's audio context.
type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioContextErr  error
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, errSampleRate(audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func errSampleRate(have, want int) error {
	return fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", have, want)
}

func NewPlayer(sampleRate int, reader *StreamReader) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns the current playback position (what the listener actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
