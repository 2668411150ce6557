package audio

import (
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer plays a mono StreamReader straight through an oto context,
// bypassing ebiten's mixer.
type OtoPlayer struct {
	mu         sync.Mutex
	player     *oto.Player
	reader     *StreamReader
	sampleRate int
	started    bool
}

var (
	otoContextOnce sync.Once
	otoContext     *oto.Context
	otoContextErr  error
	otoSampleRate  int
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoContextOnce.Do(func() {
		otoSampleRate = sampleRate
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
			BufferSize:   20 * time.Millisecond,
		})
		if err != nil {
			otoContextErr = err
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoContextErr != nil {
		return nil, otoContextErr
	}
	if otoSampleRate != sampleRate {
		return nil, errSampleRate(otoSampleRate, sampleRate)
	}
	return otoContext, nil
}

func NewOtoPlayer(sampleRate int, reader *StreamReader) (*OtoPlayer, error) {
	ctx, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &OtoPlayer{
		player:     ctx.NewPlayer(reader),
		reader:     reader,
		sampleRate: sampleRate,
	}, nil
}

func (op *OtoPlayer) Play() {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.player.Play()
	op.started = true
}

func (op *OtoPlayer) Pause() {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.player.Pause()
}

// Position estimates the audible position from frames pulled minus what is
// still buffered.
func (op *OtoPlayer) Position() time.Duration {
	frames := int64(op.reader.Frames()) - int64(op.player.BufferedSize()/4)
	if frames < 0 {
		frames = 0
	}
	return time.Duration(frames) * time.Second / time.Duration(op.sampleRate)
}

func (op *OtoPlayer) Stop() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	if !op.started {
		return nil
	}
	op.started = false
	op.player.Pause()
	return op.player.Close()
}
