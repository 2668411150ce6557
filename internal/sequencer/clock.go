package sequencer

import (
	"io"

	"github.com/cbegin/midisynth-go/internal/wavetable"
)

// Ticker runs one synthesis period and returns the output level.
type Ticker interface {
	Tick() uint8
}

// Clock decides how the sequencer waits for a released note's envelope.
type Clock interface {
	Await(t Ticker, done wavetable.Completion) error
}

// RealtimeClock waits for the completion signal raised by whoever calls
// Tick, typically the audio backend's pull loop.
type RealtimeClock struct{}

func (RealtimeClock) Await(_ Ticker, done wavetable.Completion) error {
	done.Wait()
	return nil
}

// SteppedClock runs the synthesis callback itself, writing one level per
// tick to Out until the envelope completes. Output is only produced while
// a note is being released, which makes offline renders deterministic.
type SteppedClock struct {
	Out   io.ByteWriter // nil discards
	Ticks uint64
}

func (c *SteppedClock) Await(t Ticker, done wavetable.Completion) error {
	for !done.Done() {
		level := t.Tick()
		c.Ticks++
		if c.Out == nil {
			continue
		}
		if err := c.Out.WriteByte(level); err != nil {
			return err
		}
	}
	return nil
}
