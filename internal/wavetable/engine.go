package wavetable

import (
	"sync/atomic"
)

// DefaultTickRate is the synthesis callback rate: a 16 MHz clock divided by
// a 256-step PWM period.
const DefaultTickRate = 62500

// Params controls the wavetable engine.
type Params struct {
	Transpose int        // semitones added to every note before the ratio lookup
	Center    CenterMode // output centering of the combined sample
	Tables    *Tables    // initial tables; nil selects DefaultTables
}

// DefaultParams returns the engine defaults.
func DefaultParams() Params {
	return Params{
		Transpose: DefaultTranspose,
		Center:    CenterMidpoint,
	}
}

// Engine is a single wavetable voice. Tick is the periodic synthesis
// callback and must only ever be called from one goroutine at a time.
// NoteOn, NoteOff and SelectTables are called from the foreground and only
// publish values through atomics; they never touch state owned by Tick.
//
// Publication order:
//   - NoteOn stores the active tables, then the packed step ratio in one
//     64-bit word, so Tick never observes a numerator from one note and a
//     denominator from another.
//   - NoteOff stores the envelope limit, then bumps generation. Tick loads
//     generation first and the limit second, then resets its own envelope.
type Engine struct {
	tickRate int
	params   Params

	// foreground -> Tick
	step         atomic.Uint64 // num<<32 | den
	pendingLimit atomic.Uint32
	generation   atomic.Uint32
	pending      atomic.Pointer[Tables]
	active       atomic.Pointer[Tables]

	// Tick -> foreground
	completed atomic.Uint32
	envIndex  atomic.Uint32
	notify    chan struct{}

	// owned by Tick
	osc     Oscillator
	env     Envelope
	seenGen uint32
}

// New creates a wavetable engine ticking at tickRate Hz.
func New(tickRate int, params Params) *Engine {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	tables := params.Tables
	if tables == nil {
		tables = DefaultTables()
	}
	e := &Engine{
		tickRate: tickRate,
		params:   params,
		osc:      NewOscillator(),
		notify:   make(chan struct{}, 1),
	}
	e.pending.Store(tables)
	e.active.Store(tables)
	e.step.Store(1<<32 | 1)
	// Start parked on the envelope's tail so the output is the table's
	// resting level until the first note is released.
	e.env.Hold()
	e.envIndex.Store(EnvelopeSteps)
	return e
}

// TickRate returns the callback rate in Hz.
func (e *Engine) TickRate() int {
	return e.tickRate
}

// SelectTables replaces the tables used by subsequently started notes.
func (e *Engine) SelectTables(t *Tables) {
	if t == nil {
		return
	}
	cp := *t
	e.pending.Store(&cp)
}

// NoteOn retunes the oscillator to note.
func (e *Engine) NoteOn(note int) {
	if t := e.pending.Load(); t != nil {
		e.active.Store(t)
	}
	num, den := StepFor(note, e.params.Transpose)
	e.step.Store(uint64(num)<<32 | uint64(den))
}

// NoteOff restarts the envelope so it spans durationUs and returns a
// handle that completes once the envelope reaches its final entry.
func (e *Engine) NoteOff(durationUs uint32) Completion {
	e.pendingLimit.Store(LimitFor(durationUs, e.tickRate))
	gen := e.generation.Add(1)
	return Completion{e: e, gen: gen}
}

// Tick runs one synthesis period and returns the output level.
func (e *Engine) Tick() uint8 {
	if gen := e.generation.Load(); gen != e.seenGen {
		e.seenGen = gen
		e.env.Reset(e.pendingLimit.Load())
	}
	s := e.step.Load()
	e.osc.SetStep(uint32(s>>32), uint32(s))
	tables := e.active.Load()

	wave := tables.Wave[e.osc.Tick()]
	if e.env.Tick() {
		e.completed.Store(e.seenGen)
		select {
		case e.notify <- struct{}{}:
		default:
		}
	}
	idx := e.env.Index()
	e.envIndex.Store(uint32(idx))
	return Combine(wave, tables.Envelope[idx], e.params.Center)
}

// Render runs len(dst) ticks into dst.
func (e *Engine) Render(dst []uint8) {
	for i := range dst {
		dst[i] = e.Tick()
	}
}

// EnvelopeIndex returns the envelope position as of the last Tick. Safe to
// call from any goroutine.
func (e *Engine) EnvelopeIndex() uint8 {
	return uint8(e.envIndex.Load())
}

// SampleIndex returns the oscillator's table position. Only valid on the
// goroutine that calls Tick.
func (e *Engine) SampleIndex() uint8 {
	return e.osc.Index()
}

// Step returns the step ratio most recently published by NoteOn.
func (e *Engine) Step() (num, den uint32) {
	s := e.step.Load()
	return uint32(s >> 32), uint32(s)
}

// Completion tracks the envelope of one released note.
type Completion struct {
	e   *Engine
	gen uint32
}

// Done reports whether the envelope reached its final entry.
func (c Completion) Done() bool {
	return c.e != nil && c.e.completed.Load() == c.gen
}

// Wait blocks until Done. Something else must be calling Tick.
func (c Completion) Wait() {
	if c.e == nil {
		return
	}
	for !c.Done() {
		<-c.e.notify
	}
}
