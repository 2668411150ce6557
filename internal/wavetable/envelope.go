package wavetable

// EnvelopeSteps is the number of index increments from the first envelope
// entry to the last.
const EnvelopeSteps = TableSize - 1

// Envelope walks an EnvelopeTable one entry every limit ticks and holds on
// the final entry.
type Envelope struct {
	counter uint32
	limit   uint32
	index   uint8
}

// Reset restarts the envelope at entry 0 stepping every limit ticks.
func (e *Envelope) Reset(limit uint32) {
	if limit == 0 {
		limit = 1
	}
	e.counter = 0
	e.index = 0
	e.limit = limit
}

// Tick advances the envelope by one period. It reports whether this tick
// moved the index onto the final entry.
func (e *Envelope) Tick() bool {
	if e.limit == 0 {
		e.limit = 1
	}
	e.counter++
	if e.counter != e.limit {
		return false
	}
	e.counter = 0
	if e.index == EnvelopeSteps {
		return false
	}
	e.index++
	return e.index == EnvelopeSteps
}

// Index returns the current envelope table position.
func (e *Envelope) Index() uint8 {
	return e.index
}

// Saturated reports whether the envelope reached its final entry.
func (e *Envelope) Saturated() bool {
	return e.index == EnvelopeSteps
}

// Hold parks the envelope on its final entry without signalling completion.
func (e *Envelope) Hold() {
	e.counter = 0
	e.limit = 1
	e.index = EnvelopeSteps
}

// LimitFor converts a note duration into ticks per envelope step so the full
// envelope spans the duration at the given tick rate.
func LimitFor(durationUs uint32, tickRate int) uint32 {
	if tickRate <= 0 {
		return 1
	}
	ticks := uint64(durationUs) * uint64(tickRate) / 1_000_000
	limit := ticks / EnvelopeSteps
	if limit == 0 {
		return 1
	}
	if limit > 1<<31 {
		return 1 << 31
	}
	return uint32(limit)
}
