package wavetable

const (
	// ReferenceNote is the transposed MIDI note that reads the wave table at
	// exactly one sample per tick.
	ReferenceNote = 59
	// DefaultTranspose is the semitone offset applied to incoming notes before
	// the ratio lookup. It tunes the built-in 256-sample tables against the
	// 62.5 kHz tick rate.
	DefaultTranspose = 6

	MinOctave = -7
	MaxOctave = 6

	// MaxAdvancePerTick is the most index increments a single Tick can make
	// for a step returned by StepFor: ceil(17<<MaxOctave / 9).
	MaxAdvancePerTick = 121
)

// Step ratios for the twelve semitones above ReferenceNote. Each entry
// approximates 2^(i/12) with a small fraction, e.g. 18/17 = 1.0588 against
// the ideal 1.0595.
var (
	ratioNum = [12]uint32{1, 18, 55, 44, 63, 4, 41, 3, 100, 37, 98, 17}
	ratioDen = [12]uint32{1, 17, 49, 37, 50, 3, 29, 2, 63, 22, 55, 9}
)

// Ratio returns the unscaled step fraction for a pitch class (0-11).
func Ratio(pitchClass int) (num, den uint32) {
	pitchClass = ((pitchClass % 12) + 12) % 12
	return ratioNum[pitchClass], ratioDen[pitchClass]
}

// StepFor maps a MIDI note to the oscillator step fraction. Octaves are
// applied as shifts: up scales the numerator, down scales the denominator.
// Octaves outside [MinOctave, MaxOctave] are clamped, keeping the pitch class.
func StepFor(note int, transpose int) (num, den uint32) {
	rel := note + transpose - ReferenceNote
	pc := ((rel % 12) + 12) % 12
	octave := (rel - pc) / 12
	if octave < MinOctave {
		octave = MinOctave
	}
	if octave > MaxOctave {
		octave = MaxOctave
	}
	num, den = ratioNum[pc], ratioDen[pc]
	if octave < 0 {
		den <<= uint(-octave)
	} else {
		num <<= uint(octave)
	}
	return num, den
}

// Oscillator is a digital differential analyzer over a 256-entry table. Each
// Tick advances the read index num/den samples on average without dividing.
type Oscillator struct {
	acc   int32 // must hold negative values
	index uint8
	num   uint32
	den   uint32
}

// NewOscillator returns an oscillator stepping one sample per tick.
func NewOscillator() Oscillator {
	return Oscillator{num: 1, den: 1}
}

// SetStep changes the step fraction. Zero values are raised to 1.
func (o *Oscillator) SetStep(num, den uint32) {
	if num == 0 {
		num = 1
	}
	if den == 0 {
		den = 1
	}
	o.num = num
	o.den = den
}

// Step returns the current step fraction.
func (o *Oscillator) Step() (num, den uint32) {
	return o.num, o.den
}

// Tick advances the accumulator by one period and returns the new index.
func (o *Oscillator) Tick() uint8 {
	o.acc += int32(o.num)
	for o.acc > 0 {
		o.acc -= int32(o.den)
		o.index++
	}
	return o.index
}

// Index returns the current table read position.
func (o *Oscillator) Index() uint8 {
	return o.index
}
