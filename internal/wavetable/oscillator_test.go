package wavetable

import (
	"math"
	"testing"
)

func TestRatioTableMatchesSemitoneFractions(t *testing.T) {
	want := [12][2]uint32{
		{1, 1}, {18, 17}, {55, 49}, {44, 37}, {63, 50}, {4, 3},
		{41, 29}, {3, 2}, {100, 63}, {37, 22}, {98, 55}, {17, 9},
	}
	for pc, w := range want {
		num, den := Ratio(pc)
		if num != w[0] || den != w[1] {
			t.Fatalf("pitch class %d: got %d/%d, want %d/%d", pc, num, den, w[0], w[1])
		}
		ideal := math.Pow(2, float64(pc)/12)
		got := float64(num) / float64(den)
		if math.Abs(got-ideal)/ideal > 0.01 {
			t.Fatalf("pitch class %d: ratio %f too far from %f", pc, got, ideal)
		}
	}
}

func TestStepForReferenceNoteIsUnity(t *testing.T) {
	num, den := StepFor(ReferenceNote-DefaultTranspose, DefaultTranspose)
	if num != 1 || den != 1 {
		t.Fatalf("reference note step = %d/%d, want 1/1", num, den)
	}
}

func TestStepForOctavesAreExactShifts(t *testing.T) {
	for pc := 0; pc < 12; pc++ {
		baseNum, baseDen := Ratio(pc)
		for oct := MinOctave; oct <= MaxOctave; oct++ {
			note := ReferenceNote + pc + oct*12
			num, den := StepFor(note, 0)
			wantNum, wantDen := baseNum, baseDen
			if oct < 0 {
				wantDen <<= uint(-oct)
			} else {
				wantNum <<= uint(oct)
			}
			if num != wantNum || den != wantDen {
				t.Fatalf("pc %d octave %d: got %d/%d, want %d/%d", pc, oct, num, den, wantNum, wantDen)
			}
		}
	}
}

func TestStepForUsesTransposedPitchClass(t *testing.T) {
	// one semitone above the transposed reference
	num, den := StepFor(ReferenceNote-DefaultTranspose+1, DefaultTranspose)
	if num != 18 || den != 17 {
		t.Fatalf("got %d/%d, want 18/17", num, den)
	}
	// one semitone below lands on pitch class 11 of the octave beneath
	num, den = StepFor(ReferenceNote-DefaultTranspose-1, DefaultTranspose)
	if num != 17 || den != 18 {
		t.Fatalf("got %d/%d, want 17/18", num, den)
	}
}

func TestStepForClampsOctaveRange(t *testing.T) {
	num, den := StepFor(ReferenceNote+12*(MaxOctave+3)+5, 0)
	if num != 4<<MaxOctave || den != 3 {
		t.Fatalf("high clamp: got %d/%d", num, den)
	}
	num, den = StepFor(ReferenceNote+12*(MinOctave-3)+7, 0)
	if num != 3 || den != 2<<(-MinOctave) {
		t.Fatalf("low clamp: got %d/%d", num, den)
	}
}

func TestOscillatorAverageRate(t *testing.T) {
	notes := []int{0, 21, 48, 53, 60, 69, 96, 127}
	for _, note := range notes {
		num, den := StepFor(note, DefaultTranspose)
		o := NewOscillator()
		o.SetStep(num, den)
		var advanced uint64
		prev := o.Index()
		const n = 50000
		for i := 0; i < n; i++ {
			idx := o.Tick()
			advanced += uint64(idx - prev)
			prev = idx
		}
		exact := float64(n) * float64(num) / float64(den)
		if diff := float64(advanced) - exact; diff < -1 || diff > 1 {
			t.Fatalf("note %d: advanced %d over %d ticks, want %.2f +-1", note, advanced, n, exact)
		}
	}
}

func TestOscillatorWorstCaseAdvancePerTick(t *testing.T) {
	var worst int
	for pc := 0; pc < 12; pc++ {
		num, den := StepFor(ReferenceNote+12*MaxOctave+pc, 0)
		bound := int((num + den - 1) / den)
		o := NewOscillator()
		o.SetStep(num, den)
		prev := o.Index()
		for i := 0; i < 4096; i++ {
			idx := o.Tick()
			adv := int(idx - prev)
			prev = idx
			if adv > bound {
				t.Fatalf("pitch class %d: %d increments in one tick, bound %d", pc, adv, bound)
			}
			if adv > worst {
				worst = adv
			}
		}
	}
	if worst != MaxAdvancePerTick {
		t.Fatalf("worst advance per tick = %d, want %d", worst, MaxAdvancePerTick)
	}
}

func TestOscillatorUnityStepAdvancesOncePerTick(t *testing.T) {
	o := NewOscillator()
	for i := 1; i <= 300; i++ {
		if got := o.Tick(); got != uint8(i) {
			t.Fatalf("tick %d: index %d, want %d", i, got, uint8(i))
		}
	}
}

func TestOscillatorZeroStepIsRaised(t *testing.T) {
	o := NewOscillator()
	o.SetStep(0, 0)
	if num, den := o.Step(); num != 1 || den != 1 {
		t.Fatalf("got %d/%d, want 1/1", num, den)
	}
}
