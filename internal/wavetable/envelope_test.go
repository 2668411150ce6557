package wavetable

import "testing"

func TestEnvelopeSaturatesAfterLimitTimesSteps(t *testing.T) {
	for _, limit := range []uint32{1, 2, 7, 244} {
		var e Envelope
		e.Reset(limit)
		total := int(limit) * EnvelopeSteps
		for i := 0; i < total-1; i++ {
			e.Tick()
		}
		if e.Saturated() {
			t.Fatalf("limit %d: saturated one tick early", limit)
		}
		if !e.Tick() {
			t.Fatalf("limit %d: final tick did not report completion", limit)
		}
		if e.Index() != 255 {
			t.Fatalf("limit %d: index %d, want 255", limit, e.Index())
		}
		for i := 0; i < 10*int(limit)+3; i++ {
			if e.Tick() {
				t.Fatalf("limit %d: completion reported twice", limit)
			}
		}
		if e.Index() != 255 {
			t.Fatalf("limit %d: index moved past 255 to %d", limit, e.Index())
		}
	}
}

func TestEnvelopeIndexIsNonDecreasing(t *testing.T) {
	var e Envelope
	e.Reset(3)
	prev := e.Index()
	for i := 0; i < 3*EnvelopeSteps+50; i++ {
		e.Tick()
		if e.Index() < prev {
			t.Fatalf("index went from %d to %d", prev, e.Index())
		}
		prev = e.Index()
	}
}

func TestEnvelopeResetRestartsFromZero(t *testing.T) {
	var e Envelope
	e.Hold()
	if !e.Saturated() {
		t.Fatalf("hold should park on the final entry")
	}
	e.Reset(0)
	if e.Index() != 0 {
		t.Fatalf("reset index = %d, want 0", e.Index())
	}
	e.Tick()
	if e.Index() != 1 {
		t.Fatalf("zero limit should step every tick, index = %d", e.Index())
	}
}

func TestLimitForSpansDuration(t *testing.T) {
	cases := []struct {
		durationUs uint32
		rate       int
		want       uint32
	}{
		{durationUs: 500000, rate: DefaultTickRate, want: 122}, // 31250 ticks / 255
		{durationUs: 1000000, rate: 48000, want: 188},
		{durationUs: 0, rate: DefaultTickRate, want: 1},
		{durationUs: 100, rate: DefaultTickRate, want: 1},
		{durationUs: 1000, rate: 0, want: 1},
	}
	for _, tc := range cases {
		if got := LimitFor(tc.durationUs, tc.rate); got != tc.want {
			t.Fatalf("LimitFor(%d, %d) = %d, want %d", tc.durationUs, tc.rate, got, tc.want)
		}
	}
}
