package wavetable

import "testing"

func TestCombineSilenceIsMidpoint(t *testing.T) {
	for w := 0; w < 256; w++ {
		if got := Combine(uint8(w), 0, CenterMidpoint); got != Midpoint {
			t.Fatalf("wave %d env 0: got %d, want %d", w, got, Midpoint)
		}
	}
}

func TestCombineMidpointIsSymmetric(t *testing.T) {
	cases := []struct {
		wave, env, want uint8
	}{
		{128, 255, 128},
		{255, 255, 254}, // 127*255>>8 = 126
		{0, 255, 0},     // -128*255>>8 = -128
		{192, 128, 160}, // 64*128>>8 = 32
		{64, 128, 96},   // -64*128>>8 = -32
	}
	for _, tc := range cases {
		if got := Combine(tc.wave, tc.env, CenterMidpoint); got != tc.want {
			t.Fatalf("Combine(%d, %d) = %d, want %d", tc.wave, tc.env, got, tc.want)
		}
	}
}

func TestCombineNoneScalesRawSample(t *testing.T) {
	if got := Combine(200, 0, CenterNone); got != 0 {
		t.Fatalf("silence = %d, want 0", got)
	}
	if got := Combine(200, 128, CenterNone); got != 100 {
		t.Fatalf("got %d, want 100", got)
	}
	if got := Combine(255, 255, CenterNone); got != 254 {
		t.Fatalf("got %d, want 254", got)
	}
}

func TestParseCenterMode(t *testing.T) {
	for _, m := range []CenterMode{CenterMidpoint, CenterNone} {
		got, err := ParseCenterMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseCenterMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseCenterMode("sideways"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
