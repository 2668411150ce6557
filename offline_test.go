package midisynth

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	intsmf "github.com/cbegin/midisynth-go/internal/smf"
	intwt "github.com/cbegin/midisynth-go/internal/wavetable"
)

func singleNote(note uint8, ticks uint32) []byte {
	return intsmf.NewBuilder(96).StartTrack().Note(0, note, ticks).EndTrack(0).Bytes()
}

func TestRenderLevelsIsDeterministic(t *testing.T) {
	a, err := RenderLevels(DefaultTune())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	b, err := RenderLevels(DefaultTune())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(a) == 0 || !bytes.Equal(a, b) {
		t.Fatalf("renders differ or are empty (%d vs %d levels)", len(a), len(b))
	}
}

func TestRenderLevelsLength(t *testing.T) {
	const tickRate = 48000
	levels, err := RenderLevels(singleNote(60, 96), WithTickRate(tickRate))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	durUs := uint32(intsmf.DefaultTempo/96) * 96
	want := int(intwt.LimitFor(durUs, tickRate)) * intwt.EnvelopeSteps
	if len(levels) != want {
		t.Fatalf("rendered %d levels, want %d", len(levels), want)
	}
}

func TestRenderLevelsFlatEnvelopeCenterModes(t *testing.T) {
	wave, _ := Wave("square")
	flat, _ := Envelope("flat")
	tables := intwt.NewTables(wave, flat)

	mid, err := RenderLevels(singleNote(60, 24), WithTables(tables), WithCenterMode(CenterMidpoint))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	none, err := RenderLevels(singleNote(60, 24), WithTables(tables), WithCenterMode(CenterNone))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(mid) != len(none) {
		t.Fatalf("center mode changed render length: %d vs %d", len(mid), len(none))
	}
	// flat holds the envelope at full scale, so the modes only differ on
	// the low half of the square.
	var differs bool
	for i := range mid {
		if mid[i] != none[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Fatalf("expected center modes to produce different output")
	}
}

func TestRenderLevelsTransposeChangesPitch(t *testing.T) {
	base, err := RenderLevels(singleNote(60, 96))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	up, err := RenderLevels(singleNote(60, 96), WithTranspose(18))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if crossings(up) <= crossings(base) {
		t.Fatalf("an octave up should cross the midpoint more often: %d vs %d", crossings(up), crossings(base))
	}
}

func crossings(levels []uint8) int {
	n := 0
	for i := 1; i < len(levels); i++ {
		if (levels[i-1] < intwt.Midpoint) != (levels[i] < intwt.Midpoint) {
			n++
		}
	}
	return n
}

func TestRenderLevelsRejectsCorruptStream(t *testing.T) {
	data := singleNote(60, 96)
	if _, err := RenderLevels(data[:10]); err == nil {
		t.Fatalf("expected error for truncated stream")
	}
}

func TestRenderWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tune.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	frames, err := RenderWAV(DefaultTune(), f, WithTickRate(32000), WithOutputFilter("dcblock"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	f.Close()

	levels, err := RenderLevels(DefaultTune(), WithTickRate(32000))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if frames != len(levels) {
		t.Fatalf("wav frames = %d, want %d", frames, len(levels))
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer in.Close()
	dec := wav.NewDecoder(in)
	if !dec.IsValidFile() {
		t.Fatalf("invalid wav file")
	}
	if dec.SampleRate != 32000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Fatalf("unexpected format: %d Hz, %d ch, %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
}

func TestRenderFiles(t *testing.T) {
	dir := t.TempDir()
	var jobs []RenderJob
	for _, name := range []string{"a", "b", "c"} {
		in := filepath.Join(dir, name+".mid")
		if err := os.WriteFile(in, singleNote(60, 24), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		jobs = append(jobs, RenderJob{Input: in, Output: filepath.Join(dir, name+".wav")})
	}
	if err := RenderFiles(context.Background(), jobs, 2); err != nil {
		t.Fatalf("render files: %v", err)
	}
	for _, job := range jobs {
		st, err := os.Stat(job.Output)
		if err != nil {
			t.Fatalf("stat %s: %v", job.Output, err)
		}
		if st.Size() <= 44 {
			t.Fatalf("%s has no audio data (%d bytes)", job.Output, st.Size())
		}
	}

	jobs = append(jobs, RenderJob{Input: filepath.Join(dir, "missing.mid"), Output: filepath.Join(dir, "missing.wav")})
	if err := RenderFiles(context.Background(), jobs, 0); err == nil {
		t.Fatalf("expected error for missing input")
	}
}
