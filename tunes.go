package midisynth

import intsmf "github.com/cbegin/midisynth-go/internal/smf"

const tuneTicksPerQuarter = 96

// DefaultTune returns a short single-track SMF phrase used when no file is
// given.
func DefaultTune() []byte {
	const q = tuneTicksPerQuarter
	phrase := []struct {
		note uint8
		dur  uint32
	}{
		{64, q}, {64, q}, {65, q}, {67, q},
		{67, q}, {65, q}, {64, q}, {62, q},
		{60, q}, {60, q}, {62, q}, {64, q},
		{64, q + q/2}, {62, q / 2}, {62, 2 * q},
	}
	b := intsmf.NewBuilder(tuneTicksPerQuarter).StartTrack().
		Tempo(0, 600000).
		Program(0, 0, 0)
	for _, n := range phrase {
		b.Note(0, n.note, n.dur)
	}
	return b.EndTrack(0).Bytes()
}
