package wavetable

import (
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
)

const twoPi = math.Pi * 2

// TableSize is the length of every wave and envelope table.
const TableSize = 256

// WaveTable holds one cycle of a periodic waveform as unsigned samples
// centred on 128.
type WaveTable [TableSize]byte

// EnvelopeTable holds an amplitude curve walked once over a note's life.
type EnvelopeTable [TableSize]byte

// Tables is the wave/envelope pair an Engine reads from. A Tables value is
// never mutated once handed to an Engine.
type Tables struct {
	Wave     WaveTable
	Envelope EnvelopeTable
}

// NewTables copies the given tables into a fresh pair.
func NewTables(wave WaveTable, env EnvelopeTable) *Tables {
	return &Tables{Wave: wave, Envelope: env}
}

var waveBuilders = map[string]func(i int) float64{
	"sine": func(i int) float64 {
		return math.Sin(twoPi * float64(i) / TableSize)
	},
	"triangle": func(i int) float64 {
		p := float64(i) / TableSize
		if p < 0.25 {
			return 4 * p
		}
		if p < 0.75 {
			return 2 - 4*p
		}
		return 4*p - 4
	},
	"square": func(i int) float64 {
		if i < TableSize/2 {
			return 1
		}
		return -1
	},
	"saw": func(i int) float64 {
		return 2*float64(i)/TableSize - 1
	},
}

var envelopeBuilders = map[string]func(i int) float64{
	// fast attack over the first 8 entries, then an exponential decay
	"piano": func(i int) float64 {
		if i < 8 {
			return float64(i+1) / 8
		}
		return math.Exp(-float64(i-8) / 60)
	},
	"organ": func(i int) float64 {
		if i < 16 {
			return float64(i+1) / 16
		}
		if i >= TableSize-16 {
			return float64(TableSize-1-i) / 16
		}
		return 1
	},
	"pluck": func(i int) float64 {
		return 1 - float64(i)/(TableSize-1)
	},
	"flat": func(i int) float64 {
		return 1
	},
}

// Wave builds a named built-in waveform.
func Wave(name string) (WaveTable, error) {
	var t WaveTable
	fn, ok := waveBuilders[strings.ToLower(name)]
	if !ok {
		return t, fmt.Errorf("unknown wave %q (expected %s)", name, strings.Join(WaveNames(), "|"))
	}
	for i := range t {
		v := math.Round(fn(i)*127) + Midpoint
		t[i] = byte(clamp(v, 0, 255))
	}
	return t, nil
}

// EnvelopeShape builds a named built-in envelope.
func EnvelopeShape(name string) (EnvelopeTable, error) {
	var t EnvelopeTable
	fn, ok := envelopeBuilders[strings.ToLower(name)]
	if !ok {
		return t, fmt.Errorf("unknown envelope %q (expected %s)", name, strings.Join(EnvelopeNames(), "|"))
	}
	for i := range t {
		t[i] = byte(clamp(math.Round(fn(i)*255), 0, 255))
	}
	return t, nil
}

// WaveNames lists the built-in waveforms.
func WaveNames() []string { return sortedKeys(waveBuilders) }

// EnvelopeNames lists the built-in envelopes.
func EnvelopeNames() []string { return sortedKeys(envelopeBuilders) }

// DefaultTables returns the sine wave with the piano envelope.
func DefaultTables() *Tables {
	w, _ := Wave("sine")
	e, _ := EnvelopeShape("piano")
	return NewTables(w, e)
}

// ParseTable decodes 512 hex digits into a 256-byte table.
func ParseTable(h string) ([TableSize]byte, error) {
	var t [TableSize]byte
	data, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil {
		return t, err
	}
	if len(data) != TableSize {
		return t, fmt.Errorf("table has %d bytes, want %d", len(data), TableSize)
	}
	copy(t[:], data)
	return t, nil
}

func sortedKeys(m map[string]func(int) float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
