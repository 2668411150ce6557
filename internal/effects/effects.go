package effects

import (
	"fmt"
	"strconv"
	"strings"
)

// Effector processes a mono output stream one sample at a time.
type Effector interface {
	Process(x float32) float32
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(x float32) float32 {
	for _, e := range c.effects {
		x = e.Process(x)
	}
	return x
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

func (c *Chain) Len() int {
	return len(c.effects)
}

// ParseChain builds a chain from a description such as
// "dcblock;lowpass 6000;echo 250,0.4,0.3". Each entry is a type name
// optionally followed by comma-separated parameters. An empty description
// yields nil.
func ParseChain(desc string, sampleRate int) (*Chain, error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return nil, nil
	}
	chain := NewChain()
	for _, raw := range strings.Split(desc, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.SplitN(raw, " ", 2)
		effectType := strings.ToLower(strings.TrimSpace(parts[0]))
		var params []float64
		if len(parts) > 1 {
			for _, p := range strings.Split(parts[1], ",") {
				v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
				if err != nil {
					return nil, fmt.Errorf("effect %q: %w", effectType, err)
				}
				params = append(params, v)
			}
		}
		eff := createEffect(effectType, params, sampleRate)
		if eff == nil {
			return nil, fmt.Errorf("unknown effect %q (expected lowpass|dcblock|eq|echo|comp)", effectType)
		}
		chain.Add(eff)
	}
	return chain, nil
}

func createEffect(effectType string, params []float64, sampleRate int) Effector {
	getParam := func(idx int, def float64) float64 {
		if idx < len(params) {
			return params[idx]
		}
		return def
	}
	switch effectType {
	case "lowpass", "lpf":
		return NewLowPass(sampleRate, float32(getParam(0, 8000)))
	case "dcblock", "dc":
		return NewDCBlocker(float32(getParam(0, 0.995)))
	case "eq":
		return NewEQ3Band(sampleRate,
			float32(getParam(0, 1.0)),  // low gain
			float32(getParam(1, 1.0)),  // mid gain
			float32(getParam(2, 1.0)),  // high gain
			float32(getParam(3, 300)),  // low freq
			float32(getParam(4, 3000)), // high freq
		)
	case "echo", "delay":
		return NewEcho(sampleRate,
			getParam(0, 250),          // ms
			float32(getParam(1, 0.4)), // feedback
			float32(getParam(2, 0.3)), // wet
		)
	case "comp", "compressor":
		return NewCompressor(sampleRate,
			float32(getParam(0, -18)), // threshold dB
			float32(getParam(1, 4)),   // ratio
			float32(getParam(2, 5)),   // attack ms
			float32(getParam(3, 80)),  // release ms
			float32(getParam(4, 0)),   // makeup dB
		)
	}
	return nil
}
