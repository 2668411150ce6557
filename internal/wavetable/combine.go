package wavetable

import "fmt"

// CenterMode selects how the combined sample is placed in the 0-255 output
// range.
type CenterMode int

const (
	// CenterMidpoint modulates the wave around 128 so silence sits at the
	// DC midpoint.
	CenterMidpoint CenterMode = iota
	// CenterNone scales the raw unsigned wave, as a PWM pair driven
	// directly from the table does. Silence is 0.
	CenterNone
)

// Midpoint is the output level for silence in CenterMidpoint mode.
const Midpoint = 128

func (m CenterMode) String() string {
	switch m {
	case CenterMidpoint:
		return "midpoint"
	case CenterNone:
		return "none"
	default:
		return fmt.Sprintf("CenterMode(%d)", int(m))
	}
}

// ParseCenterMode maps a name to a CenterMode.
func ParseCenterMode(name string) (CenterMode, error) {
	switch name {
	case "midpoint", "":
		return CenterMidpoint, nil
	case "none":
		return CenterNone, nil
	default:
		return 0, fmt.Errorf("unknown center mode %q (expected midpoint|none)", name)
	}
}

// Combine multiplies a wave sample by an envelope sample and rescales the
// product back into the 8-bit output range.
func Combine(wave, env uint8, mode CenterMode) uint8 {
	if mode == CenterNone {
		return uint8((int(wave) * int(env)) >> 8)
	}
	v := ((int(wave) - Midpoint) * int(env)) >> 8
	return uint8(v + Midpoint)
}
