package effects

// Echo is a feedback delay line.
type Echo struct {
	buf      []float32
	pos      int
	feedback float32
	wet      float32
}

// NewEcho creates an echo effect.
// delayMs: delay time in milliseconds
// feedback: feedback amount 0..0.95
// wet: wet/dry mix 0..1
func NewEcho(sampleRate int, delayMs float64, feedback, wet float32) *Echo {
	samples := int(delayMs * float64(sampleRate) / 1000.0)
	if samples < 1 {
		samples = 1
	}
	return &Echo{
		buf:      make([]float32, samples),
		feedback: clamp(feedback, 0, 0.95),
		wet:      clamp(wet, 0, 1),
	}
}

func (d *Echo) Process(x float32) float32 {
	del := d.buf[d.pos]
	d.buf[d.pos] = x + del*d.feedback
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
	return x*(1-d.wet) + del*d.wet
}

func (d *Echo) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
