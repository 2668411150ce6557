package effects

import "math"

// LowPass is a one-pole RC filter, the same network that smooths a PWM pin
// into an analogue signal.
type LowPass struct {
	alpha float32
	y     float32
}

// NewLowPass creates a low-pass filter. A cutoff at or above Nyquist passes
// the signal through unchanged.
func NewLowPass(sampleRate int, cutoff float32) *LowPass {
	lp := &LowPass{alpha: 1}
	if cutoff > 0 && cutoff < float32(sampleRate)/2 {
		rc := 1.0 / (2.0 * math.Pi * float64(cutoff))
		dt := 1.0 / float64(sampleRate)
		lp.alpha = float32(dt / (rc + dt))
	}
	return lp
}

func (lp *LowPass) Process(x float32) float32 {
	lp.y += lp.alpha * (x - lp.y)
	return lp.y
}

func (lp *LowPass) Reset() {
	lp.y = 0
}

// DCBlocker removes the constant offset left by one-sided output centering.
type DCBlocker struct {
	r     float32
	prevX float32
	prevY float32
}

// NewDCBlocker creates a DC blocker with pole r (typically 0.99-0.999).
func NewDCBlocker(r float32) *DCBlocker {
	if r <= 0 || r >= 1 {
		r = 0.995
	}
	return &DCBlocker{r: r}
}

func (d *DCBlocker) Process(x float32) float32 {
	y := x - d.prevX + d.r*d.prevY
	d.prevX = x
	d.prevY = y
	return y
}

func (d *DCBlocker) Reset() {
	d.prevX = 0
	d.prevY = 0
}
