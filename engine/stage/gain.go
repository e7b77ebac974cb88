package stage

import (
	"sync"
	"time"
)

// Gain is a broadband gain stage with click-free parameter changes.
//
// A new target is approached with a linear ramp from the current
// effective value over the configured duration, instead of an
// instantaneous set that would produce an audible discontinuity.
// SetTarget may be called from the control thread while Process runs on
// the render path.
type Gain struct {
	mu sync.Mutex

	sampleRate float64
	duration   time.Duration

	current   float64
	target    float64
	step      float64
	remaining int
}

// NewGain creates a gain stage at the given initial linear gain.
func NewGain(ctx Context, initial float64, ramp time.Duration) *Gain {
	return &Gain{
		sampleRate: ctx.SampleRate,
		duration:   ramp,
		current:    initial,
		target:     initial,
	}
}

// SetTarget re-aims the ramp at a new linear gain, starting from the
// current effective value.
func (g *Gain) SetTarget(linear float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if linear == g.target {
		return
	}

	g.target = linear

	samples := int(g.duration.Seconds() * g.sampleRate)
	if samples < 1 {
		g.current = linear
		g.remaining = 0
		g.step = 0

		return
	}

	g.remaining = samples
	g.step = (linear - g.current) / float64(samples)
}

// SetDuration changes the ramp duration for subsequent SetTarget
// calls. A ramp already in flight keeps its pace.
func (g *Gain) SetDuration(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if d >= 0 {
		g.duration = d
	}
}

// Target returns the gain the ramp is heading toward.
func (g *Gain) Target() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.target
}

// Current returns the effective gain at this instant.
func (g *Gain) Current() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.current
}

// Process applies the (possibly ramping) gain to all channels in place.
func (g *Gain) Process(block [][]float64) {
	if len(block) == 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	frames := len(block[0])
	for i := 0; i < frames; i++ {
		if g.remaining > 0 {
			g.current += g.step
			g.remaining--

			if g.remaining == 0 {
				g.current = g.target
			}
		}

		for ch := range block {
			block[ch][i] *= g.current
		}
	}
}
