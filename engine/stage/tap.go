package stage

import "sync"

// Tap is a pass-through analysis point. It mixes each processed block
// down to mono and keeps the most recent samples in a ring buffer for
// the metrics collector to read. The audio itself is left untouched.
type Tap struct {
	mu     sync.Mutex
	ring   []float64
	write  int
	filled int
}

// NewTap creates a tap holding the given number of mono samples.
func NewTap(size int) *Tap {
	if size < 1 {
		size = 1
	}

	return &Tap{ring: make([]float64, size)}
}

// Size returns the ring capacity in samples.
func (t *Tap) Size() int {
	return len(t.ring)
}

// Process mixes the block to mono and appends it to the ring.
func (t *Tap) Process(block [][]float64) {
	if len(block) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	frames := len(block[0])
	scale := 1.0 / float64(len(block))

	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := range block {
			sum += block[ch][i]
		}

		t.ring[t.write] = sum * scale
		t.write = (t.write + 1) % len(t.ring)

		if t.filled < len(t.ring) {
			t.filled++
		}
	}
}

// Snapshot copies the newest samples into dst in time order (oldest
// first) and returns the number copied. It returns 0 until the ring has
// filled at least len(dst) samples.
func (t *Tap) Snapshot(dst []float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(dst)
	if n > len(t.ring) || t.filled < n {
		return 0
	}

	start := (t.write - n + len(t.ring)) % len(t.ring)
	for i := 0; i < n; i++ {
		dst[i] = t.ring[(start+i)%len(t.ring)]
	}

	return n
}

// Reset discards all buffered samples.
func (t *Tap) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.write = 0
	t.filled = 0
}
