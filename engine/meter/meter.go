// Package meter samples the post-chain signal through the analysis tap
// and computes level and clipping statistics from its spectrum.
package meter

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/window"
	"github.com/cwbudde/algo-vecmath"

	"github.com/artur0sky/sonantica-sub003/engine/stage"
)

const (
	// ClipThresholdDB flags clipping when the peak exceeds this level.
	// Empirical constant carried over from the reference tuning.
	ClipThresholdDB = -0.1

	// FloorDB is substituted for levels that would otherwise be
	// non-finite; a snapshot never carries NaN or infinities.
	FloorDB = -130.0

	// DefaultFFTSize is the analysis frame length in samples.
	DefaultFFTSize = 2048

	minFFTSize = 64
)

// Snapshot is an ephemeral metrics poll result, recomputed on each
// call and never persisted.
type Snapshot struct {
	SampleRateHz float64   `json:"sampleRateHz"`
	ChannelCount int       `json:"channelCount"`
	RMSLevelDB   float64   `json:"rmsLevelDb"`
	PeakLevelDB  float64   `json:"peakLevelDb"`
	Clipping     bool      `json:"isClipping"`
	Spectrum     []float64 `json:"spectrum,omitempty"`
}

// Collector turns analysis-tap samples into level statistics. It owns
// the FFT plan, window, and scratch buffers so polling does not
// allocate beyond the returned snapshot. Not safe for concurrent use.
type Collector struct {
	fftSize   int
	win       []float64
	winSum    float64
	plan      *algofft.Plan[complex128]
	timeBuf   []float64
	in, out   []complex128
	re, im    []float64
	magnitude []float64
}

// NewCollector creates a collector with the given FFT size, which must
// be a power of two of at least 64.
func NewCollector(fftSize int) (*Collector, error) {
	if fftSize < minFFTSize || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("meter: fft size must be a power of two >= %d: %d", minFFTSize, fftSize)
	}

	win := window.Generate(window.TypeHann, fftSize, window.WithPeriodic())

	sum := 0.0
	for _, w := range win {
		sum += w
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("meter: init fft plan: %w", err)
	}

	bins := fftSize/2 + 1

	return &Collector{
		fftSize:   fftSize,
		win:       win,
		winSum:    sum,
		plan:      plan,
		timeBuf:   make([]float64, fftSize),
		in:        make([]complex128, fftSize),
		out:       make([]complex128, fftSize),
		re:        make([]float64, bins),
		im:        make([]float64, bins),
		magnitude: make([]float64, bins),
	}, nil
}

// FFTSize returns the analysis frame length.
func (c *Collector) FFTSize() int {
	return c.fftSize
}

// Collect reads the newest analysis frame from the tap and computes a
// snapshot. It returns nil until the tap has buffered one full frame.
func (c *Collector) Collect(tap *stage.Tap, sampleRate float64, channels int) *Snapshot {
	if tap == nil || tap.Snapshot(c.timeBuf) < c.fftSize {
		return nil
	}

	for i, v := range c.timeBuf {
		c.in[i] = complex(v*c.win[i], 0)
	}

	if err := c.plan.Forward(c.out, c.in); err != nil {
		return nil
	}

	bins := c.fftSize/2 + 1
	for i := 0; i < bins; i++ {
		c.re[i] = real(c.out[i])
		c.im[i] = imag(c.out[i])
	}

	vecmath.Magnitude(c.magnitude, c.re, c.im)

	// Compensate the window's coherent gain so a full-scale sine
	// reads close to 0 dBFS at its bin.
	scale := 2.0 / c.winSum

	sumSquares := 0.0
	finite := 0
	peak := 0.0

	spectrum := make([]float64, bins)

	for i, m := range c.magnitude {
		m *= scale

		if math.IsNaN(m) || math.IsInf(m, 0) {
			spectrum[i] = FloorDB
			continue
		}

		sumSquares += m * m
		finite++

		if m > peak {
			peak = m
		}

		spectrum[i] = levelDB(m)
	}

	rms := 0.0
	if finite > 0 {
		rms = math.Sqrt(sumSquares / float64(finite))
	}

	peakDB := levelDB(peak)

	return &Snapshot{
		SampleRateHz: sampleRate,
		ChannelCount: channels,
		RMSLevelDB:   levelDB(rms),
		PeakLevelDB:  peakDB,
		Clipping:     peakDB > ClipThresholdDB,
		Spectrum:     spectrum,
	}
}

// levelDB converts a linear magnitude to a finite dB level.
func levelDB(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return FloorDB
	}

	db := core.LinearToDB(v)
	if math.IsNaN(db) || db < FloorDB {
		return FloorDB
	}

	return db
}
