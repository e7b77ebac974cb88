package engine

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBlockSize is the number of frames rendered per call.
	DefaultBlockSize = 1024

	// DefaultPreampRamp is how long a preamp change takes to settle.
	DefaultPreampRamp = 50 * time.Millisecond

	// DefaultMasterRamp is how long a master volume change takes to
	// settle.
	DefaultMasterRamp = 100 * time.Millisecond
)

// Option customizes an Engine at construction time.
type Option func(*Engine)

// WithBlockSize caps the number of frames processed per Render call.
func WithBlockSize(frames int) Option {
	return func(e *Engine) {
		if frames > 0 {
			e.blockSize = frames
		}
	}
}

// WithFFTSize sets the analysis FFT length. It must be a power of two.
func WithFFTSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.fftSize = size
		}
	}
}

// WithLogger routes control-path diagnostics to log.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithPreampRamp overrides the preamp smoothing duration.
func WithPreampRamp(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.preampRamp = d
		}
	}
}

// WithMasterRamp overrides the master volume smoothing duration.
func WithMasterRamp(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.masterRamp = d
		}
	}
}
