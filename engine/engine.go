// Package engine orchestrates the real-time signal chain: it turns a
// declarative Config into a live graph of processing stages and renders
// audio from a source through it block by block.
//
// The chain topology is fixed:
//
//	source → [vocal] → [eq bands] → [crossfeed] → preamp → tap → master
//
// The bracketed stages are rebuilt whenever the configuration changes
// topology; preamp and master survive rebuilds so their gain ramps are
// never interrupted. A rebuild takes effect at the next block boundary,
// and the render path never blocks on a control mutation beyond a
// short critical section.
package engine

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/sirupsen/logrus"

	"github.com/artur0sky/sonantica-sub003/engine/meter"
	"github.com/artur0sky/sonantica-sub003/engine/preset"
	"github.com/artur0sky/sonantica-sub003/engine/stage"
	"github.com/artur0sky/sonantica-sub003/source"
)

const (
	stateUninitialized = iota
	stateInitialized
)

// Engine owns the signal chain for one playing track. All methods are
// safe for concurrent use; Render is intended to be called from a
// single audio goroutine.
type Engine struct {
	log        *logrus.Logger
	presets    *preset.Manager
	blockSize  int
	fftSize    int
	preampRamp time.Duration
	masterRamp time.Duration

	mu          sync.RWMutex
	state       int
	cfg         Config
	masterLevel float64

	ctx       stage.Context
	src       source.Source
	readBuf   []float32
	chain     []stage.Stage
	preamp    *stage.Gain
	master    *stage.Gain
	tap       *stage.Tap
	collector *meter.Collector
}

// New constructs an idle engine with default configuration. It holds
// no audio resources until Initialize.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:         logrus.StandardLogger(),
		blockSize:   DefaultBlockSize,
		fftSize:     meter.DefaultFFTSize,
		preampRamp:  DefaultPreampRamp,
		masterRamp:  DefaultMasterRamp,
		cfg:         DefaultConfig(),
		masterLevel: 1,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.presets = preset.NewManager(e.log)

	return e
}

// Initialize binds the engine to a source and builds the chain for the
// current configuration. Calling it again tears down the previous
// graph first; the configuration is retained across re-initialization.
// On any error the engine is left uninitialized. The engine does not
// take ownership of src.
func (e *Engine) Initialize(src source.Source) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.teardownLocked()

	if src == nil {
		return fmt.Errorf("engine: initialize: %w", ErrNilSource)
	}

	sampleRate := src.SampleRate()
	channels := src.Channels()
	if sampleRate <= 0 || channels < 1 {
		return fmt.Errorf("engine: initialize: %w: %d Hz, %d channels",
			ErrInvalidSource, sampleRate, channels)
	}

	collector, err := meter.NewCollector(e.fftSize)
	if err != nil {
		return fmt.Errorf("engine: initialize: %w", err)
	}

	e.ctx = stage.Context{
		SampleRate: float64(sampleRate),
		Channels:   channels,
		BlockSize:  e.blockSize,
	}
	e.src = src
	e.readBuf = make([]float32, e.blockSize*channels)
	e.preamp = stage.NewGain(e.ctx, core.DBToLinear(e.effectivePreampDB()), e.preampRamp)
	e.master = stage.NewGain(e.ctx, e.masterLevel, e.masterRamp)
	e.tap = stage.NewTap(e.fftSize)
	e.collector = collector
	e.state = stateInitialized

	e.rebuildLocked()

	e.log.WithFields(logrus.Fields{
		"sampleRate": sampleRate,
		"channels":   channels,
		"blockSize":  e.blockSize,
	}).Debug("engine: initialized")

	return nil
}

// Dispose releases the processing graph and returns the engine to the
// uninitialized state. It is safe to call repeatedly; the
// configuration is retained for the next Initialize.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == stateUninitialized {
		return
	}

	e.teardownLocked()
	e.log.Debug("engine: disposed")
}

func (e *Engine) teardownLocked() {
	e.state = stateUninitialized
	e.src = nil
	e.readBuf = nil
	e.chain = nil
	e.preamp = nil
	e.master = nil
	e.tap = nil
	e.collector = nil
}

// Render pulls up to len(dst[0]) frames from the source, runs them
// through the chain, and writes planar output into dst. It returns the
// number of frames produced; io.EOF signals the source is drained.
func (e *Engine) Render(dst [][]float64) (int, error) {
	e.mu.RLock()
	if e.state != stateInitialized {
		e.mu.RUnlock()
		return 0, ErrNotInitialized
	}

	src := e.src
	chain := e.chain
	preamp := e.preamp
	tap := e.tap
	master := e.master
	readBuf := e.readBuf
	channels := e.ctx.Channels
	e.mu.RUnlock()

	if len(dst) < channels {
		return 0, fmt.Errorf("engine: render: need %d channel buffers, got %d", channels, len(dst))
	}

	frames := e.blockSize
	for ch := 0; ch < channels; ch++ {
		if len(dst[ch]) < frames {
			frames = len(dst[ch])
		}
	}
	if frames == 0 {
		return 0, nil
	}

	n, err := src.ReadSamples(readBuf[:frames*channels])
	frames = n / channels
	if frames == 0 {
		if err == nil {
			err = io.EOF
		}

		return 0, err
	}

	block := make([][]float64, channels)
	for ch := 0; ch < channels; ch++ {
		out := dst[ch][:frames]
		for i := 0; i < frames; i++ {
			out[i] = float64(readBuf[i*channels+ch])
		}
		block[ch] = out
	}

	for _, s := range chain {
		s.Process(block)
	}
	preamp.Process(block)
	tap.Process(block)
	master.Process(block)

	if err == io.EOF {
		err = nil
	}

	return frames, err
}

// Metrics captures the current level and spectrum snapshot. It returns
// nil before the engine has rendered a full analysis frame, and nil
// when uninitialized. The write lock serializes access to the
// collector's scratch buffers.
func (e *Engine) Metrics() *meter.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateInitialized {
		return nil
	}

	return e.collector.Collect(e.tap, e.ctx.SampleRate, e.ctx.Channels)
}

// Config returns a deep copy of the current configuration.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.cfg.Clone()
}

// Presets lists every available preset, built-ins first.
func (e *Engine) Presets() []preset.Preset {
	return e.presets.List()
}

// PresetManager exposes the preset catalog for persistence layers.
func (e *Engine) PresetManager() *preset.Manager {
	return e.presets
}

func (e *Engine) effectivePreampDB() float64 {
	db := e.cfg.PreampDB
	if e.cfg.ReplayGainMode != ReplayGainOff {
		db += e.cfg.ReplayGainPreampDB
	}

	return db
}
