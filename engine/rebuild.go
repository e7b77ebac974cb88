package engine

import (
	"github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/artur0sky/sonantica-sub003/engine/eq"
	"github.com/artur0sky/sonantica-sub003/engine/stage"
	"github.com/artur0sky/sonantica-sub003/engine/vocal"
)

// MaxCrossfeedGain is the cross-channel mix at full crossfeed strength.
const MaxCrossfeedGain = 0.7

// crossfeedStage bleeds a fraction of each channel into the other,
// normalized so the mix never exceeds unity. Headphone listening only;
// it is skipped for mono sources.
type crossfeedStage struct {
	gain float64
}

func newCrossfeedStage(strength float64) *crossfeedStage {
	return &crossfeedStage{
		gain: core.Clamp(strength, 0, 1) * MaxCrossfeedGain,
	}
}

func (s *crossfeedStage) Process(block [][]float64) {
	if len(block) < 2 {
		return
	}

	left, right := block[0], block[1]
	norm := 1 / (1 + s.gain)
	for i := range left {
		l, r := left[i], right[i]
		left[i] = (l + s.gain*r) * norm
		right[i] = (r + s.gain*l) * norm
	}
}

// rebuildLocked recomputes the mutable part of the chain from the
// current configuration. On builder failure the chain falls back to
// bypass rather than tearing down playback.
func (e *Engine) rebuildLocked() {
	if e.state != stateInitialized {
		return
	}

	bands := e.presets.ActiveBands(e.cfg.CurrentPresetID, e.cfg.CustomBands)

	stages, err := e.buildStagesLocked(bands)
	if err != nil {
		e.log.WithError(err).Error("engine: chain rebuild failed, bypassing")
		e.chain = nil

		return
	}

	e.chain = stages
}

func (e *Engine) buildStagesLocked(bands []eq.Band) ([]stage.Stage, error) {
	if !e.cfg.Enabled {
		return nil, nil
	}

	enabled := 0
	for _, b := range bands {
		if b.Enabled {
			enabled++
		}
	}
	if enabled == 0 && e.cfg.VocalMode == vocal.ModeNormal && !e.cfg.CrossfeedEnabled {
		return nil, nil
	}

	var stages []stage.Stage

	vocalStages, err := vocal.Build(e.ctx, e.cfg.VocalMode)
	if err != nil {
		return nil, err
	}
	stages = append(stages, vocalStages...)
	stages = append(stages, eq.Build(e.ctx, bands)...)

	if e.cfg.CrossfeedEnabled && e.ctx.Channels >= 2 {
		stages = append(stages, newCrossfeedStage(e.cfg.CrossfeedStrength))
	}

	return stages, nil
}
