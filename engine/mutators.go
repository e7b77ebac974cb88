package engine

import (
	"github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/artur0sky/sonantica-sub003/engine/eq"
	"github.com/artur0sky/sonantica-sub003/engine/preset"
	"github.com/artur0sky/sonantica-sub003/engine/vocal"
)

// Preamp range in dB.
const (
	MinPreampDB = -20.0
	MaxPreampDB = 20.0
)

// BandPatch is a partial band update; nil fields are left unchanged.
type BandPatch struct {
	Shape       *eq.Shape
	FrequencyHz *float64
	GainDB      *float64
	Q           *float64
	Enabled     *bool
}

// ApplyPreset activates a preset by id, clearing any custom band
// override and adopting the preset's preamp. Unknown ids are ignored.
func (e *Engine) ApplyPreset(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.presets.Get(id)
	if !ok {
		e.log.WithField("preset", id).Warn("engine: apply preset: unknown id")
		return
	}

	e.cfg.CurrentPresetID = p.ID
	e.cfg.CustomBands = nil
	e.cfg.PreampDB = core.Clamp(p.PreampDB, MinPreampDB, MaxPreampDB)

	e.refreshLocked()
}

// ApplyCustomEQ replaces the active band set with a custom override.
// An invalid or empty band list is rejected wholesale; the previous
// state stays in effect, so a preset or override is always active.
func (e *Engine) ApplyCustomEQ(bands []eq.Band) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(bands) == 0 {
		e.log.Warn("engine: apply custom eq rejected: empty band list")
		return
	}

	if err := eq.ValidateBands(bands); err != nil {
		e.log.WithError(err).Warn("engine: apply custom eq rejected")
		return
	}

	e.cfg.CustomBands = eq.CloneBands(bands)
	e.cfg.CurrentPresetID = ""

	e.refreshLocked()
}

// UpdateBand edits a single band by id. Editing while a preset is
// active first promotes the preset's bands to a custom override, so
// the stored preset itself is never modified. Unknown band ids are
// ignored.
func (e *Engine) UpdateBand(id string, patch BandPatch) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bands := e.presets.ActiveBands(e.cfg.CurrentPresetID, e.cfg.CustomBands)

	idx := -1
	for i := range bands {
		if bands[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.log.WithField("band", id).Debug("engine: update band: unknown id")
		return
	}

	if e.cfg.CustomBands == nil {
		e.cfg.CustomBands = bands
		e.cfg.CurrentPresetID = ""
	}

	b := &e.cfg.CustomBands[idx]
	if patch.Shape != nil {
		b.Shape = *patch.Shape
	}
	if patch.FrequencyHz != nil {
		b.FrequencyHz = *patch.FrequencyHz
	}
	if patch.GainDB != nil {
		b.GainDB = *patch.GainDB
	}
	if patch.Q != nil {
		b.Q = *patch.Q
	}
	if patch.Enabled != nil {
		b.Enabled = *patch.Enabled
	}
	*b = b.Clamped()

	e.refreshLocked()
}

// SetPreamp sets the user preamp in dB, clamped to [-20, 20]. The
// change ramps in over the preamp smoothing duration; the chain is not
// rebuilt.
func (e *Engine) SetPreamp(db float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg.PreampDB = core.Clamp(db, MinPreampDB, MaxPreampDB)
	e.retargetPreampLocked()
}

// SetReplayGain sets the loudness-normalization mode and the gain it
// contributes to the preamp. The contribution only applies while the
// mode is not off.
func (e *Engine) SetReplayGain(mode ReplayGainMode, preampDB float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !mode.Valid() {
		e.log.WithField("mode", int(mode)).Warn("engine: set replay gain: unknown mode")
		return
	}

	e.cfg.ReplayGainMode = mode
	e.cfg.ReplayGainPreampDB = core.Clamp(preampDB, MinPreampDB, MaxPreampDB)
	e.retargetPreampLocked()
}

// SetVocalMode switches the vocal processing mode, rebuilding the
// chain. Unknown modes are ignored.
func (e *Engine) SetVocalMode(mode vocal.Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !mode.Valid() {
		e.log.WithField("mode", int(mode)).Warn("engine: set vocal mode: unknown mode")
		return
	}
	if mode == e.cfg.VocalMode {
		return
	}

	e.cfg.VocalMode = mode
	e.refreshLocked()
}

// SetEnabled toggles the whole processing chain; disabled means
// bypass. Preamp and master gain stay in the path either way.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if enabled == e.cfg.Enabled {
		return
	}

	e.cfg.Enabled = enabled
	e.refreshLocked()
}

// SetCrossfeed configures the headphone crossfeed stage. Strength is
// clamped to [0, 1].
func (e *Engine) SetCrossfeed(enabled bool, strength float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg.CrossfeedEnabled = enabled
	e.cfg.CrossfeedStrength = core.Clamp(strength, 0, 1)
	e.refreshLocked()
}

// SetMasterVolume sets the output level in [0, 1]. It survives Reset
// and re-initialization, ramping over the master smoothing duration.
func (e *Engine) SetMasterVolume(level float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.masterLevel = core.Clamp(level, 0, 1)
	if e.state == stateInitialized {
		e.master.SetTarget(e.masterLevel)
	}
}

// Reset restores the default configuration: flat preset, zero preamp,
// processing disabled. Master volume is left alone.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.cfg = DefaultConfig()
	e.refreshLocked()
}

// SavePreset stores the active band set and preamp as a new custom
// preset and makes it the current preset.
func (e *Engine) SavePreset(name, description string) (preset.Preset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bands := e.presets.ActiveBands(e.cfg.CurrentPresetID, e.cfg.CustomBands)

	p, err := e.presets.Save(name, description, bands, e.cfg.PreampDB)
	if err != nil {
		return preset.Preset{}, err
	}

	e.cfg.CurrentPresetID = p.ID
	e.cfg.CustomBands = nil

	return p, nil
}

// DeletePreset removes a custom preset. Deleting the active preset
// resets the engine to defaults.
func (e *Engine) DeletePreset(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.presets.Delete(id); err != nil {
		return err
	}

	if id == e.cfg.CurrentPresetID {
		e.resetLocked()
	}

	return nil
}

// refreshLocked re-derives everything runtime from the configuration.
// It is a no-op while uninitialized; the config alone carries the
// state until the next Initialize.
func (e *Engine) refreshLocked() {
	e.rebuildLocked()
	e.retargetPreampLocked()
}

func (e *Engine) retargetPreampLocked() {
	if e.state != stateInitialized {
		return
	}

	e.preamp.SetTarget(core.DBToLinear(e.effectivePreampDB()))
}
