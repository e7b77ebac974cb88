// Package persist round-trips engine configuration and custom presets
// through a JSON settings document on disk.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/artur0sky/sonantica-sub003/engine"
	"github.com/artur0sky/sonantica-sub003/engine/preset"
)

// ErrInvalidDocument is returned when the settings file is not a valid
// document.
var ErrInvalidDocument = errors.New("invalid settings document")

// Document is the on-disk settings format. Custom presets are stored
// alongside the configuration so a config referencing one of them is
// always resolvable after restore.
type Document struct {
	Config        engine.Config   `json:"config"`
	CustomPresets []preset.Preset `json:"customPresets,omitempty"`
}

// Snapshot captures the engine's current configuration and custom
// presets for saving.
func Snapshot(e *engine.Engine) Document {
	doc := Document{Config: e.Config()}

	for _, p := range e.Presets() {
		if !p.BuiltIn {
			doc.CustomPresets = append(doc.CustomPresets, p)
		}
	}

	return doc
}

// Apply restores a document into the engine. Custom presets are
// restored before the configuration so a config that references one of
// them resolves; a config referencing an id that no longer exists
// falls back to defaults (the engine logs the miss). Out-of-range
// values are clamped by the engine's own mutators.
func Apply(e *engine.Engine, doc Document) {
	e.PresetManager().Restore(doc.CustomPresets)

	cfg := doc.Config

	switch {
	case cfg.CustomBands != nil:
		e.ApplyCustomEQ(cfg.CustomBands)
	case cfg.CurrentPresetID != "":
		e.ApplyPreset(cfg.CurrentPresetID)
	}

	e.SetPreamp(cfg.PreampDB)
	e.SetVocalMode(cfg.VocalMode)
	e.SetReplayGain(cfg.ReplayGainMode, cfg.ReplayGainPreampDB)
	e.SetCrossfeed(cfg.CrossfeedEnabled, cfg.CrossfeedStrength)
	e.SetEnabled(cfg.Enabled)
}

// Load reads a settings document from path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("persist: load %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("persist: load %s: %w: %v", path, ErrInvalidDocument, err)
	}

	return doc, nil
}

// Save writes a settings document to path atomically, creating parent
// directories as needed.
func Save(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: save %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: save %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("persist: save %s: %w", path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("persist: save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist: save %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist: save %s: %w", path, err)
	}

	logrus.WithField("path", path).Debug("persist: settings saved")

	return nil
}
