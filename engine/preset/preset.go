// Package preset owns the equalizer preset catalog: the immutable
// built-in presets and the user-defined custom presets, plus the
// resolution of the currently active band set.
package preset

import (
	"errors"
	"fmt"

	"github.com/artur0sky/sonantica-sub003/engine/eq"
)

var (
	// ErrUnknownPreset is returned when an id does not resolve.
	ErrUnknownPreset = errors.New("unknown preset")
	// ErrBuiltInPreset is returned when trying to delete a built-in.
	ErrBuiltInPreset = errors.New("built-in presets cannot be deleted")
)

// Preset is a named, ordered band set with its preamp level.
type Preset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Bands       []eq.Band `json:"bands"`
	PreampDB    float64   `json:"preampDb"`
	BuiltIn     bool      `json:"isBuiltIn"`
}

// Validate checks the preset's identity and band set.
func (p Preset) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownPreset)
	}

	if err := eq.ValidateBands(p.Bands); err != nil {
		return fmt.Errorf("preset %q: %w", p.ID, err)
	}

	return nil
}

// clone returns a deep copy so catalog data is never aliased by callers.
func (p Preset) clone() Preset {
	p.Bands = eq.CloneBands(p.Bands)
	return p
}
