package engine

import (
	"errors"
	"fmt"

	"github.com/artur0sky/sonantica-sub003/engine/eq"
	"github.com/artur0sky/sonantica-sub003/engine/preset"
	"github.com/artur0sky/sonantica-sub003/engine/vocal"
)

// ReplayGainMode selects how track loudness metadata contributes to
// the effective preamp.
type ReplayGainMode int

const (
	ReplayGainOff ReplayGainMode = iota
	ReplayGainTrack
	ReplayGainAlbum
)

// ErrUnknownReplayGainMode is returned when parsing an unrecognized
// replay-gain mode name.
var ErrUnknownReplayGainMode = errors.New("unknown replay gain mode")

var replayGainNames = map[ReplayGainMode]string{
	ReplayGainOff:   "off",
	ReplayGainTrack: "track",
	ReplayGainAlbum: "album",
}

var replayGainByName = func() map[string]ReplayGainMode {
	m := make(map[string]ReplayGainMode, len(replayGainNames))
	for mode, name := range replayGainNames {
		m[name] = mode
	}

	return m
}()

// String returns the canonical mode name.
func (m ReplayGainMode) String() string {
	name, ok := replayGainNames[m]
	if !ok {
		return fmt.Sprintf("ReplayGainMode(%d)", int(m))
	}

	return name
}

// Valid reports whether m is a known mode.
func (m ReplayGainMode) Valid() bool {
	_, ok := replayGainNames[m]
	return ok
}

// ParseReplayGainMode resolves a canonical mode name.
func ParseReplayGainMode(name string) (ReplayGainMode, error) {
	m, ok := replayGainByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownReplayGainMode, name)
	}

	return m, nil
}

// MarshalText implements encoding.TextMarshaler.
func (m ReplayGainMode) MarshalText() ([]byte, error) {
	name, ok := replayGainNames[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownReplayGainMode, int(m))
	}

	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ReplayGainMode) UnmarshalText(text []byte) error {
	parsed, err := ParseReplayGainMode(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// Config is the single source of truth the engine renders into a live
// graph. It is a value object owned by the UI/control layer; the engine
// mirrors it and only ever mutates it to promote a preset to custom
// bands on edit.
//
// Exactly one of CurrentPresetID and CustomBands is active at a time.
type Config struct {
	Enabled            bool           `json:"enabled"`
	CurrentPresetID    string         `json:"currentPresetId,omitempty"`
	CustomBands        []eq.Band      `json:"customBands,omitempty"`
	PreampDB           float64        `json:"preampDb"`
	VocalMode          vocal.Mode     `json:"vocalMode"`
	ReplayGainMode     ReplayGainMode `json:"replayGainMode"`
	ReplayGainPreampDB float64        `json:"replayGainPreampDb"`
	CrossfeedEnabled   bool           `json:"crossfeedEnabled"`
	CrossfeedStrength  float64        `json:"crossfeedStrength"`
}

// DefaultConfig is the state after Reset: flat preset, zero preamp,
// processing disabled.
func DefaultConfig() Config {
	return Config{
		Enabled:           false,
		CurrentPresetID:   preset.FlatPresetID,
		PreampDB:          0,
		VocalMode:         vocal.ModeNormal,
		ReplayGainMode:    ReplayGainOff,
		CrossfeedStrength: 0.3,
	}
}

// Clone returns a deep copy, detaching the band slice.
func (c Config) Clone() Config {
	c.CustomBands = eq.CloneBands(c.CustomBands)
	return c
}
