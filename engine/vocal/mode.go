// Package vocal builds the vocal-isolation section of the signal chain:
// stereo matrix stages implementing the karaoke (remove center) and
// musician (isolate center) modes.
package vocal

import (
	"errors"
	"fmt"
)

// Mode selects the vocal processing behavior.
type Mode int

const (
	// ModeNormal is identity passthrough.
	ModeNormal Mode = iota
	// ModeKaraoke removes center-panned (vocal) content.
	ModeKaraoke
	// ModeMusician isolates center-panned content in the vocal
	// formant range.
	ModeMusician
	// ModeAIKaraoke delegates to the external stem-separation service;
	// at the graph level it renders as passthrough.
	ModeAIKaraoke
	// ModeAIVocals delegates to the external stem-separation service;
	// at the graph level it renders as passthrough.
	ModeAIVocals
)

// ErrUnknownMode is returned when parsing an unrecognized mode name.
var ErrUnknownMode = errors.New("unknown vocal mode")

var modeNames = map[Mode]string{
	ModeNormal:    "normal",
	ModeKaraoke:   "karaoke",
	ModeMusician:  "musician",
	ModeAIKaraoke: "ai-karaoke",
	ModeAIVocals:  "ai-vocals",
}

var modesByName = func() map[string]Mode {
	m := make(map[string]Mode, len(modeNames))
	for mode, name := range modeNames {
		m[name] = mode
	}

	return m
}()

// String returns the canonical mode name.
func (m Mode) String() string {
	name, ok := modeNames[m]
	if !ok {
		return fmt.Sprintf("Mode(%d)", int(m))
	}

	return name
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode resolves a canonical mode name.
func ParseMode(name string) (Mode, error) {
	m, ok := modesByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}

	return m, nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	name, ok := modeNames[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}

	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}
