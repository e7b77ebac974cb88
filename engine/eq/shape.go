// Package eq builds the parametric-equalizer section of the signal
// chain: an ordered list of filter bands rendered as cascaded biquad
// stages.
package eq

import (
	"errors"
	"fmt"
)

// Shape identifies the transfer-function family of a band.
type Shape int

const (
	ShapeLowShelf Shape = iota
	ShapeHighShelf
	ShapePeaking
	ShapeLowPass
	ShapeHighPass
	ShapeNotch
	ShapeAllPass
)

// ErrUnknownShape is returned when parsing an unrecognized shape name.
var ErrUnknownShape = errors.New("unknown band shape")

var shapeNames = map[Shape]string{
	ShapeLowShelf:  "low-shelf",
	ShapeHighShelf: "high-shelf",
	ShapePeaking:   "peaking",
	ShapeLowPass:   "low-pass",
	ShapeHighPass:  "high-pass",
	ShapeNotch:     "notch",
	ShapeAllPass:   "all-pass",
}

var shapesByName = func() map[string]Shape {
	m := make(map[string]Shape, len(shapeNames))
	for s, name := range shapeNames {
		m[name] = s
	}

	return m
}()

// String returns the canonical shape name.
func (s Shape) String() string {
	name, ok := shapeNames[s]
	if !ok {
		return fmt.Sprintf("Shape(%d)", int(s))
	}

	return name
}

// HasGain reports whether the shape applies the band's gain. Pass,
// notch and all-pass shapes have no gain parameter in their transfer
// function and ignore it.
func (s Shape) HasGain() bool {
	switch s {
	case ShapePeaking, ShapeLowShelf, ShapeHighShelf:
		return true
	default:
		return false
	}
}

// ParseShape resolves a canonical shape name.
func ParseShape(name string) (Shape, error) {
	s, ok := shapesByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}

	return s, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	name, ok := shapeNames[s]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownShape, int(s))
	}

	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := ParseShape(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}
