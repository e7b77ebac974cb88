package eq

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
)

const (
	// MaxBands caps the number of bands in one set.
	MaxBands = 31

	MinFrequencyHz = 20.0
	MaxFrequencyHz = 20000.0
	MinQ           = 0.1
	MaxQ           = 20.0
	MinGainDB      = -20.0
	MaxGainDB      = 20.0
)

var (
	// ErrInvalidBand is returned for out-of-range band parameters.
	ErrInvalidBand = errors.New("invalid band")
	// ErrTooManyBands is returned when a band set exceeds MaxBands.
	ErrTooManyBands = errors.New("too many bands")
)

// Band is a single filter stage of the equalizer.
type Band struct {
	ID          string  `json:"id"`
	Shape       Shape   `json:"shape"`
	FrequencyHz float64 `json:"frequencyHz"`
	GainDB      float64 `json:"gainDb"`
	Q           float64 `json:"q"`
	Enabled     bool    `json:"enabled"`
}

// Validate checks the band parameters against their allowed ranges.
func (b Band) Validate() error {
	if _, ok := shapeNames[b.Shape]; !ok {
		return fmt.Errorf("%w: shape %d", ErrInvalidBand, int(b.Shape))
	}

	if math.IsNaN(b.FrequencyHz) || b.FrequencyHz < MinFrequencyHz || b.FrequencyHz > MaxFrequencyHz {
		return fmt.Errorf("%w %q: frequency %f Hz outside [%g, %g]",
			ErrInvalidBand, b.ID, b.FrequencyHz, MinFrequencyHz, MaxFrequencyHz)
	}

	if math.IsNaN(b.Q) || b.Q < MinQ || b.Q > MaxQ {
		return fmt.Errorf("%w %q: q %f outside [%g, %g]", ErrInvalidBand, b.ID, b.Q, MinQ, MaxQ)
	}

	if math.IsNaN(b.GainDB) || b.GainDB < MinGainDB || b.GainDB > MaxGainDB {
		return fmt.Errorf("%w %q: gain %f dB outside [%g, %g]",
			ErrInvalidBand, b.ID, b.GainDB, MinGainDB, MaxGainDB)
	}

	return nil
}

// Clamped returns a copy with every numeric parameter forced into range.
func (b Band) Clamped() Band {
	b.FrequencyHz = core.Clamp(b.FrequencyHz, MinFrequencyHz, MaxFrequencyHz)
	b.Q = core.Clamp(b.Q, MinQ, MaxQ)
	b.GainDB = core.Clamp(b.GainDB, MinGainDB, MaxGainDB)

	return b
}

// ValidateBands checks a full band set: count and each member.
func ValidateBands(bands []Band) error {
	if len(bands) > MaxBands {
		return fmt.Errorf("%w: %d > %d", ErrTooManyBands, len(bands), MaxBands)
	}

	for _, b := range bands {
		if err := b.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// CloneBands returns a deep copy of the band list.
func CloneBands(bands []Band) []Band {
	if bands == nil {
		return nil
	}

	out := make([]Band, len(bands))
	copy(out, bands)

	return out
}
