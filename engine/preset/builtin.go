package preset

import (
	"fmt"

	"github.com/artur0sky/sonantica-sub003/engine/eq"
)

// FlatPresetID identifies the built-in flat (all zero gain) preset the
// engine falls back to on reset.
const FlatPresetID = "flat"

// Ten-band layout on the usual octave centers. The first band is a low
// shelf, the last a high shelf, everything between is peaking.
var builtinFrequencies = [10]float64{31.25, 62.5, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

const builtinQ = 0.707

func builtinBands(id string, gains [10]float64) []eq.Band {
	bands := make([]eq.Band, len(builtinFrequencies))
	for i, freq := range builtinFrequencies {
		shape := eq.ShapePeaking
		switch i {
		case 0:
			shape = eq.ShapeLowShelf
		case len(builtinFrequencies) - 1:
			shape = eq.ShapeHighShelf
		}

		bands[i] = eq.Band{
			ID:          fmt.Sprintf("%s-%d", id, i),
			Shape:       shape,
			FrequencyHz: freq,
			GainDB:      gains[i],
			Q:           builtinQ,
			Enabled:     true,
		}
	}

	return bands
}

func builtinPreset(id, name, description string, preampDB float64, gains [10]float64) Preset {
	return Preset{
		ID:          id,
		Name:        name,
		Description: description,
		Bands:       builtinBands(id, gains),
		PreampDB:    preampDB,
		BuiltIn:     true,
	}
}

// builtins returns a fresh copy of the built-in catalog.
func builtins() []Preset {
	return []Preset{
		builtinPreset(FlatPresetID, "Flat", "No coloration", 0,
			[10]float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}),
		builtinPreset("rock", "Rock", "Scooped mids, pushed lows and highs", -2,
			[10]float64{5, 4, 2, -1, -2, -1, 2, 3, 4, 4}),
		builtinPreset("pop", "Pop", "Presence lift with gentle bass support", -1,
			[10]float64{-1, 1, 3, 4, 3, 0, -1, -1, 1, 2}),
		builtinPreset("jazz", "Jazz", "Warm lows, relaxed top end", -1,
			[10]float64{3, 2, 1, 2, -2, -2, 0, 1, 2, 3}),
		builtinPreset("classical", "Classical", "Broad, subtle contour", 0,
			[10]float64{3, 2, 1, 0, 0, 0, -1, -1, 2, 3}),
		builtinPreset("electronic", "Electronic", "Deep sub energy and sparkle", -3,
			[10]float64{6, 5, 2, 0, -2, 0, 1, 2, 4, 5}),
		builtinPreset("vocal-boost", "Vocal Boost", "Forward vocal presence band", -1,
			[10]float64{-2, -2, -1, 2, 4, 5, 4, 2, 0, -1}),
		builtinPreset("bass-boost", "Bass Boost", "Low-end emphasis only", -3,
			[10]float64{7, 6, 4, 2, 0, 0, 0, 0, 0, 0}),
	}
}
