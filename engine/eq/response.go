package eq

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// ResponseDB returns the combined magnitude response of the enabled
// bands in dB at each requested frequency. The UI uses this for the
// equalizer curve display.
func ResponseDB(bands []Band, freqs []float64, sampleRate float64) []float64 {
	sections := make([]*biquad.Section, 0, len(bands))
	for _, b := range bands {
		if !b.Enabled {
			continue
		}

		sections = append(sections, biquad.NewSection(coefficients(b.Clamped(), sampleRate)))
	}

	out := make([]float64, len(freqs))
	for i, f := range freqs {
		f = core.Clamp(f, 1, sampleRate*0.49)

		h := complex(1, 0)
		for _, s := range sections {
			h *= s.Response(f, sampleRate)
		}

		out[i] = 20 * math.Log10(math.Max(1e-12, cmplx.Abs(h)))
	}

	return out
}
