package eq

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/artur0sky/sonantica-sub003/engine/stage"
)

// coefficients maps a band shape to its concrete transfer function.
// Gain is only written for peaking and shelf shapes; the remaining
// shapes have no gain term, matching their physical meaning.
func coefficients(b Band, sampleRate float64) biquad.Coefficients {
	switch b.Shape {
	case ShapeLowShelf:
		return design.LowShelf(b.FrequencyHz, b.GainDB, b.Q, sampleRate)
	case ShapeHighShelf:
		return design.HighShelf(b.FrequencyHz, b.GainDB, b.Q, sampleRate)
	case ShapePeaking:
		return design.Peak(b.FrequencyHz, b.GainDB, b.Q, sampleRate)
	case ShapeLowPass:
		return design.Lowpass(b.FrequencyHz, b.Q, sampleRate)
	case ShapeHighPass:
		return design.Highpass(b.FrequencyHz, b.Q, sampleRate)
	case ShapeNotch:
		return design.Notch(b.FrequencyHz, b.Q, sampleRate)
	case ShapeAllPass:
		return design.Allpass(b.FrequencyHz, b.Q, sampleRate)
	default:
		// Identity section.
		return biquad.Coefficients{B0: 1}
	}
}

// bandStage runs one biquad per channel with shared coefficients.
type bandStage struct {
	sections []*biquad.Section
}

func newBandStage(ctx stage.Context, b Band) *bandStage {
	c := coefficients(b, ctx.SampleRate)

	sections := make([]*biquad.Section, ctx.Channels)
	for ch := range sections {
		sections[ch] = biquad.NewSection(c)
	}

	return &bandStage{sections: sections}
}

func (s *bandStage) Process(block [][]float64) {
	for ch := range block {
		if ch >= len(s.sections) {
			return
		}

		s.sections[ch].ProcessBlock(block[ch])
	}
}

// Build renders the band list as cascaded filter stages in list order,
// skipping disabled bands. An empty result means identity passthrough;
// the caller keeps the returned stages for later teardown.
func Build(ctx stage.Context, bands []Band) []stage.Stage {
	var stages []stage.Stage

	for _, b := range bands {
		if !b.Enabled {
			continue
		}

		stages = append(stages, newBandStage(ctx, b.Clamped()))
	}

	return stages
}
