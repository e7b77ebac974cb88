package vocal

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/artur0sky/sonantica-sub003/engine/stage"
)

// Empirical constants of the musician (isolate center) mode. The
// high-pass strips rumble below the vocal range; the wide, low-Q
// band-pass emphasizes the vocal formant region.
const (
	RumbleCutHz     = 200.0
	RumbleCutQ      = 0.707
	FormantCenterHz = 1000.0
	FormantQ        = 0.5
)

// karaokeStage cancels center-panned content with a 2x2 gain matrix:
// Lout = L - R, Rout = R - L. Signal identical and in-phase on both
// channels (the conventional center-channel assumption for vocals)
// cancels to zero.
type karaokeStage struct{}

func (karaokeStage) Process(block [][]float64) {
	if len(block) < 2 {
		return
	}

	left, right := block[0], block[1]
	for i := range left {
		l, r := left[i], right[i]
		left[i] = l - r
		right[i] = r - l
	}
}

// musicianStage sums to mono, filters down to the vocal formant range,
// and duplicates the result to every output channel.
type musicianStage struct {
	highpass *biquad.Section
	bandpass *biquad.Section
}

func newMusicianStage(ctx stage.Context) *musicianStage {
	return &musicianStage{
		highpass: biquad.NewSection(design.Highpass(RumbleCutHz, RumbleCutQ, ctx.SampleRate)),
		bandpass: biquad.NewSection(design.Bandpass(FormantCenterHz, FormantQ, ctx.SampleRate)),
	}
}

func (s *musicianStage) Process(block [][]float64) {
	if len(block) == 0 {
		return
	}

	frames := len(block[0])
	scale := 1.0 / float64(len(block))

	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := range block {
			sum += block[ch][i]
		}

		m := s.bandpass.ProcessSample(s.highpass.ProcessSample(sum * scale))
		for ch := range block {
			block[ch][i] = m
		}
	}
}

// Build returns the stages implementing the given mode, in processing
// order. Normal and AI modes return no stages (passthrough); karaoke on
// non-stereo input degrades to passthrough because there is no side
// signal to cancel.
func Build(ctx stage.Context, mode Mode) ([]stage.Stage, error) {
	switch mode {
	case ModeNormal, ModeAIKaraoke, ModeAIVocals:
		return nil, nil
	case ModeKaraoke:
		if ctx.Channels < 2 {
			return nil, nil
		}

		return []stage.Stage{karaokeStage{}}, nil
	case ModeMusician:
		return []stage.Stage{newMusicianStage(ctx)}, nil
	default:
		return nil, fmt.Errorf("vocal: build: %w: %d", ErrUnknownMode, int(mode))
	}
}
