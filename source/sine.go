package source

import (
	"io"
	"math"
	"time"
)

// sineSource generates a finite sine tone, identical on every channel.
type sineSource struct {
	sampleRate int
	channels   int
	amplitude  float64
	phase      float64
	step       float64
	remaining  int
}

// NewSine returns a deterministic sine source of the given duration.
// The same tone is produced on every channel, which makes it the
// canonical fixture for cancellation and metering tests.
func NewSine(freqHz, amplitude float64, sampleRate, channels int, d time.Duration) Source {
	if channels < 1 {
		channels = 1
	}

	return &sineSource{
		sampleRate: sampleRate,
		channels:   channels,
		amplitude:  amplitude,
		step:       2 * math.Pi * freqHz / float64(sampleRate),
		remaining:  int(d.Seconds() * float64(sampleRate)),
	}
}

func (s *sineSource) SampleRate() int { return s.sampleRate }
func (s *sineSource) Channels() int   { return s.channels }
func (s *sineSource) Close() error    { return nil }

func (s *sineSource) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.channels
	if frames > s.remaining {
		frames = s.remaining
	}

	if frames == 0 {
		return 0, io.EOF
	}

	for i := 0; i < frames; i++ {
		v := float32(s.amplitude * math.Sin(s.phase))
		for ch := 0; ch < s.channels; ch++ {
			dst[i*s.channels+ch] = v
		}

		s.phase += s.step
		if s.phase > math.Pi {
			s.phase -= 2 * math.Pi
		}
	}

	s.remaining -= frames

	return frames * s.channels, nil
}
