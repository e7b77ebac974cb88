package source

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// go-mp3 always yields 16-bit little-endian stereo PCM.
const mp3Channels = 2

type mp3Source struct {
	dec        *gomp3.Decoder
	sampleRate int
	buf        []byte
}

func (s *mp3Source) SampleRate() int { return s.sampleRate }
func (s *mp3Source) Channels() int   { return mp3Channels }
func (s *mp3Source) Close() error    { return nil }

func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}

	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.dec, s.buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return 0, io.EOF
		}

		return 0, fmt.Errorf("source: mp3 read: %w", err)
	}

	samples := n / 2
	for i := 0; i < samples; i++ {
		v := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = float32(v) / 32768.0
	}

	if samples == 0 {
		return 0, io.EOF
	}

	return samples, nil
}

// MP3Decoder adapts hajimehoshi/go-mp3 to the Source interface.
type MP3Decoder struct{}

// Decode builds a Source over an mp3 stream.
func (MP3Decoder) Decode(r io.Reader) (Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("source: mp3: %w", err)
	}

	return &mp3Source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
	}, nil
}
