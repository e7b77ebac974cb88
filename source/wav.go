package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned for readers that do not hold a decodable
// RIFF/WAVE stream.
var ErrInvalidWAV = errors.New("invalid wav stream")

type wavSource struct {
	dec        *wav.Decoder
	sampleRate int
	channels   int
	scale      float32
	buf        *audio.IntBuffer
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}

	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("source: wav read: %w", err)
	}

	if n == 0 {
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		dst[i] = float32(s.buf.Data[i]) * s.scale
	}

	return n, nil
}

// WAVDecoder adapts go-audio/wav to the Source interface.
type WAVDecoder struct{}

// Decode builds a Source over a wav stream. Readers that cannot seek
// are buffered in memory first, since the RIFF parser needs seeking.
func (WAVDecoder) Decode(r io.Reader) (Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("source: wav: %w", err)
		}

		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)

	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	if dec.BitDepth == 0 || dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, fmt.Errorf("%w: bad format chunk", ErrInvalidWAV)
	}

	return &wavSource{
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		scale:      1.0 / float32(int(1)<<(dec.BitDepth-1)),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: int(dec.NumChans),
				SampleRate:  int(dec.SampleRate),
			},
			SourceBitDepth: int(dec.BitDepth),
		},
	}, nil
}
