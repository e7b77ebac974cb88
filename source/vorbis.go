package source

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

type vorbisSource struct {
	dec *oggvorbis.Reader
}

func (s *vorbisSource) SampleRate() int { return s.dec.SampleRate() }
func (s *vorbisSource) Channels() int   { return s.dec.Channels() }
func (s *vorbisSource) Close() error    { return nil }

func (s *vorbisSource) ReadSamples(dst []float32) (int, error) {
	// oggvorbis already yields interleaved float32 in [-1, 1].
	n, err := s.dec.Read(dst)
	if n == 0 && err == nil {
		return 0, io.EOF
	}

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("source: vorbis read: %w", err)
	}

	if n > 0 {
		return n, nil
	}

	return 0, io.EOF
}

// VorbisDecoder adapts jfreymuth/oggvorbis to the Source interface.
type VorbisDecoder struct{}

// Decode builds a Source over an ogg vorbis stream.
func (VorbisDecoder) Decode(r io.Reader) (Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("source: vorbis: %w", err)
	}

	return &vorbisSource{dec: dec}, nil
}
