// Package source provides decoded audio sources for the DSP engine:
// format adapters over wav/mp3/ogg decoders, a format registry, and a
// deterministic sine source for tests and calibration.
//
// The engine consumes the Source interface only; it never decodes
// audio itself.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrUnknownFormat is returned when no decoder is registered for a
	// format key.
	ErrUnknownFormat = errors.New("unknown audio format")
)

// Source produces interleaved float32 PCM in [-1, 1].
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (1 = mono, 2 = stereo).
	Channels() int
	// ReadSamples fills dst with interleaved samples and returns the
	// number of float32 values written. io.EOF marks the end of the
	// stream.
	ReadSamples(dst []float32) (int, error)
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps format keys (file extensions) to decoders.
type Registry struct {
	mu     sync.Mutex
	codecs map[string]Decoder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

// DefaultRegistry returns a registry with the built-in wav, mp3 and
// ogg decoders registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("wav", WAVDecoder{})
	r.Register("mp3", MP3Decoder{})
	r.Register("ogg", VorbisDecoder{})

	return r
}

// Open opens path using the default registry, picking the decoder by
// file extension.
func Open(path string) (Source, error) {
	return DefaultRegistry().Open(path)
}

// Register adds or replaces the decoder for a format key.
func (r *Registry) Register(format string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

// Get returns the decoder for a format key.
func (r *Registry) Get(format string) (Decoder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]

	return d, ok
}

// Open opens a file and decodes it based on its extension. The
// returned source owns the file handle and releases it on Close.
func (r *Registry) Open(path string) (Source, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	dec, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("source: open %s: %w: %q", path, ErrUnknownFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("source: decode %s: %w", path, err)
	}

	return &fileSource{Source: src, f: f}, nil
}

// fileSource couples a decoded source with its backing file handle.
type fileSource struct {
	Source
	f *os.File
}

func (s *fileSource) Close() error {
	err := s.Source.Close()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}

	return err
}
