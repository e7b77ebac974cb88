// Package stage defines the processing-stage contract shared by every
// component of the signal chain.
//
// A stage processes planar audio blocks in place: one []float64 per
// channel, all slices of equal length. Stages are created fully
// configured; the orchestrator owns every stage it creates for the
// current topology and drops the whole set when the chain is rebuilt.
package stage

// Context carries the audio-format parameters a stage needs at build time.
type Context struct {
	SampleRate float64
	Channels   int
	BlockSize  int
}

// Stage processes one planar block in place.
type Stage interface {
	Process(block [][]float64)
}
