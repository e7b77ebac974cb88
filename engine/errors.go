package engine

import "errors"

var (
	// ErrNilSource is returned by Initialize when no source is given.
	ErrNilSource = errors.New("nil source")

	// ErrInvalidSource is returned by Initialize when the source
	// reports an unusable format.
	ErrInvalidSource = errors.New("invalid source format")

	// ErrNotInitialized is returned by Render before Initialize or
	// after Dispose.
	ErrNotInitialized = errors.New("engine not initialized")
)
