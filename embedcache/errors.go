package embedcache

import "errors"

var (
	// ErrNotReady is returned when similarities are requested from a cache
	// that is not in the Ready state.
	ErrNotReady = errors.New("embedding cache not ready")

	// ErrStaleCache is returned when the stored sections do not match the loaded document.
	ErrStaleCache = errors.New("embedding cache does not match document")

	// ErrNoLoader is returned when Load is called without a loader.
	ErrNoLoader = errors.New("no embedding loader configured")
)
