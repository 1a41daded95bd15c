package cache

import "errors"

// Sentinel errors shared by every cache backend. Callers match them with
// errors.Is so a backend swap never changes error handling.
var (
	// ErrCacheMiss means the key is absent; callers fall through to the source.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheUnavailable means the backend could not be reached at all.
	ErrCacheUnavailable = errors.New("cache: backend unavailable")

	// ErrInvalidValue means a stored value failed to decode.
	ErrInvalidValue = errors.New("cache: invalid value")
)
