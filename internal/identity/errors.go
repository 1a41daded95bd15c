package identity

import "errors"

var (
	// ErrMissingStableID is returned when a directory entry carries none of
	// the attributes usable as a stable account identifier. Authenticating
	// such an entry must fail rather than fall back to the login name,
	// which users can often change themselves.
	ErrMissingStableID = errors.New("directory entry has no stable identifier attribute")
)
