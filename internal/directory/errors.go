package directory

import "errors"

var (
	// ErrConfiguration indicates the directory settings are malformed.
	// Deployment-level defect, logged at error severity.
	ErrConfiguration = errors.New("directory configuration invalid")

	// ErrConnection indicates a transport, TLS or timeout failure while
	// talking to the directory server.
	ErrConnection = errors.New("directory connection failed")

	// ErrSearch indicates the user search resolved to zero or multiple
	// entries, or failed outright. Expected and frequent, logged at
	// debug severity.
	ErrSearch = errors.New("directory search failed")

	// ErrInvalidCredentials indicates the directory rejected the bind
	// with the submitted password.
	ErrInvalidCredentials = errors.New("invalid directory credentials")
)
