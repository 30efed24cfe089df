package refresh

import "errors"

var (
	// ErrInvalidInput indicates an incomplete journal entry.
	ErrInvalidInput = errors.New("invalid refresh entry")
	// ErrNoCachedSnapshot indicates no document was ever applied for an endpoint.
	ErrNoCachedSnapshot = errors.New("no cached snapshot")
)
