package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch is matched by every FetchError.
	ErrFetch = errors.New("snapshot fetch failed")
	// ErrMalformed is matched by every MalformedSnapshotError.
	ErrMalformed = errors.New("malformed snapshot")
)

// FetchError reports a transport failure or a non-success response.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Cause)
}

func (e *FetchError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Cause}
}

// MalformedSnapshotError reports a body that is not a valid snapshot document.
type MalformedSnapshotError struct {
	Field string
	Cause error
}

func (e *MalformedSnapshotError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed snapshot: %v", e.Cause)
	}
	return fmt.Sprintf("malformed snapshot: %s: %v", e.Field, e.Cause)
}

func (e *MalformedSnapshotError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Cause}
}

func malformed(field string, format string, args ...any) error {
	return &MalformedSnapshotError{Field: field, Cause: fmt.Errorf(format, args...)}
}
