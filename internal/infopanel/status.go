package infopanel

import "time"

// State is the refresh health shown by the status indicator.
type State string

const (
	StateLoading State = "loading"
	StateActive  State = "active"
	StateError   State = "error"
)

// Status is the status indicator.
type Status struct {
	State   State     `json:"state"`
	Message string    `json:"message,omitempty"`
	Since   time.Time `json:"since"`
}

// Loading is the indicator before the first result arrives.
func Loading(now time.Time) Status {
	return Status{State: StateLoading, Since: now}
}

// Active marks a successful application.
func Active(now time.Time) Status {
	return Status{State: StateActive, Since: now}
}

// Failed marks a failed refresh with the error text.
func Failed(now time.Time, err error) Status {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Status{State: StateError, Message: msg, Since: now}
}

// Label is the short indicator text.
func (s Status) Label() string {
	switch s.State {
	case StateActive:
		return "● LIVE"
	case StateError:
		return "● ERROR"
	default:
		return "○ LOADING"
	}
}
