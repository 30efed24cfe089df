package refresh

import "time"

// Outcome is how a refresh attempt ended.
type Outcome string

const (
	OutcomeApplied    Outcome = "applied"
	OutcomeFetchError Outcome = "fetch_error"
	OutcomeMalformed  Outcome = "malformed"
	OutcomeStale      Outcome = "stale"
)

// Entry is one journaled refresh attempt.
type Entry struct {
	ID            string    `json:"id"`
	Seq           uint64    `json:"seq"`
	Endpoint      string    `json:"endpoint"`
	Outcome       Outcome   `json:"outcome"`
	OrganismCount int       `json:"organism_count"`
	Error         string    `json:"error,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// CachedSnapshot is the raw body of the last successfully applied document.
type CachedSnapshot struct {
	Endpoint  string    `json:"endpoint"`
	Body      []byte    `json:"-"`
	FetchedAt time.Time `json:"fetched_at"`
}
