package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Snapshot is the aggregate document consumed for one render cycle.
type Snapshot struct {
	Subcomponents []OrganismRecord `json:"subcomponents"`
	Components    []OrganismRecord `json:"components"`
	Entity        *OrganismRecord  `json:"entity,omitempty"`
	Stats         Stats            `json:"stats"`
	Timestamp     Timestamp        `json:"timestamp"`
}

// OrganismCount returns the number of records across all three levels.
func (s *Snapshot) OrganismCount() int {
	if s == nil {
		return 0
	}
	n := len(s.Subcomponents) + len(s.Components)
	if s.Entity != nil {
		n++
	}
	return n
}

// Stats holds the aggregate counters of a snapshot.
type Stats struct {
	TotalOrganisms  int64 `json:"total_organisms"`
	TotalEngagement int64 `json:"total_engagement"`
	ComponentCount  int64 `json:"component_count,omitempty"`
}

// UnmarshalJSON accepts any JSON number for the counters, rounding to the
// nearest integer.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var w struct {
		TotalOrganisms  float64 `json:"total_organisms"`
		TotalEngagement float64 `json:"total_engagement"`
		ComponentCount  float64 `json:"component_count"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Stats{
		TotalOrganisms:  count(w.TotalOrganisms),
		TotalEngagement: count(w.TotalEngagement),
		ComponentCount:  count(w.ComponentCount),
	}
	return nil
}

// OrganismRecord is one scored record at any hierarchy level.
type OrganismRecord struct {
	ID       string   `json:"id,omitempty"`
	Size     float64  `json:"size"`
	Color    Color    `json:"color"`
	Position Position `json:"position"`
	Velocity float64  `json:"velocity"`
	Text     string   `json:"text,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// Color is an RGB triple with channels in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Position is a point in world space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Metadata describes where a record came from and how it performed.
// Aggregate records carry ChildCount/TotalEngagement instead of a source.
type Metadata struct {
	Source     string `json:"source,omitempty"`
	Author     string `json:"author,omitempty"`
	Engagement *int64 `json:"engagement,omitempty"`
	Likes      int64  `json:"likes,omitempty"`
	Reposts    int64  `json:"reposts,omitempty"`
	Replies    int64  `json:"replies,omitempty"`

	ChildCount      int    `json:"child_count,omitempty"`
	TotalEngagement int64  `json:"total_engagement,omitempty"`
	AggregateMethod string `json:"aggregate_method,omitempty"`
}

// UnmarshalJSON accepts any JSON number for the counters, rounding to the
// nearest integer.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var w struct {
		Source          string   `json:"source"`
		Author          string   `json:"author"`
		Engagement      *float64 `json:"engagement"`
		Likes           float64  `json:"likes"`
		Reposts         float64  `json:"reposts"`
		Replies         float64  `json:"replies"`
		ChildCount      float64  `json:"child_count"`
		TotalEngagement float64  `json:"total_engagement"`
		AggregateMethod string   `json:"aggregate_method"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Metadata{
		Source:          w.Source,
		Author:          w.Author,
		Likes:           count(w.Likes),
		Reposts:         count(w.Reposts),
		Replies:         count(w.Replies),
		ChildCount:      int(count(w.ChildCount)),
		TotalEngagement: count(w.TotalEngagement),
		AggregateMethod: w.AggregateMethod,
	}
	if w.Engagement != nil {
		e := count(*w.Engagement)
		m.Engagement = &e
	}
	return nil
}

func count(v float64) int64 {
	return int64(math.Round(v))
}

// Timestamp is an ISO-8601 instant. Zone-less values are read as local time,
// which is what the pipeline writes.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses the formats the pipeline is known to emit.
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, value)
		} else {
			t, err = time.ParseInLocation(layout, value, time.Local)
		}
		if err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// MarshalJSON writes the timestamp as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time.Format(time.RFC3339Nano) + `"`), nil
}
