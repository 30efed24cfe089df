package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// wireSnapshot mirrors Snapshot with pointers so missing fields can be told
// apart from empty ones.
type wireSnapshot struct {
	Subcomponents *[]OrganismRecord `json:"subcomponents"`
	Components    *[]OrganismRecord `json:"components"`
	Entity        *OrganismRecord   `json:"entity"`
	Stats         *Stats            `json:"stats"`
	Timestamp     *string           `json:"timestamp"`
}

// Decode parses and validates a snapshot document.
func Decode(data []byte) (*Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, malformed("", "empty body")
	}

	var wire wireSnapshot
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &MalformedSnapshotError{Cause: err}
	}

	if wire.Subcomponents == nil {
		return nil, malformed("subcomponents", "required")
	}
	if wire.Components == nil {
		return nil, malformed("components", "required")
	}
	if wire.Timestamp == nil {
		return nil, malformed("timestamp", "required")
	}
	ts, err := ParseTimestamp(*wire.Timestamp)
	if err != nil {
		return nil, &MalformedSnapshotError{Field: "timestamp", Cause: err}
	}

	snap := &Snapshot{
		Subcomponents: *wire.Subcomponents,
		Components:    *wire.Components,
		Entity:        wire.Entity,
		Timestamp:     ts,
	}
	if wire.Stats != nil {
		snap.Stats = *wire.Stats
	}

	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Validate checks every record against the document constraints.
func (s *Snapshot) Validate() error {
	for i := range s.Subcomponents {
		if err := s.Subcomponents[i].validate(fmt.Sprintf("subcomponents[%d]", i)); err != nil {
			return err
		}
	}
	for i := range s.Components {
		if err := s.Components[i].validate(fmt.Sprintf("components[%d]", i)); err != nil {
			return err
		}
	}
	if s.Entity != nil {
		if err := s.Entity.validate("entity"); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrganismRecord) validate(path string) error {
	if !finite(r.Size) || r.Size <= 0 {
		return malformed(path+".size", "must be > 0, got %v", r.Size)
	}
	if !finite(r.Velocity) || r.Velocity < 0 {
		return malformed(path+".velocity", "must be >= 0, got %v", r.Velocity)
	}
	for name, v := range map[string]float64{"r": r.Color.R, "g": r.Color.G, "b": r.Color.B} {
		if !finite(v) || v < 0 || v > 1 {
			return malformed(path+".color."+name, "must be in [0,1], got %v", v)
		}
	}
	if !finite(r.Position.X) || !finite(r.Position.Y) || !finite(r.Position.Z) {
		return malformed(path+".position", "must be finite")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
