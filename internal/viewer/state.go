package viewer

import (
	"sync/atomic"

	"github.com/rpggio/tracespace/internal/infopanel"
	"github.com/rpggio/tracespace/internal/organism"
	"github.com/rpggio/tracespace/internal/scene"
)

// OrganismInfo is a read-only description of one organism.
type OrganismInfo struct {
	Index      int            `json:"index"`
	Level      organism.Level `json:"level"`
	ID         string         `json:"id,omitempty"`
	Source     string         `json:"source,omitempty"`
	Author     string         `json:"author,omitempty"`
	Text       string         `json:"text,omitempty"`
	Engagement *int64         `json:"engagement,omitempty"`
	Likes      int64          `json:"likes,omitempty"`
	Reposts    int64          `json:"reposts,omitempty"`
	Replies    int64          `json:"replies,omitempty"`
	Size       float64        `json:"size"`
	Velocity   float64        `json:"velocity"`
	Position   scene.Vec3     `json:"position"`
}

// Describe builds the info for an organism.
func Describe(o *organism.Organism) OrganismInfo {
	meta := o.Record.Metadata
	info := OrganismInfo{
		Index:      o.Handle.Index(),
		Level:      o.Level,
		ID:         o.Record.ID,
		Source:     meta.Source,
		Author:     meta.Author,
		Text:       o.Record.Text,
		Engagement: meta.Engagement,
		Likes:      meta.Likes,
		Reposts:    meta.Reposts,
		Replies:    meta.Replies,
		Size:       o.BaseSize,
		Velocity:   o.Velocity,
	}
	if o.Mesh != nil {
		info.Position = o.Mesh.Position
	}
	return info
}

// State is an immutable copy of what the viewer shows, safe to read from
// other goroutines once published.
type State struct {
	Status         infopanel.Status `json:"status"`
	Panel          infopanel.Panel  `json:"panel"`
	LastApplied    uint64           `json:"last_applied_seq"`
	Organisms      []OrganismInfo   `json:"organisms"`
	Hover          *OrganismInfo    `json:"hover,omitempty"`
	CameraDistance float64          `json:"camera_distance"`
	Dragging       bool             `json:"dragging"`
}

// State copies the current viewer state. Hover and drag state belong to the
// interaction layer and are filled in by the caller.
func (v *Viewer) State() *State {
	st := &State{
		Status:      v.status,
		Panel:       v.panel,
		LastApplied: v.lastApplied,
		Organisms:   make([]OrganismInfo, 0, v.registry.Len()),
	}
	for o := range v.registry.All() {
		st.Organisms = append(st.Organisms, Describe(o))
	}
	if v.camera != nil {
		st.CameraDistance = v.camera.Distance()
	}
	return st
}

// Store publishes State values across goroutines.
type Store struct {
	p atomic.Pointer[State]
}

// Publish replaces the current state.
func (s *Store) Publish(st *State) {
	s.p.Store(st)
}

// Load returns the last published state, or an empty one.
func (s *Store) Load() *State {
	if st := s.p.Load(); st != nil {
		return st
	}
	return &State{}
}
