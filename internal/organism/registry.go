package organism

import (
	"iter"

	"github.com/rpggio/tracespace/internal/domain/snapshot"
	"github.com/rpggio/tracespace/internal/scene"
)

// Handle is a stable reference into the registry for the lifetime of one
// snapshot. Handles from a previous snapshot never resolve.
type Handle struct {
	index      uint32
	generation uint32
}

// Pack encodes the handle for storage in scene.Mesh.UserData.
func (h Handle) Pack() uint64 {
	return uint64(h.generation)<<32 | uint64(h.index)
}

// Unpack decodes a handle produced by Pack.
func Unpack(v uint64) Handle {
	return Handle{index: uint32(v), generation: uint32(v >> 32)}
}

// Index returns the insertion position of the organism.
func (h Handle) Index() int { return int(h.index) }

// Organism pairs a mesh with the record it was built from.
type Organism struct {
	Handle   Handle
	Mesh     *scene.Mesh
	Record   snapshot.OrganismRecord
	Level    Level
	BaseSize float64
	Velocity float64
	Phase    float64
	Home     scene.Vec3
}

// Registry is a dense arena of organisms in insertion order.
type Registry struct {
	items      []Organism
	generation uint32
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{generation: 1}
}

// Reset drops every organism and invalidates all outstanding handles.
func (r *Registry) Reset() {
	clear(r.items)
	r.items = r.items[:0]
	r.generation++
}

// Add appends an organism, stamps its handle and links its mesh back to it.
func (r *Registry) Add(o Organism) Handle {
	h := Handle{index: uint32(len(r.items)), generation: r.generation}
	o.Handle = h
	if o.Mesh != nil {
		o.Mesh.UserData = h.Pack()
	}
	r.items = append(r.items, o)
	return h
}

// Get resolves a handle. Stale handles return false.
func (r *Registry) Get(h Handle) (*Organism, bool) {
	if h.generation != r.generation || int(h.index) >= len(r.items) {
		return nil, false
	}
	return &r.items[h.index], true
}

// ForMesh resolves the organism that owns a mesh.
func (r *Registry) ForMesh(m *scene.Mesh) (*Organism, bool) {
	if m == nil {
		return nil, false
	}
	o, ok := r.Get(Unpack(m.UserData))
	if !ok || o.Mesh != m {
		return nil, false
	}
	return o, true
}

// Len returns the number of organisms.
func (r *Registry) Len() int { return len(r.items) }

// All iterates organisms in insertion order.
func (r *Registry) All() iter.Seq[*Organism] {
	return func(yield func(*Organism) bool) {
		for i := range r.items {
			if !yield(&r.items[i]) {
				return
			}
		}
	}
}

// CountLevel returns how many organisms sit at the given level.
func (r *Registry) CountLevel(l Level) int {
	n := 0
	for i := range r.items {
		if r.items[i].Level == l {
			n++
		}
	}
	return n
}
