package scene

import "fmt"

// AmbientLight lights every surface uniformly.
type AmbientLight struct {
	Color     Color
	Intensity float64
}

// PointLight emits from a position without distance decay.
type PointLight struct {
	Color     Color
	Intensity float64
	Position  Vec3
}

// Scene is an ordered set of meshes plus a lighting rig.
type Scene struct {
	Background Color
	Ambient    AmbientLight
	Points     []PointLight

	nextID  MeshID
	objects []*Mesh
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add creates a mesh from geometry and material and appends it.
func (s *Scene) Add(geo *Geometry, mat *Material, position Vec3) *Mesh {
	s.nextID++
	m := &Mesh{
		ID:       s.nextID,
		Geometry: geo,
		Material: mat,
		Position: position,
		Scale:    Vec3{1, 1, 1},
	}
	s.objects = append(s.objects, m)
	return m
}

// Objects returns the meshes in insertion order. The slice must not be
// modified by the caller.
func (s *Scene) Objects() []*Mesh { return s.objects }

// Len returns the number of meshes.
func (s *Scene) Len() int { return len(s.objects) }

// Clear removes every mesh and releases its resources.
func (s *Scene) Clear(res *Resources) error {
	var firstErr error
	for _, m := range s.objects {
		if err := m.Dispose(res); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("dispose mesh %d: %w", m.ID, err)
		}
	}
	clear(s.objects)
	s.objects = s.objects[:0]
	return firstErr
}
