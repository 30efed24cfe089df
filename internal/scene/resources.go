package scene

import "fmt"

// ResourceID identifies one allocated geometry or material buffer.
type ResourceID uint64

type resourceKind uint8

const (
	kindGeometry resourceKind = iota + 1
	kindMaterial
)

// Resources tracks graphics allocations so retired meshes can be proven
// released. It is owned by the render goroutine and is not safe for
// concurrent use.
type Resources struct {
	next ResourceID
	live map[ResourceID]resourceKind
}

// NewResources returns an empty allocation table.
func NewResources() *Resources {
	return &Resources{live: make(map[ResourceID]resourceKind)}
}

func (r *Resources) alloc(kind resourceKind) ResourceID {
	r.next++
	r.live[r.next] = kind
	return r.next
}

func (r *Resources) release(id ResourceID) error {
	if _, ok := r.live[id]; !ok {
		return fmt.Errorf("resource %d: double release", id)
	}
	delete(r.live, id)
	return nil
}

// Live returns the number of unreleased allocations.
func (r *Resources) Live() int { return len(r.live) }

// LiveGeometries returns the number of unreleased geometries.
func (r *Resources) LiveGeometries() int { return r.count(kindGeometry) }

// LiveMaterials returns the number of unreleased materials.
func (r *Resources) LiveMaterials() int { return r.count(kindMaterial) }

func (r *Resources) count(kind resourceKind) int {
	n := 0
	for _, k := range r.live {
		if k == kind {
			n++
		}
	}
	return n
}

// Geometry is a tessellated unit description of a sphere.
type Geometry struct {
	ID       ResourceID
	Radius   float64
	Segments int
}

// NewSphereGeometry allocates sphere geometry with the given tessellation.
func (r *Resources) NewSphereGeometry(radius float64, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	return &Geometry{ID: r.alloc(kindGeometry), Radius: radius, Segments: segments}
}

// Material is a Phong surface description.
type Material struct {
	ID          ResourceID
	Color       Color
	Emissive    Color
	Shininess   float64
	Opacity     float64
	Transparent bool
}

// MaterialSpec describes a material before allocation.
type MaterialSpec struct {
	Color     Color
	Emissive  Color
	Shininess float64
	Opacity   float64
}

// NewPhongMaterial allocates a material.
func (r *Resources) NewPhongMaterial(spec MaterialSpec) *Material {
	return &Material{
		ID:          r.alloc(kindMaterial),
		Color:       spec.Color,
		Emissive:    spec.Emissive,
		Shininess:   spec.Shininess,
		Opacity:     spec.Opacity,
		Transparent: spec.Opacity < 1,
	}
}
