package scene

// MeshID identifies a mesh within its scene.
type MeshID uint64

// Mesh is one visual object: geometry, material and a transform.
type Mesh struct {
	ID       MeshID
	Geometry *Geometry
	Material *Material

	Position Vec3
	Rotation Vec3 // Euler radians
	Scale    Vec3

	// UserData carries an opaque reference back to whatever owns the mesh.
	UserData uint64
}

// Radius returns the world-space bounding radius, honouring scale.
func (m *Mesh) Radius() float64 {
	return m.Geometry.Radius * m.Scale.MaxComponent()
}

// Dispose releases the mesh's geometry and material.
func (m *Mesh) Dispose(res *Resources) error {
	if m.Geometry != nil {
		if err := res.release(m.Geometry.ID); err != nil {
			return err
		}
		m.Geometry = nil
	}
	if m.Material != nil {
		if err := res.release(m.Material.ID); err != nil {
			return err
		}
		m.Material = nil
	}
	return nil
}
