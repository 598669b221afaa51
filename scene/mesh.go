package scene

// Mesh pairs immutable geometry with a per-instance material record. Each node
// that renders geometry carries its own Mesh so that material changes on one
// instance never leak into another; the Geometry behind it is shared.
type Mesh struct {
	// Name identifies the mesh instance.
	Name string

	// Geometry is the shared vertex data. Never nil for a decoded mesh.
	Geometry *Geometry

	// Material holds this instance's surface parameters.
	Material Material
}

// Clone returns a copy of the mesh with its own material record. The Geometry
// pointer is shared; the texture and image referenced by the material are
// likewise shared since they are immutable once decoded.
//
// Returns:
//   - *Mesh: the cloned mesh instance
func (m *Mesh) Clone() *Mesh {
	clone := *m
	return &clone
}
