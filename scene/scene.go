package scene

// Scene is the product of one decode operation: a single root node owning the
// full hierarchy, plus flat registries of the shared resources referenced by
// nodes below it. The caller owns the scene; discarding it releases the whole
// graph.
type Scene struct {
	// Name is the scene name from the source document, falling back to the
	// source location when the document names nothing.
	Name string

	// Root is the synthesized container node whose direct children are the
	// scene descriptor's root nodes.
	Root *Node

	// Geometries lists the shared vertex data of every surviving primitive, in
	// construction order.
	Geometries []*Geometry

	// Textures is aligned with the source document's texture descriptors.
	// Entries are nil where the descriptor failed to resolve recoverably.
	Textures []*Texture

	// Images is aligned with the source document's image descriptors. Entries
	// are nil where the descriptor failed to resolve recoverably.
	Images []*Image

	// Warnings collects the non-fatal diagnostics emitted while decoding:
	// skipped primitives, unresolvable images or textures, and container
	// length inconsistencies.
	Warnings []string
}

// Bounds returns the union of all geometry bounding boxes. A scene without
// geometry yields zero bounds.
func (s *Scene) Bounds() Bounds {
	if len(s.Geometries) == 0 {
		return Bounds{}
	}
	b := s.Geometries[0].Bounds
	for _, g := range s.Geometries[1:] {
		b = b.Union(g.Bounds)
	}
	return b
}

// MeshCount returns the number of mesh instances attached below the root.
func (s *Scene) MeshCount() int {
	count := 0
	if s.Root != nil {
		s.Root.Walk(func(n *Node) bool {
			if n.Mesh != nil {
				count++
			}
			return true
		})
	}
	return count
}
