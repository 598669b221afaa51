// package scene contains the scene-graph data model produced by decoding a model
// container. These are plain data types with no rendering behavior: the decoder
// populates them and hands the graph to a rendering collaborator, which owns all
// GPU concerns.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is a transformable element of the decoded scene graph. A node owns its
// children; there are no parent back-pointers. Nodes carrying renderable data
// reference a Mesh, grouping nodes leave Mesh nil.
type Node struct {
	// Name identifies the node within the graph. Not required to be unique.
	Name string

	// Position is the node's local translation.
	Position mgl32.Vec3

	// Rotation is the node's local orientation as a quaternion.
	Rotation mgl32.Quat

	// Scale is the node's local per-axis scale.
	Scale mgl32.Vec3

	// Mesh is the renderable primitive instance attached to this node, or nil
	// for pure grouping nodes.
	Mesh *Mesh

	// Children are the nodes owned by this node, in attachment order.
	Children []*Node
}

// NewNode creates a node with the given name and an identity transform.
// Use this instead of a struct literal so Rotation and Scale start at their
// identity values rather than zero.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - *Node: the new node
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// AddChild appends nodes to this node's child list.
func (n *Node) AddChild(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// LocalMatrix composes the node's translation, rotation, and scale into a
// column-major local transform (translation * rotation * scale).
//
// Returns:
//   - mgl32.Mat4: the composed local transform
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	r := n.Rotation.Mat4()
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// Walk visits this node and every descendant in depth-first pre-order.
// Returning false from the visit function prunes the subtree below that node.
//
// Parameters:
//   - visit: called once per visited node; return false to skip its children
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// Clone returns an independent copy of this node and its entire subtree.
// Node wrappers, mesh instances, and material records are duplicated so the
// copy shares no mutable render state with the original; geometry buffers,
// textures, and images are shared by reference since they are immutable once
// decoded.
//
// Returns:
//   - *Node: the cloned subtree root
func (n *Node) Clone() *Node {
	clone := &Node{
		Name:     n.Name,
		Position: n.Position,
		Rotation: n.Rotation,
		Scale:    n.Scale,
	}
	if n.Mesh != nil {
		clone.Mesh = n.Mesh.Clone()
	}
	if len(n.Children) > 0 {
		clone.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}
