package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/gltf-go/common"
	"github.com/Carmen-Shannon/gltf-go/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// gltfSceneBuilderImpl is the implementation of the gltfSceneBuilder interface.
type gltfSceneBuilderImpl struct {
	parser    gltfParser
	templates []*scene.Node

	warnings []string
}

// gltfSceneBuilder defines the interface for assembling the node hierarchy of
// a parsed document. Construction is two-pass: every node is materialized
// independently first, then parent/child relations are wired by index, which
// sidesteps forward-reference ordering without mutable back-pointers.
type gltfSceneBuilder interface {
	// BuildScene constructs the full hierarchy and returns a single root whose
	// direct children are the node indices listed by the selected scene
	// descriptor. The document's default scene is used when declared, the
	// first scene otherwise; with no scenes at all, every parentless node
	// becomes a root child.
	//
	// Parameters:
	//   - fallbackRootName: the root name used when the scene descriptor is unnamed
	//
	// Returns:
	//   - *scene.Node: the root of the assembled hierarchy
	//   - error: ErrDanglingReference if a child, mesh, or scene index is out of range
	BuildScene(fallbackRootName string) (*scene.Node, error)

	// Warnings returns the non-fatal diagnostics accumulated during assembly.
	//
	// Returns:
	//   - []string: the diagnostics in emission order
	Warnings() []string
}

var _ gltfSceneBuilder = &gltfSceneBuilderImpl{}

// newGLTFSceneBuilder creates a scene builder for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - templates: the mesh template nodes, aligned with the document's mesh descriptors
//
// Returns:
//   - gltfSceneBuilder: the scene builder
func newGLTFSceneBuilder(parser gltfParser, templates []*scene.Node) gltfSceneBuilder {
	return &gltfSceneBuilderImpl{
		parser:    parser,
		templates: templates,
	}
}

func (b *gltfSceneBuilderImpl) Warnings() []string {
	return b.warnings
}

func (b *gltfSceneBuilderImpl) BuildScene(fallbackRootName string) (*scene.Node, error) {
	doc := b.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	// First pass: materialize every node with its transform and mesh instance,
	// no children yet.
	nodes := make([]*scene.Node, len(doc.Nodes))
	for i := range doc.Nodes {
		node, err := b.buildNode(i, &doc.Nodes[i])
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}

	// Second pass: wire parent/child relations by index.
	for i := range doc.Nodes {
		for _, childIndex := range doc.Nodes[i].Children {
			if childIndex < 0 || childIndex >= len(nodes) {
				return nil, fmt.Errorf("node %d child index %d exceeds %d nodes: %w", i, childIndex, len(nodes), ErrDanglingReference)
			}
			nodes[i].AddChild(nodes[childIndex])
		}
	}

	var sceneName string
	var rootIndices []int
	switch {
	case doc.Scene != nil:
		if *doc.Scene < 0 || *doc.Scene >= len(doc.Scenes) {
			return nil, fmt.Errorf("default scene index %d exceeds %d scenes: %w", *doc.Scene, len(doc.Scenes), ErrDanglingReference)
		}
		sceneDesc := &doc.Scenes[*doc.Scene]
		rootIndices = sceneDesc.Nodes
		sceneName = sceneDesc.Name
	case len(doc.Scenes) > 0:
		sceneDesc := &doc.Scenes[0]
		rootIndices = sceneDesc.Nodes
		sceneName = sceneDesc.Name
	default:
		// No scene descriptor: root every node that no other node parents.
		hasParent := make([]bool, len(nodes))
		for i := range doc.Nodes {
			for _, childIndex := range doc.Nodes[i].Children {
				hasParent[childIndex] = true
			}
		}
		for i := range nodes {
			if !hasParent[i] {
				rootIndices = append(rootIndices, i)
			}
		}
		if len(doc.Nodes) > 0 {
			b.warnf("document declares no scenes, rooting %d parentless nodes", len(rootIndices))
		}
	}

	// The scene's own name wins, then the caller's fallback, then the generic
	// default.
	root := scene.NewNode(common.Coalesce(sceneName, fallbackRootName, "scene"))
	for _, nodeIndex := range rootIndices {
		if nodeIndex < 0 || nodeIndex >= len(nodes) {
			return nil, fmt.Errorf("scene node index %d exceeds %d nodes: %w", nodeIndex, len(nodes), ErrDanglingReference)
		}
		root.AddChild(nodes[nodeIndex])
	}

	return root, nil
}

// buildNode materializes a single node: transform applied, mesh template
// cloned and attached, children deferred to the linking pass.
func (b *gltfSceneBuilderImpl) buildNode(nodeIndex int, desc *gltfNode) (*scene.Node, error) {
	name := desc.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", nodeIndex)
	}
	node := scene.NewNode(name)

	if desc.Translation != nil {
		t := *desc.Translation
		node.Position = mgl32.Vec3{t[0], t[1], t[2]}
	}
	if desc.Rotation != nil {
		// Stored as x, y, z, w; the quaternion type wants w first.
		r := *desc.Rotation
		node.Rotation = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	}
	if desc.Scale != nil {
		s := *desc.Scale
		node.Scale = mgl32.Vec3{s[0], s[1], s[2]}
	}

	if desc.Mesh != nil {
		meshIndex := *desc.Mesh
		if meshIndex < 0 || meshIndex >= len(b.templates) {
			return nil, fmt.Errorf("node %d mesh index %d exceeds %d meshes: %w", nodeIndex, meshIndex, len(b.templates), ErrDanglingReference)
		}
		// Each referencing node gets its own clone so instances never share
		// mutable material state. The geometry behind the clone is shared.
		if template := b.templates[meshIndex]; template != nil {
			node.AddChild(template.Clone())
		}
	}

	return node, nil
}

// warnf records a non-fatal diagnostic.
func (b *gltfSceneBuilderImpl) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}
