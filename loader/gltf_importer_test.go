package loader

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sceneDoc extends the triangle fixture with a node holding the mesh and a
// named scene rooting that node, giving a complete decodable document.
func sceneDoc(t *testing.T) (*gltfDocument, []byte) {
	t.Helper()

	doc, payload := triangleDoc(t)
	doc.Nodes = []gltfNode{{Name: "holder", Mesh: ptr(0)}}
	doc.Scenes = []gltfScene{{Name: "main", Nodes: []int{0}}}
	return doc, payload
}

func TestImportEndToEnd(t *testing.T) {
	doc, payload := sceneDoc(t)
	im := newGLTFImporter(true)

	s, err := im.Import(buildGLB(t, doc, payload), "models/demo.glb")

	require.NoError(t, err)
	assert.Equal(t, "main", s.Name)
	assert.Equal(t, "main", s.Root.Name)
	require.Len(t, s.Root.Children, 1)
	assert.Equal(t, "holder", s.Root.Children[0].Name)
	assert.Equal(t, 1, s.MeshCount())
	assert.Len(t, s.Geometries, 1)
	assert.Empty(t, s.Textures)
	assert.Empty(t, s.Images)
	assert.Empty(t, s.Warnings)
}

func TestImportSceneNameFallsBackToSource(t *testing.T) {
	doc, payload := sceneDoc(t)
	doc.Scenes[0].Name = ""
	im := newGLTFImporter(true)

	s, err := im.Import(buildGLB(t, doc, payload), "assets/spinner.glb")

	require.NoError(t, err)
	assert.Equal(t, "spinner", s.Name)
}

func TestImportEmptySourceUsesDefaultName(t *testing.T) {
	doc, payload := sceneDoc(t)
	doc.Scenes[0].Name = ""
	im := newGLTFImporter(true)

	s, err := im.Import(buildGLB(t, doc, payload), "")

	require.NoError(t, err)
	assert.Equal(t, "scene", s.Name)
}

func TestImportAggregatesWarningsInPipelineOrder(t *testing.T) {
	doc, payload := triangleDoc(t)
	// A point-mode primitive trips the mesh extractor, and dropping the scene
	// list trips the builder. Inflating the declared length trips the parser.
	doc.Meshes[0].Primitives = append(doc.Meshes[0].Primitives, gltfPrimitive{
		Attributes: map[string]int{"POSITION": 0},
		Mode:       ptr(0),
	})
	doc.Nodes = []gltfNode{{Name: "holder", Mesh: ptr(0)}}
	data := buildGLB(t, doc, payload)
	binary.LittleEndian.PutUint32(data[8:], uint32(len(data)+16))
	im := newGLTFImporter(true)

	s, err := im.Import(data, "demo.glb")

	require.NoError(t, err)
	require.Len(t, s.Warnings, 3)
	assert.Contains(t, s.Warnings[0], "using actual length")
	assert.Contains(t, s.Warnings[1], "not a triangle list")
	assert.Contains(t, s.Warnings[2], "declares no scenes")
}

func TestImportFatalContainerError(t *testing.T) {
	im := newGLTFImporter(true)

	s, err := im.Import([]byte{1, 2, 3}, "broken.glb")

	assert.ErrorIs(t, err, ErrMalformedContainer)
	assert.Nil(t, s)
}

func TestImportDanglingMeshReference(t *testing.T) {
	doc := minimalDoc()
	doc.Nodes = []gltfNode{{Mesh: ptr(0)}}
	doc.Scenes = []gltfScene{{Nodes: []int{0}}}
	im := newGLTFImporter(true)

	s, err := im.Import(buildGLB(t, doc, nil), "")

	assert.ErrorIs(t, err, ErrDanglingReference)
	assert.Nil(t, s)
}

func TestImportRespectsGenerateNormalsFlag(t *testing.T) {
	doc, payload := sceneDoc(t)
	im := newGLTFImporter(false)

	s, err := im.Import(buildGLB(t, doc, payload), "")

	require.NoError(t, err)
	require.Len(t, s.Geometries, 1)
	assert.Empty(t, s.Geometries[0].Normals)
}

func TestExtractSceneName(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"", ""},
		{"model.glb", "model"},
		{"a/b/model.glb", "model"},
		{"model", "model"},
		{"dir/archive.tar.gz", "archive.tar"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gltfExtractSceneName(tt.source), "source %q", tt.source)
	}
}
