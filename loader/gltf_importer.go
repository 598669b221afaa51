package loader

import (
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/gltf-go/scene"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	generateNormals bool
}

// gltfImporter defines the interface for decoding a complete binary container
// into a scene. It runs the pipeline stages strictly in order: container
// parsing, image and texture resolution, mesh extraction, then hierarchy
// assembly. Each stage consumes only the outputs of earlier stages.
type gltfImporter interface {
	// Import decodes the container bytes and returns the assembled scene. The
	// source string seeds the scene name and resolves relative image URIs;
	// it may be empty. On fatal errors no partial scene is returned.
	//
	// Parameters:
	//   - data: the complete container bytes
	//   - source: an optional source location for the bytes
	//
	// Returns:
	//   - *scene.Scene: the decoded scene
	//   - error: error if any fatal pipeline stage fails
	Import(data []byte, source string) (*scene.Scene, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates an importer.
//
// Parameters:
//   - generateNormals: whether to synthesize normals for primitives that lack them
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(generateNormals bool) gltfImporter {
	return &gltfImporterImpl{generateNormals: generateNormals}
}

func (im *gltfImporterImpl) Import(data []byte, source string) (*scene.Scene, error) {
	parser := newGLTFParser()
	if err := parser.ParseBytes(data, source); err != nil {
		return nil, err
	}

	textureExtractor := newGLTFTextureExtractor(parser)
	images, err := textureExtractor.ExtractImages()
	if err != nil {
		return nil, err
	}
	textures := textureExtractor.ExtractTextures(images)

	meshExtractor := newGLTFMeshExtractor(parser, textures, im.generateNormals)
	templates, err := meshExtractor.ExtractMeshes()
	if err != nil {
		return nil, err
	}

	builder := newGLTFSceneBuilder(parser, templates)
	root, err := builder.BuildScene(gltfExtractSceneName(source))
	if err != nil {
		return nil, err
	}

	result := &scene.Scene{
		Name:       root.Name,
		Root:       root,
		Geometries: meshExtractor.Geometries(),
		Textures:   textures,
		Images:     images,
	}
	result.Warnings = append(result.Warnings, parser.Warnings()...)
	result.Warnings = append(result.Warnings, textureExtractor.Warnings()...)
	result.Warnings = append(result.Warnings, meshExtractor.Warnings()...)
	result.Warnings = append(result.Warnings, builder.Warnings()...)

	return result, nil
}

// gltfExtractSceneName derives a scene name from a source location by
// stripping the directory and extension. Returns an empty string for an empty
// source, letting the builder fall back to its default.
//
// Parameters:
//   - source: the source location, may be empty
//
// Returns:
//   - string: the derived name
func gltfExtractSceneName(source string) string {
	if source == "" {
		return ""
	}
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
