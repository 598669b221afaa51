package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/gltf-go/scene"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for binary glTF (GLB)
// containers. It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new GLB loader backend.
//
// Parameters:
//   - generateNormals: whether the importer synthesizes missing normals
//
// Returns:
//   - gltfLoaderBackend: the loader backend for GLB containers
func newGLTFLoaderBackend(generateNormals bool) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(generateNormals),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return b.importer.Import(data, path)
}

func (b *gltfLoaderBackendImpl) LoadBytes(data []byte, source string) (*scene.Scene, error) {
	return b.importer.Import(data, source)
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader, source string) (*scene.Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}
	return b.importer.Import(data, source)
}
