package loader

import (
	"io"

	"github.com/Carmen-Shannon/gltf-go/scene"
)

// loaderBackend defines the generic interface for decoding scene containers
// from files, byte buffers, or streams. Concrete implementations (e.g.,
// gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full scene decode from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *scene.Scene: the decoded scene
	//   - error: error if loading fails
	Load(path string) (*scene.Scene, error)

	// LoadBytes decodes a scene from an in-memory byte buffer. The source
	// string seeds scene naming and relative image URI resolution; it may be
	// empty.
	//
	// Parameters:
	//   - data: the complete container bytes
	//   - source: an optional source location for the bytes
	//
	// Returns:
	//   - *scene.Scene: the decoded scene
	//   - error: error if loading fails
	LoadBytes(data []byte, source string) (*scene.Scene, error)

	// LoadReader decodes a scene from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing container bytes
	//   - source: an optional source location for the bytes
	//
	// Returns:
	//   - *scene.Scene: the decoded scene
	//   - error: error if loading fails
	LoadReader(r io.Reader, source string) (*scene.Scene, error)
}
