// Package loader decodes binary glTF (GLB) containers into scene graphs. The
// public Loader front-end handles file access, caching, and batch decoding;
// the decode pipeline behind it is synchronous and allocation-light, borrowing
// typed views from the container's binary payload wherever the output does not
// need to own the bytes.
package loader

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/gltf-go/scene"
)

// LoaderBackendType identifies the container format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the binary glTF (GLB) loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	sceneCache map[string]*scene.Scene

	backend loaderBackend

	cache           bool
	workers         int
	generateNormals bool
	logger          *slog.Logger

	pool worker.DynamicWorkerPool
}

// Loader defines the public-facing interface for decoding and caching scenes
// from binary glTF containers. It abstracts the container format behind a
// generic backend and manages a cache of previously decoded scenes.
type Loader interface {
	// Load decodes a container file and caches the result by absolute path.
	// If the scene is already cached, the cached value is returned as-is;
	// callers that mutate a cached scene should Clone its root first.
	//
	// Parameters:
	//   - path: the file path to the container
	//
	// Returns:
	//   - *scene.Scene: the decoded scene
	//   - error: error if the format is unsupported or decoding fails
	Load(path string) (*scene.Scene, error)

	// LoadBytes decodes a container from an in-memory byte buffer and caches
	// the result by the given name. The name also seeds scene naming and
	// relative image URI resolution.
	//
	// Parameters:
	//   - name: the cache key and nominal source of the bytes
	//   - data: the complete container bytes
	//
	// Returns:
	//   - *scene.Scene: the decoded scene
	//   - error: error if decoding fails
	LoadBytes(name string, data []byte) (*scene.Scene, error)

	// LoadReader decodes a container from a reader stream and caches the
	// result by the given name.
	//
	// Parameters:
	//   - name: the cache key and nominal source of the stream
	//   - r: the reader providing container bytes
	//
	// Returns:
	//   - *scene.Scene: the decoded scene
	//   - error: error if reading or decoding fails
	LoadReader(name string, r io.Reader) (*scene.Scene, error)

	// LoadAll decodes many container files concurrently on the loader's worker
	// pool. Each individual decode is the same synchronous pipeline as Load.
	// The first error wins, but all submitted work drains before return.
	//
	// Parameters:
	//   - paths: the container file paths to decode
	//
	// Returns:
	//   - map[string]*scene.Scene: decoded scenes keyed by the given paths
	//   - error: the first error encountered, if any
	LoadAll(paths []string) (map[string]*scene.Scene, error)

	// Get retrieves a cached scene by key. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *scene.Scene: the cached scene or nil
	Get(name string) *scene.Scene

	// Scenes returns a copy of the full scene cache.
	//
	// Returns:
	//   - map[string]*scene.Scene: all cached scenes keyed by name
	Scenes() map[string]*scene.Scene

	// ClearCache empties the scene cache.
	ClearCache()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and
// options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:              sync.RWMutex{},
		sceneCache:      make(map[string]*scene.Scene),
		cache:           true,
		workers:         4,
		generateNormals: true,
		logger:          slog.Default(),
	}

	for _, option := range options {
		option(l)
	}

	// Initialize the backend and worker pool after options so WithGenerateNormals
	// and WithWorkers can override the defaults.
	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.generateNormals)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)

	return l
}

func (l *loader) Load(path string) (*scene.Scene, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}

	l.mu.RLock()
	if cached, ok := l.sceneCache[key]; ok && l.cache {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	s, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	l.logWarnings(s)

	if l.cache {
		l.mu.Lock()
		l.sceneCache[key] = s
		l.mu.Unlock()
	}

	return s, nil
}

func (l *loader) LoadBytes(name string, data []byte) (*scene.Scene, error) {
	l.mu.RLock()
	if cached, ok := l.sceneCache[name]; ok && l.cache {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	s, err := l.backend.LoadBytes(data, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", name, err)
	}
	l.logWarnings(s)

	if l.cache {
		l.mu.Lock()
		l.sceneCache[name] = s
		l.mu.Unlock()
	}

	return s, nil
}

func (l *loader) LoadReader(name string, r io.Reader) (*scene.Scene, error) {
	l.mu.RLock()
	if cached, ok := l.sceneCache[name]; ok && l.cache {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	s, err := l.backend.LoadReader(r, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	l.logWarnings(s)

	if l.cache {
		l.mu.Lock()
		l.sceneCache[name] = s
		l.mu.Unlock()
	}

	return s, nil
}

func (l *loader) LoadAll(paths []string) (map[string]*scene.Scene, error) {
	results := make(map[string]*scene.Scene, len(paths))

	var wg sync.WaitGroup
	var resultsMu sync.Mutex
	var firstErr error

	for i, path := range paths {
		wg.Add(1)
		p := path // capture for closure
		id := i
		l.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()

				s, err := l.Load(p)

				resultsMu.Lock()
				defer resultsMu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return nil, err
				}
				results[p] = s
				return s, nil
			},
		})
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (l *loader) Get(name string) *scene.Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sceneCache[name]
}

func (l *loader) Scenes() map[string]*scene.Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*scene.Scene, len(l.sceneCache))
	for k, v := range l.sceneCache {
		result[k] = v
	}
	return result
}

func (l *loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sceneCache = make(map[string]*scene.Scene)
}

// resolveBackend selects an appropriate loader backend based on the file
// extension. Only the binary container is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".glb":
		return l.backend, nil
	case ".gltf":
		// A .gltf JSON document references its payload through buffer URIs,
		// which the single-buffer restriction rejects.
		return nil, fmt.Errorf("%s documents reference external buffers: %w", ext, ErrUnsupportedBuffer)
	default:
		return nil, fmt.Errorf("unsupported container format: %q", ext)
	}
}

// logWarnings mirrors a decoded scene's diagnostics to the configured logger.
func (l *loader) logWarnings(s *scene.Scene) {
	for _, w := range s.Warnings {
		l.logger.Warn("loader: decode diagnostic", "scene", s.Name, "warning", w)
	}
}
