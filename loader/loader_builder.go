package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/gltf-go/scene"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithCache is an option builder that enables or disables the scene cache.
// Caching is enabled by default.
//
// Parameters:
//   - enabled: whether decoded scenes are cached and reused
//
// Returns:
//   - LoaderBuilderOption: a function that applies the cache option to a loader
func WithCache(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.cache = enabled
	}
}

// WithWorkers is an option builder that sets the worker pool size used by
// LoadAll. Defaults to 4; values below 1 are ignored.
//
// Parameters:
//   - n: the number of concurrent decode workers
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithGenerateNormals is an option builder that controls whether primitives
// without a NORMAL attribute get smooth generated normals. Enabled by default.
//
// Parameters:
//   - enabled: whether missing normals are synthesized
//
// Returns:
//   - LoaderBuilderOption: a function that applies the normal generation option to a loader
func WithGenerateNormals(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.generateNormals = enabled
	}
}

// WithLogger is an option builder that sets the logger decode diagnostics are
// mirrored to. Defaults to slog.Default().
//
// Parameters:
//   - logger: the structured logger to use
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithScene is an option builder that pre-populates the scene cache.
//
// Parameters:
//   - key: the cache key for the scene
//   - s: the scene to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the scene option to a loader
func WithScene(key string, s *scene.Scene) LoaderBuilderOption {
	return func(l *loader) {
		l.sceneCache[key] = s
	}
}
