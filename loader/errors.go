package loader

import "errors"

// Error kinds surfaced by the decoding pipeline. Call sites wrap these with
// the offending index or offset via fmt.Errorf and %w, so callers match the
// kind with errors.Is and read the location from the message. Fatal kinds
// abort the decode with no partial scene returned.
var (
	// ErrMalformedContainer reports a bad magic tag, an unsupported container
	// version, chunk framing that overruns the declared length, or a missing
	// or unparseable metadata chunk. Fatal.
	ErrMalformedContainer = errors.New("malformed container")

	// ErrUnsupportedBuffer reports a buffer descriptor that cannot bind to the
	// single binary payload: any buffer beyond the first, a URI-referenced
	// buffer, or a first buffer with no payload chunk present. Fatal.
	ErrUnsupportedBuffer = errors.New("unsupported buffer")

	// ErrOutOfRange reports a bufferView or accessor whose byte range exceeds
	// its source, or an index referencing past the end of a descriptor array.
	// Fatal.
	ErrOutOfRange = errors.New("range exceeds source")

	// ErrUnsupportedComponentType reports an accessor component type code
	// outside the fixed table (5120-5126 less 5124). Fatal.
	ErrUnsupportedComponentType = errors.New("unsupported component type")

	// ErrUnsupportedElementType reports an accessor element type tag outside
	// SCALAR/VEC2/VEC3/VEC4/MAT2/MAT3/MAT4. Fatal.
	ErrUnsupportedElementType = errors.New("unsupported element type")

	// ErrInvalidImageSource reports an image descriptor carrying neither a
	// bufferView nor a URI. Recoverable: the image resolves to nothing and
	// dependent materials keep their flat color.
	ErrInvalidImageSource = errors.New("invalid image source")

	// ErrInvalidTextureSource reports a texture descriptor whose source image
	// index is absent or out of range. Recoverable: the texture resolves to
	// nothing.
	ErrInvalidTextureSource = errors.New("invalid texture source")

	// ErrDanglingReference reports a child or scene node index outside the
	// node array. Treated as structural corruption. Fatal.
	ErrDanglingReference = errors.New("dangling node reference")
)
