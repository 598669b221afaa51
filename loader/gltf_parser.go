package loader

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/gltf-go/common"
)

// Out-of-scope input shapes rejected by the parser. These are restrictions of
// this decoder, not container corruption, so they carry their own sentinels.
var (
	errNoDocument        = errors.New("no document loaded")
	errSparseAccessor    = errors.New("sparse accessors not supported")
	errStridedBufferView = errors.New("strided buffer views not supported")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir     string
	source      string
	document    *gltfDocument
	binaryChunk []byte

	// buffers maps buffer descriptor indices to their bound byte source.
	// Only index 0 is ever populated, by the container's binary payload chunk.
	buffers [][]byte

	warnings []string
}

// gltfParser defines the interface for parsing a binary glTF container and
// resolving its buffer/bufferView/accessor indirection into typed data.
// This is internal to the loader package.
type gltfParser interface {
	// Parse reads and parses a GLB container from the given path.
	//
	// Parameters:
	//   - path: path to the GLB file
	//
	// Returns:
	//   - error: error if parsing fails
	Parse(path string) error

	// ParseBytes parses a GLB container from an in-memory byte buffer.
	// The source string seeds scene naming and relative image URI resolution;
	// it may be empty.
	//
	// Parameters:
	//   - data: the complete container bytes
	//   - source: an optional source location for the bytes
	//
	// Returns:
	//   - error: error if parsing fails
	ParseBytes(data []byte, source string) error

	// Document returns the parsed metadata document.
	// Returns nil if Parse has not been called successfully.
	//
	// Returns:
	//   - *gltfDocument: the parsed document or nil
	Document() *gltfDocument

	// BaseDir returns the directory containing the parsed container.
	// Used for resolving relative URIs to external images.
	//
	// Returns:
	//   - string: the base directory path
	BaseDir() string

	// Source returns the source location the container was parsed from, or
	// the name given to ParseBytes.
	//
	// Returns:
	//   - string: the source location, may be empty
	Source() string

	// Warnings returns the non-fatal diagnostics accumulated while parsing.
	//
	// Returns:
	//   - []string: the diagnostics in emission order
	Warnings() []string

	// ReadBufferView resolves a bufferView index to its byte range within the
	// bound buffer. The returned slice borrows the binary payload; callers
	// must not mutate it.
	//
	// Parameters:
	//   - viewIndex: the index of the bufferView
	//
	// Returns:
	//   - []byte: the view's bytes
	//   - error: ErrOutOfRange if the index or range is invalid
	ReadBufferView(viewIndex int) ([]byte, error)

	// ReadAccessorBytes resolves an accessor to its tightly packed byte range
	// within its bufferView. The returned slice borrows the binary payload.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []byte: count * componentCount * componentWidth bytes
	//   - error: error if the accessor is unsupported or out of range
	ReadAccessorBytes(accessorIndex int) ([]byte, error)

	// ReadFloatAccessor reinterprets a float32 accessor as a flat float
	// sequence of count * componentCount values, without copying.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []float32: the typed view, borrowing the binary payload
	//   - error: error if the accessor is not float32 or out of range
	ReadFloatAccessor(accessorIndex int) ([]float32, error)

	// ReadIndicesAccessor reads a SCALAR accessor as index data, widening
	// uint8 and uint16 components to uint32. The returned slice is owned by
	// the caller.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the index data
	//   - error: error if reading fails
	ReadIndicesAccessor(accessorIndex int) ([]uint32, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) BaseDir() string {
	return p.baseDir
}

func (p *gltfParserImpl) Source() string {
	return p.source
}

func (p *gltfParserImpl) Warnings() []string {
	return p.warnings
}

func (p *gltfParserImpl) Parse(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	return p.ParseBytes(data, path)
}

func (p *gltfParserImpl) ParseBytes(data []byte, source string) error {
	p.source = source
	if source != "" {
		p.baseDir = filepath.Dir(source)
	}

	return p.parseGLB(data)
}

// parseGLB parses the binary container: a 12-byte header followed by
// length-prefixed chunks. The metadata (JSON) chunk is mandatory; at most one
// binary payload chunk is expected; unrecognized chunk types are skipped using
// their declared length.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("container is %d bytes, shorter than the 12-byte header: %w", len(data), ErrMalformedContainer)
	}

	var header gltfGLBHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read container header: %w", ErrMalformedContainer)
	}

	if header.Magic != gltfGLBMagic {
		return fmt.Errorf("magic 0x%08X is not 0x%08X: %w", header.Magic, uint32(gltfGLBMagic), ErrMalformedContainer)
	}
	if header.Version != gltfGLBVersion {
		return fmt.Errorf("container version %d is not %d: %w", header.Version, gltfGLBVersion, ErrMalformedContainer)
	}

	// A declared length that disagrees with the byte count actually present is
	// a non-fatal inconsistency: proceed with the actual length.
	length := int(header.Length)
	if length != len(data) {
		p.warnf("container declares %d bytes but %d are present, using actual length", length, len(data))
		length = len(data)
	}

	var jsonChunk, binChunk []byte
	sawBin := false

	offset := 12
	for offset < length {
		if offset+8 > length {
			return fmt.Errorf("truncated chunk header at offset %d: %w", offset, ErrMalformedContainer)
		}

		chunkLen := int(binary.LittleEndian.Uint32(data[offset:]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4:])
		offset += 8

		if offset+chunkLen > length {
			return fmt.Errorf("chunk 0x%08X at offset %d: declared length %d overruns container: %w", chunkType, offset-8, chunkLen, ErrMalformedContainer)
		}

		switch chunkType {
		case gltfGLBChunkJSON:
			if jsonChunk != nil {
				p.warnf("multiple metadata chunks present, keeping the first")
			} else {
				jsonChunk = data[offset : offset+chunkLen]
			}
		case gltfGLBChunkBIN:
			if sawBin {
				p.warnf("multiple binary chunks present, keeping the first")
			} else {
				binChunk = data[offset : offset+chunkLen]
				sawBin = true
			}
		default:
			p.warnf("skipping unrecognized chunk type 0x%08X (%d bytes)", chunkType, chunkLen)
		}

		offset += chunkLen
	}

	if jsonChunk == nil {
		return fmt.Errorf("missing metadata chunk: %w", ErrMalformedContainer)
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return fmt.Errorf("metadata chunk is not valid JSON (%v): %w", err, ErrMalformedContainer)
	}

	if doc.Asset.Version != "" && !strings.HasPrefix(doc.Asset.Version, "2.") {
		return fmt.Errorf("asset version %q is not 2.x: %w", doc.Asset.Version, ErrMalformedContainer)
	}

	p.binaryChunk = binChunk

	if err := p.bindBuffers(&doc); err != nil {
		return err
	}

	p.document = &doc
	return nil
}

// bindBuffers maps buffer descriptor indices to byte sources. Only the first
// buffer may bind, and only to the binary payload chunk; everything else is an
// unsupported buffer shape.
func (p *gltfParserImpl) bindBuffers(doc *gltfDocument) error {
	p.buffers = make([][]byte, len(doc.Buffers))

	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		if i != 0 {
			return fmt.Errorf("buffer %d: multi-buffer documents: %w", i, ErrUnsupportedBuffer)
		}
		if buf.URI != "" {
			return fmt.Errorf("buffer %d: URI-referenced buffers: %w", i, ErrUnsupportedBuffer)
		}
		if p.binaryChunk == nil {
			return fmt.Errorf("buffer %d: no binary payload chunk to bind: %w", i, ErrUnsupportedBuffer)
		}

		p.buffers[i] = p.binaryChunk
	}

	return nil
}

// warnf records a non-fatal diagnostic.
func (p *gltfParserImpl) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

// --- Accessor Data Reading ---

func (p *gltfParserImpl) ReadBufferView(viewIndex int) ([]byte, error) {
	if p.document == nil {
		return nil, errNoDocument
	}
	if viewIndex < 0 || viewIndex >= len(p.document.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d exceeds %d views: %w", viewIndex, len(p.document.BufferViews), ErrOutOfRange)
	}

	bv := &p.document.BufferViews[viewIndex]
	if bv.Buffer < 0 || bv.Buffer >= len(p.buffers) {
		return nil, fmt.Errorf("bufferView %d: buffer index %d exceeds %d buffers: %w", viewIndex, bv.Buffer, len(p.buffers), ErrOutOfRange)
	}

	buf := p.buffers[bv.Buffer]
	// offset+length can overflow for hostile descriptor values; compare by
	// subtraction instead of summing.
	if bv.ByteOffset < 0 || bv.ByteLength < 0 || bv.ByteOffset > len(buf) || bv.ByteLength > len(buf)-bv.ByteOffset {
		return nil, fmt.Errorf("bufferView %d: %d bytes at offset %d exceed buffer length %d: %w", viewIndex, bv.ByteLength, bv.ByteOffset, len(buf), ErrOutOfRange)
	}

	return buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
}

func (p *gltfParserImpl) ReadAccessorBytes(accessorIndex int) ([]byte, error) {
	if p.document == nil {
		return nil, errNoDocument
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d exceeds %d accessors: %w", accessorIndex, len(p.document.Accessors), ErrOutOfRange)
	}

	acc := &p.document.Accessors[accessorIndex]

	if acc.Sparse != nil {
		return nil, fmt.Errorf("accessor %d: %w", accessorIndex, errSparseAccessor)
	}
	if acc.BufferView == nil {
		return nil, fmt.Errorf("accessor %d has no bufferView", accessorIndex)
	}

	componentWidth, err := gltfComponentTypeSize(acc.ComponentType)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}
	componentCount, err := gltfElementTypeComponentCount(acc.Type)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}

	view, err := p.ReadBufferView(*acc.BufferView)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}

	elementSize := componentWidth * componentCount

	// Tight packing only. A stride equal to the element size is tight in
	// disguise; anything else is interleaved data this decoder does not read.
	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.ByteStride != nil && *bv.ByteStride != elementSize {
		return nil, fmt.Errorf("accessor %d: stride %d with element size %d: %w", accessorIndex, *bv.ByteStride, elementSize, errStridedBufferView)
	}

	// count*elementSize can overflow for hostile descriptor values; bound the
	// count by division instead of comparing the product.
	if acc.ByteOffset < 0 || acc.Count < 0 || acc.ByteOffset > len(view) ||
		acc.Count > (len(view)-acc.ByteOffset)/elementSize {
		return nil, fmt.Errorf("accessor %d: %d elements of %d bytes at offset %d exceed view length %d: %w", accessorIndex, acc.Count, elementSize, acc.ByteOffset, len(view), ErrOutOfRange)
	}

	return view[acc.ByteOffset : acc.ByteOffset+acc.Count*elementSize], nil
}

func (p *gltfParserImpl) ReadFloatAccessor(accessorIndex int) ([]float32, error) {
	if p.document == nil {
		return nil, errNoDocument
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d exceeds %d accessors: %w", accessorIndex, len(p.document.Accessors), ErrOutOfRange)
	}

	acc := &p.document.Accessors[accessorIndex]
	if acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor %d: component type %d where float32 is required", accessorIndex, acc.ComponentType)
	}

	raw, err := p.ReadAccessorBytes(accessorIndex)
	if err != nil {
		return nil, err
	}

	floats, ok := common.BytesToSlice[float32](raw)
	if !ok {
		return nil, fmt.Errorf("accessor %d: %d bytes cannot be viewed as float32 elements", accessorIndex, len(raw))
	}
	return floats, nil
}

func (p *gltfParserImpl) ReadIndicesAccessor(accessorIndex int) ([]uint32, error) {
	if p.document == nil {
		return nil, errNoDocument
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d exceeds %d accessors: %w", accessorIndex, len(p.document.Accessors), ErrOutOfRange)
	}

	acc := &p.document.Accessors[accessorIndex]
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor %d is not SCALAR: %q", accessorIndex, acc.Type)
	}

	raw, err := p.ReadAccessorBytes(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([]uint32, acc.Count)

	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i, v := range raw {
			result[i] = uint32(v)
		}
	case gltfComponentTypeUnsignedShort:
		shorts, ok := common.BytesToSlice[uint16](raw)
		if !ok {
			return nil, fmt.Errorf("index accessor %d: %d bytes cannot be viewed as uint16 elements", accessorIndex, len(raw))
		}
		for i, v := range shorts {
			result[i] = uint32(v)
		}
	case gltfComponentTypeUnsignedInt:
		ints, ok := common.BytesToSlice[uint32](raw)
		if !ok {
			return nil, fmt.Errorf("index accessor %d: %d bytes cannot be viewed as uint32 elements", accessorIndex, len(raw))
		}
		copy(result, ints)
	default:
		return nil, fmt.Errorf("index accessor %d: component type %d: %w", accessorIndex, acc.ComponentType, ErrUnsupportedComponentType)
	}

	return result, nil
}

// --- Helper Functions ---

// gltfComponentTypeSize maps a component type code to its byte width.
func gltfComponentTypeSize(componentType int) (int, error) {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1, nil
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2, nil
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4, nil
	default:
		return 0, fmt.Errorf("component type code %d: %w", componentType, ErrUnsupportedComponentType)
	}
}

// gltfElementTypeComponentCount maps an element type tag to its component count.
func gltfElementTypeComponentCount(elementType string) (int, error) {
	switch elementType {
	case gltfAccessorTypeScalar:
		return 1, nil
	case gltfAccessorTypeVec2:
		return 2, nil
	case gltfAccessorTypeVec3:
		return 3, nil
	case gltfAccessorTypeVec4:
		return 4, nil
	case gltfAccessorTypeMat2:
		return 4, nil
	case gltfAccessorTypeMat3:
		return 9, nil
	case gltfAccessorTypeMat4:
		return 16, nil
	default:
		return 0, fmt.Errorf("element type tag %q: %w", elementType, ErrUnsupportedElementType)
	}
}
