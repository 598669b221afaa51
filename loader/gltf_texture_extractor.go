package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/gltf-go/common"
	"github.com/Carmen-Shannon/gltf-go/scene"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/h2non/filetype"
)

// gltfTextureExtractorImpl is the implementation of the gltfTextureExtractor interface.
type gltfTextureExtractorImpl struct {
	parser gltfParser

	warnings []string
}

// gltfTextureExtractor defines the interface for resolving image and texture
// descriptors from a parsed document into scene records. Image and texture
// failures are recoverable: the affected entry resolves to nil and a
// diagnostic is recorded, leaving dependent materials on their flat color.
type gltfTextureExtractor interface {
	// ExtractImage resolves a single image descriptor: an embedded bufferView
	// blob, a data URI kept verbatim, or an external URI resolved against the
	// container's source directory.
	//
	// Parameters:
	//   - imageIndex: the index of the image descriptor
	//
	// Returns:
	//   - *scene.Image: the resolved image record
	//   - error: ErrInvalidImageSource if the descriptor has neither a bufferView nor a URI
	ExtractImage(imageIndex int) (*scene.Image, error)

	// ExtractImages resolves every image descriptor. Entries whose descriptor
	// is invalid are nil; fatal range errors abort.
	//
	// Returns:
	//   - []*scene.Image: one entry per descriptor, aligned by index
	//   - error: error if a fatal range violation occurs
	ExtractImages() ([]*scene.Image, error)

	// ExtractTextures resolves every texture descriptor against previously
	// resolved images, translating sampler wrap/filter codes. Entries whose
	// source image is absent, out of range, or unresolved are nil.
	//
	// Parameters:
	//   - images: the resolved images, aligned with the document's image descriptors
	//
	// Returns:
	//   - []*scene.Texture: one entry per descriptor, aligned by index
	ExtractTextures(images []*scene.Image) []*scene.Texture

	// Warnings returns the non-fatal diagnostics accumulated during extraction.
	//
	// Returns:
	//   - []string: the diagnostics in emission order
	Warnings() []string
}

var _ gltfTextureExtractor = &gltfTextureExtractorImpl{}

// newGLTFTextureExtractor creates a texture extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfTextureExtractor: the texture extractor
func newGLTFTextureExtractor(parser gltfParser) gltfTextureExtractor {
	return &gltfTextureExtractorImpl{parser: parser}
}

func (e *gltfTextureExtractorImpl) Warnings() []string {
	return e.warnings
}

func (e *gltfTextureExtractorImpl) ExtractImage(imageIndex int) (*scene.Image, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	if imageIndex < 0 || imageIndex >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d exceeds %d images: %w", imageIndex, len(doc.Images), ErrOutOfRange)
	}

	img := &doc.Images[imageIndex]

	result := &scene.Image{
		Name:     img.Name,
		MimeType: img.MimeType,
	}

	// Case 1: image embedded in a bufferView of the binary payload.
	if img.BufferView != nil {
		data, err := e.parser.ReadBufferView(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", imageIndex, err)
		}

		// The scene owns its image bytes independently of the container buffer.
		result.Data = make([]byte, len(data))
		copy(result.Data, data)

		if result.MimeType == "" {
			result.MimeType = sniffImageMimeType(result.Data)
		}
		return result, nil
	}

	// Case 2: data URI, kept verbatim for the collaborator to decode.
	if strings.HasPrefix(img.URI, "data:") {
		result.URI = img.URI
		if result.MimeType == "" {
			if header, found := strings.CutPrefix(img.URI[:strings.IndexByte(img.URI, ',')+1], "data:"); found {
				result.MimeType = strings.TrimSuffix(strings.TrimSuffix(header, ","), ";base64")
			}
		}
		return result, nil
	}

	// Case 3: external file reference, resolved against the source directory.
	if img.URI != "" {
		result.URI = filepath.Join(e.parser.BaseDir(), img.URI)
		return result, nil
	}

	return nil, fmt.Errorf("image %d has neither a bufferView nor a URI: %w", imageIndex, ErrInvalidImageSource)
}

func (e *gltfTextureExtractorImpl) ExtractImages() ([]*scene.Image, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	images := make([]*scene.Image, len(doc.Images))
	for i := range doc.Images {
		img, err := e.ExtractImage(i)
		if err != nil {
			if errors.Is(err, ErrInvalidImageSource) {
				e.warnf("%v", err)
				continue
			}
			return nil, err
		}
		images[i] = img
	}

	return images, nil
}

func (e *gltfTextureExtractorImpl) ExtractTextures(images []*scene.Image) []*scene.Texture {
	doc := e.parser.Document()
	if doc == nil {
		return nil
	}

	textures := make([]*scene.Texture, len(doc.Textures))
	for i := range doc.Textures {
		tex := &doc.Textures[i]

		if tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(images) {
			e.warnf("texture %d: %v", i, ErrInvalidTextureSource)
			continue
		}
		img := images[*tex.Source]
		if img == nil {
			e.warnf("texture %d: source image %d did not resolve: %v", i, *tex.Source, ErrInvalidTextureSource)
			continue
		}

		samplerData := common.DefaultSamplerStagingData()
		if tex.Sampler != nil {
			if *tex.Sampler >= 0 && *tex.Sampler < len(doc.Samplers) {
				samplerData = gltfSamplerToStagingData(&doc.Samplers[*tex.Sampler])
			} else {
				e.warnf("texture %d: sampler index %d exceeds %d samplers, using defaults", i, *tex.Sampler, len(doc.Samplers))
			}
		}

		textures[i] = &scene.Texture{
			Name:    tex.Name,
			Image:   img,
			Sampler: samplerData,
			// Images in this container format are stored top-down; the
			// collaborator must not flip on upload.
			FlipY: false,
		}
	}

	return textures
}

// warnf records a non-fatal diagnostic.
func (e *gltfTextureExtractorImpl) warnf(format string, args ...any) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

// sniffImageMimeType infers the MIME type of an encoded image blob that
// declared none. Returns an empty string when the content is unrecognized.
func sniffImageMimeType(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}

// gltfSamplerToStagingData converts a sampler descriptor into collaborator-ready
// SamplerStagingData. Unset fields and unrecognized codes fall back to the
// format defaults (linear filtering, repeat wrapping).
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
//
// Parameters:
//   - s: the sampler descriptor to convert
//
// Returns:
//   - common.SamplerStagingData: the converted sampler staging data
func gltfSamplerToStagingData(s *gltfSampler) common.SamplerStagingData {
	result := common.DefaultSamplerStagingData()

	if s.MagFilter != nil {
		switch *s.MagFilter {
		case gltfFilterNearest:
			result.MagFilter = wgpu.FilterModeNearest
		case gltfFilterLinear:
			result.MagFilter = wgpu.FilterModeLinear
		}
	}

	if s.MinFilter != nil {
		switch *s.MinFilter {
		case gltfFilterNearest, gltfFilterNearestMipmapNearest, gltfFilterNearestMipmapLinear:
			result.MinFilter = wgpu.FilterModeNearest
		case gltfFilterLinear, gltfFilterLinearMipmapNearest, gltfFilterLinearMipmapLinear:
			result.MinFilter = wgpu.FilterModeLinear
		}
		// The mipmap filter follows the minification filter variant.
		switch *s.MinFilter {
		case gltfFilterNearestMipmapNearest, gltfFilterLinearMipmapNearest:
			result.MipmapFilter = wgpu.MipmapFilterModeNearest
		case gltfFilterNearestMipmapLinear, gltfFilterLinearMipmapLinear:
			result.MipmapFilter = wgpu.MipmapFilterModeLinear
		case gltfFilterNearest, gltfFilterLinear:
			// Non-mipmapped filters: nearest is the conservative choice.
			result.MipmapFilter = wgpu.MipmapFilterModeNearest
		}
	}

	if s.WrapS != nil {
		result.AddressModeU = gltfWrapToAddressMode(*s.WrapS)
	}
	if s.WrapT != nil {
		result.AddressModeV = gltfWrapToAddressMode(*s.WrapT)
	}

	return result
}

// gltfWrapToAddressMode converts a wrap mode code to a wgpu AddressMode.
// Unrecognized codes keep the format default (repeat).
//
// Parameters:
//   - wrap: the wrap mode code
//
// Returns:
//   - wgpu.AddressMode: the corresponding wgpu address mode
func gltfWrapToAddressMode(wrap int) wgpu.AddressMode {
	switch wrap {
	case gltfWrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltfWrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	case gltfWrapRepeat:
		return wgpu.AddressModeRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
