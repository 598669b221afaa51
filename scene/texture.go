package scene

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/Carmen-Shannon/gltf-go/common"
)

// Texture pairs an image source with sampler parameters for the rendering
// collaborator. Textures are immutable once decoded and shared by reference
// between material records.
type Texture struct {
	// Name identifies the source texture descriptor.
	Name string

	// Image is the resolved image source. Nil only for textures that failed to
	// resolve, in which case dependent materials keep their flat color.
	Image *Image

	// Sampler holds the wrap and filter settings translated for the
	// collaborator.
	Sampler common.SamplerStagingData

	// FlipY reports whether the collaborator should flip the image vertically
	// on upload. Always false for this container format, which stores images
	// top-down already.
	FlipY bool
}

// Image is a decoded image record: either an in-memory encoded blob with a
// MIME type, or a URI. Data URIs are kept verbatim; external URIs are resolved
// against the container's source location during decoding.
type Image struct {
	// Name identifies the source image descriptor.
	Name string

	// URI is a data URI (kept verbatim) or a resolved external file path.
	// Empty for images embedded in the binary payload.
	URI string

	// Data holds the raw encoded bytes (PNG/JPEG) for embedded images.
	Data []byte

	// MimeType is the declared or sniffed image format, e.g. "image/png".
	// May be empty when the source declared none and sniffing failed.
	MimeType string
}

// IsDataURI reports whether the image's URI is an inline data URI.
func (im *Image) IsDataURI() bool {
	return strings.HasPrefix(im.URI, "data:")
}

// Decode renders the image source into RGBA pixels for callers that upload
// pixel data themselves. Embedded blobs and data URIs are decoded in memory;
// external URIs are read from disk. Supports PNG and JPEG.
//
// Returns:
//   - *common.TextureStagingData: RGBA pixels with dimensions, 4 bytes per pixel, row-major
//   - error: error if the image has no source or decoding fails
func (im *Image) Decode() (*common.TextureStagingData, error) {
	if im == nil {
		return nil, fmt.Errorf("image is nil")
	}

	var img image.Image
	var err error

	switch {
	case len(im.Data) > 0:
		img, _, err = image.Decode(bytes.NewReader(im.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	case im.IsDataURI():
		data, _, dErr := decodeDataURI(im.URI)
		if dErr != nil {
			return nil, fmt.Errorf("failed to decode image data URI: %w", dErr)
		}
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URI image: %w", err)
		}
	case im.URI != "":
		file, fErr := os.Open(im.URI)
		if fErr != nil {
			return nil, fmt.Errorf("failed to open image file %s: %w", im.URI, fErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image file %s: %w", im.URI, err)
		}
	default:
		return nil, fmt.Errorf("image has neither data nor URI")
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	return &common.TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// decodeDataURI decodes a base64 data URI into raw bytes and extracts the MIME type.
// Format: data:[<mediatype>][;base64],<data>
func decodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", fmt.Errorf("not a data URI")
	}

	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, "", fmt.Errorf("malformed data URI: no comma found")
	}

	header := uri[5:commaIdx]
	encoded := uri[commaIdx+1:]

	var mimeType string
	if strings.Contains(header, ";base64") {
		mimeType = strings.TrimSuffix(header, ";base64")
	} else {
		return nil, "", fmt.Errorf("unsupported data URI encoding: %s", header)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64: %w", err)
	}

	return data, mimeType, nil
}
