package loader

import (
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/gltf-go/scene"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// imageDoc builds a document with one buffer and one view spanning the whole
// payload, ready for image descriptors to reference.
func imageDoc(payload []byte) *gltfDocument {
	doc := minimalDoc()
	doc.Buffers = []gltfBuffer{{ByteLength: len(payload)}}
	doc.BufferViews = []gltfBufferView{{Buffer: 0, ByteLength: len(payload)}}
	return doc
}

func TestExtractImageFromBufferView(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	doc := imageDoc(payload)
	doc.Images = []gltfImage{{Name: "embedded", BufferView: ptr(0), MimeType: "image/png"}}
	e := newGLTFTextureExtractor(parseFixture(t, doc, payload))

	img, err := e.ExtractImage(0)

	require.NoError(t, err)
	assert.Equal(t, "embedded", img.Name)
	assert.Equal(t, payload, img.Data)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Empty(t, img.URI)
}

func TestExtractImageSniffsMimeType(t *testing.T) {
	doc := imageDoc(pngSignature)
	doc.Images = []gltfImage{{BufferView: ptr(0)}}
	e := newGLTFTextureExtractor(parseFixture(t, doc, pngSignature))

	img, err := e.ExtractImage(0)

	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
}

func TestExtractImageUnknownBlobKeepsEmptyMime(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	doc := imageDoc(payload)
	doc.Images = []gltfImage{{BufferView: ptr(0)}}
	e := newGLTFTextureExtractor(parseFixture(t, doc, payload))

	img, err := e.ExtractImage(0)

	require.NoError(t, err)
	assert.Empty(t, img.MimeType)
}

func TestExtractImageDataURIKeptVerbatim(t *testing.T) {
	uri := "data:image/png;base64,iVBORw0KGgo="
	doc := minimalDoc()
	doc.Images = []gltfImage{{URI: uri}}
	e := newGLTFTextureExtractor(parseFixture(t, doc, nil))

	img, err := e.ExtractImage(0)

	require.NoError(t, err)
	assert.Equal(t, uri, img.URI)
	assert.Equal(t, "image/png", img.MimeType)
	assert.True(t, img.IsDataURI())
	assert.Empty(t, img.Data)
}

func TestExtractImageExternalURIResolvedAgainstSource(t *testing.T) {
	doc := minimalDoc()
	doc.Images = []gltfImage{{URI: "textures/wood.png"}}
	p := newGLTFParser()
	require.NoError(t, p.ParseBytes(buildGLB(t, doc, nil), filepath.Join("models", "scene.glb")))
	e := newGLTFTextureExtractor(p)

	img, err := e.ExtractImage(0)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("models", "textures", "wood.png"), img.URI)
	assert.False(t, img.IsDataURI())
}

func TestExtractImageWithoutSource(t *testing.T) {
	doc := minimalDoc()
	doc.Images = []gltfImage{{Name: "empty"}}
	e := newGLTFTextureExtractor(parseFixture(t, doc, nil))

	_, err := e.ExtractImage(0)

	assert.ErrorIs(t, err, ErrInvalidImageSource)
}

func TestExtractImagesRecoversInvalidSource(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	doc := imageDoc(payload)
	doc.Images = []gltfImage{
		{},
		{BufferView: ptr(0)},
	}
	e := newGLTFTextureExtractor(parseFixture(t, doc, payload))

	images, err := e.ExtractImages()

	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Nil(t, images[0])
	require.NotNil(t, images[1])
	assert.Equal(t, payload, images[1].Data)
	assert.Len(t, e.Warnings(), 1)
}

func TestExtractImagesFatalOnRangeError(t *testing.T) {
	doc := minimalDoc()
	doc.Images = []gltfImage{{BufferView: ptr(5)}}
	e := newGLTFTextureExtractor(parseFixture(t, doc, nil))

	_, err := e.ExtractImages()

	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestExtractTextures(t *testing.T) {
	doc := minimalDoc()
	doc.Images = []gltfImage{{URI: "data:image/png;base64,AAAA"}}
	doc.Samplers = []gltfSampler{{
		MagFilter: ptr(gltfFilterNearest),
		MinFilter: ptr(gltfFilterLinearMipmapLinear),
		WrapS:     ptr(gltfWrapClampToEdge),
		WrapT:     ptr(gltfWrapMirroredRepeat),
	}}
	doc.Textures = []gltfTexture{{Name: "checker", Source: ptr(0), Sampler: ptr(0)}}
	e := newGLTFTextureExtractor(parseFixture(t, doc, nil))

	images, err := e.ExtractImages()
	require.NoError(t, err)
	textures := e.ExtractTextures(images)

	require.Len(t, textures, 1)
	tex := textures[0]
	require.NotNil(t, tex)
	assert.Equal(t, "checker", tex.Name)
	assert.Same(t, images[0], tex.Image)
	assert.False(t, tex.FlipY)
	assert.Equal(t, wgpu.AddressModeClampToEdge, tex.Sampler.AddressModeU)
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, tex.Sampler.AddressModeV)
	assert.Equal(t, wgpu.FilterModeNearest, tex.Sampler.MagFilter)
	assert.Equal(t, wgpu.FilterModeLinear, tex.Sampler.MinFilter)
	assert.Equal(t, wgpu.MipmapFilterModeLinear, tex.Sampler.MipmapFilter)
	assert.Empty(t, e.Warnings())
}

func TestExtractTexturesMissingSource(t *testing.T) {
	doc := minimalDoc()
	doc.Textures = []gltfTexture{{Name: "unbound"}}
	e := newGLTFTextureExtractor(parseFixture(t, doc, nil))

	textures := e.ExtractTextures(nil)

	require.Len(t, textures, 1)
	assert.Nil(t, textures[0])
	require.Len(t, e.Warnings(), 1)
	assert.Contains(t, e.Warnings()[0], "texture 0")
}

func TestExtractTexturesOutOfRangeSource(t *testing.T) {
	doc := minimalDoc()
	doc.Textures = []gltfTexture{{Source: ptr(7)}}
	e := newGLTFTextureExtractor(parseFixture(t, doc, nil))

	textures := e.ExtractTextures([]*scene.Image{{Name: "only"}})

	assert.Nil(t, textures[0])
	assert.NotEmpty(t, e.Warnings())
}

func TestExtractTexturesUnresolvedImage(t *testing.T) {
	doc := minimalDoc()
	doc.Textures = []gltfTexture{{Source: ptr(0)}}
	e := newGLTFTextureExtractor(parseFixture(t, doc, nil))

	textures := e.ExtractTextures([]*scene.Image{nil})

	assert.Nil(t, textures[0])
	assert.NotEmpty(t, e.Warnings())
}

func TestExtractTexturesSamplerOutOfRangeUsesDefaults(t *testing.T) {
	doc := minimalDoc()
	doc.Images = []gltfImage{{URI: "data:image/png;base64,AAAA"}}
	doc.Textures = []gltfTexture{{Source: ptr(0), Sampler: ptr(3)}}
	e := newGLTFTextureExtractor(parseFixture(t, doc, nil))

	images, err := e.ExtractImages()
	require.NoError(t, err)
	textures := e.ExtractTextures(images)

	require.NotNil(t, textures[0])
	assert.Equal(t, wgpu.AddressModeRepeat, textures[0].Sampler.AddressModeU)
	assert.Equal(t, wgpu.FilterModeLinear, textures[0].Sampler.MagFilter)
	assert.NotEmpty(t, e.Warnings())
}

func TestSamplerToStagingData(t *testing.T) {
	tests := []struct {
		name       string
		sampler    gltfSampler
		wantMag    wgpu.FilterMode
		wantMin    wgpu.FilterMode
		wantMipmap wgpu.MipmapFilterMode
	}{
		{
			name:       "unset fields keep defaults",
			sampler:    gltfSampler{},
			wantMag:    wgpu.FilterModeLinear,
			wantMin:    wgpu.FilterModeLinear,
			wantMipmap: wgpu.MipmapFilterModeLinear,
		},
		{
			name:       "nearest",
			sampler:    gltfSampler{MagFilter: ptr(gltfFilterNearest), MinFilter: ptr(gltfFilterNearest)},
			wantMag:    wgpu.FilterModeNearest,
			wantMin:    wgpu.FilterModeNearest,
			wantMipmap: wgpu.MipmapFilterModeNearest,
		},
		{
			name:       "linear min gets conservative mipmap",
			sampler:    gltfSampler{MinFilter: ptr(gltfFilterLinear)},
			wantMag:    wgpu.FilterModeLinear,
			wantMin:    wgpu.FilterModeLinear,
			wantMipmap: wgpu.MipmapFilterModeNearest,
		},
		{
			name:       "nearest mipmap nearest",
			sampler:    gltfSampler{MinFilter: ptr(gltfFilterNearestMipmapNearest)},
			wantMag:    wgpu.FilterModeLinear,
			wantMin:    wgpu.FilterModeNearest,
			wantMipmap: wgpu.MipmapFilterModeNearest,
		},
		{
			name:       "linear mipmap nearest",
			sampler:    gltfSampler{MinFilter: ptr(gltfFilterLinearMipmapNearest)},
			wantMag:    wgpu.FilterModeLinear,
			wantMin:    wgpu.FilterModeLinear,
			wantMipmap: wgpu.MipmapFilterModeNearest,
		},
		{
			name:       "nearest mipmap linear",
			sampler:    gltfSampler{MinFilter: ptr(gltfFilterNearestMipmapLinear)},
			wantMag:    wgpu.FilterModeLinear,
			wantMin:    wgpu.FilterModeNearest,
			wantMipmap: wgpu.MipmapFilterModeLinear,
		},
		{
			name:       "linear mipmap linear",
			sampler:    gltfSampler{MinFilter: ptr(gltfFilterLinearMipmapLinear)},
			wantMag:    wgpu.FilterModeLinear,
			wantMin:    wgpu.FilterModeLinear,
			wantMipmap: wgpu.MipmapFilterModeLinear,
		},
		{
			name:       "unrecognized codes keep defaults",
			sampler:    gltfSampler{MagFilter: ptr(1234), MinFilter: ptr(1234)},
			wantMag:    wgpu.FilterModeLinear,
			wantMin:    wgpu.FilterModeLinear,
			wantMipmap: wgpu.MipmapFilterModeLinear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gltfSamplerToStagingData(&tt.sampler)
			assert.Equal(t, tt.wantMag, got.MagFilter)
			assert.Equal(t, tt.wantMin, got.MinFilter)
			assert.Equal(t, tt.wantMipmap, got.MipmapFilter)
		})
	}
}

func TestWrapToAddressMode(t *testing.T) {
	assert.Equal(t, wgpu.AddressModeClampToEdge, gltfWrapToAddressMode(gltfWrapClampToEdge))
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, gltfWrapToAddressMode(gltfWrapMirroredRepeat))
	assert.Equal(t, wgpu.AddressModeRepeat, gltfWrapToAddressMode(gltfWrapRepeat))
	assert.Equal(t, wgpu.AddressModeRepeat, gltfWrapToAddressMode(9999))
}
