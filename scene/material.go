package scene

import (
	"image/color"
)

// Material is a flat surface-parameter record in the metallic-roughness model.
// Color channels follow the 0-255-per-channel convention of image/color; unit
// range factors from the source container are scaled on decode.
type Material struct {
	// Name identifies the source material descriptor.
	Name string

	// Color is the flat base color. Reset to white when Texture is set so the
	// texture is not tinted.
	Color color.RGBA

	// Emissive is the self-illumination color.
	Emissive color.RGBA

	// Metallic is the metalness factor (0 = dielectric, 1 = metal).
	Metallic float32

	// Roughness is the roughness factor (0 = smooth, 1 = rough).
	Roughness float32

	// Opacity is the blend opacity, meaningful when Transparent is set.
	Opacity float32

	// Transparent marks the material for alpha blending.
	Transparent bool

	// DoubleSided disables back-face culling for this material.
	DoubleSided bool

	// VertexColors marks that the geometry carries per-vertex colors which
	// should modulate the base color.
	VertexColors bool

	// Texture is the base color texture, or nil for flat-colored materials.
	Texture *Texture
}

// DefaultMaterial returns the material applied to primitives that reference no
// material descriptor: a mid-blue base color with low metalness and high
// roughness.
//
// Returns:
//   - Material: the default material record
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		Color:     color.RGBA{R: 0x21, G: 0x94, B: 0xCE, A: 0xFF},
		Emissive:  color.RGBA{A: 0xFF},
		Metallic:  0.1,
		Roughness: 0.9,
		Opacity:   1,
	}
}
