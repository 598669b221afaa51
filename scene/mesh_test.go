package scene

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshClone(t *testing.T) {
	geom := &Geometry{Name: "shared"}
	tex := &Texture{Name: "shared"}
	m := &Mesh{
		Name:     "original",
		Geometry: geom,
		Material: Material{Name: "mat", Texture: tex},
	}

	clone := m.Clone()

	require.NotSame(t, m, clone)
	assert.Equal(t, m.Name, clone.Name)
	assert.Same(t, geom, clone.Geometry)
	assert.Same(t, tex, clone.Material.Texture)

	clone.Material.Color = color.RGBA{R: 255, A: 255}
	assert.NotEqual(t, clone.Material.Color, m.Material.Color, "material records are per-instance")
}
