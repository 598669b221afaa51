package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestVertexCount(t *testing.T) {
	g := &Geometry{Positions: make([]float32, 12)}

	assert.Equal(t, 4, g.VertexCount())
}

func TestTriangleCountIndexed(t *testing.T) {
	g := &Geometry{
		Positions: make([]float32, 12), // 4 vertices
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}

	assert.Equal(t, 2, g.TriangleCount())
}

func TestTriangleCountUnindexed(t *testing.T) {
	g := &Geometry{Positions: make([]float32, 9)}

	assert.Equal(t, 1, g.TriangleCount())
}

func TestComputeBounds(t *testing.T) {
	g := &Geometry{Positions: []float32{
		-1, 0, 2,
		3, -4, 0,
		0, 5, -2,
	}}

	g.ComputeBounds()

	assert.Equal(t, mgl32.Vec3{-1, -4, -2}, g.Bounds.Min)
	assert.Equal(t, mgl32.Vec3{3, 5, 2}, g.Bounds.Max)
}

func TestComputeBoundsEmpty(t *testing.T) {
	g := &Geometry{Bounds: Bounds{Max: mgl32.Vec3{9, 9, 9}}}

	g.ComputeBounds()

	assert.Equal(t, Bounds{}, g.Bounds, "stale bounds are reset")
}

func TestBoundsUnion(t *testing.T) {
	a := Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	b := Bounds{Min: mgl32.Vec3{-1, 0.5, 0}, Max: mgl32.Vec3{0.5, 2, 3}}

	u := a.Union(b)

	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, u.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, u.Max)
	assert.Equal(t, u, b.Union(a), "union is symmetric")
}
