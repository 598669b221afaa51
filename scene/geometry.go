package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is an axis-aligned bounding box over a set of positions.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Union returns the smallest bounds containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	out := b
	for i := 0; i < 3; i++ {
		if o.Min[i] < out.Min[i] {
			out.Min[i] = o.Min[i]
		}
		if o.Max[i] > out.Max[i] {
			out.Max[i] = o.Max[i]
		}
	}
	return out
}

// Geometry holds the decoded vertex data of one triangle-list primitive.
// Attribute slices are flat and tightly packed: three floats per vertex for
// Positions and Normals, four for Colors, two for TexCoords. Geometry is
// immutable once decoded and is shared by reference between mesh instances
// that were cloned from the same source primitive.
type Geometry struct {
	// Name identifies the source primitive.
	Name string

	// Positions holds xyz triples, one per vertex. Never empty for a decoded
	// geometry.
	Positions []float32

	// Normals holds xyz triples, one per vertex. Empty when the source
	// provided none and normal generation was disabled.
	Normals []float32

	// Colors holds rgba quadruples in the unit range, one per vertex. Empty
	// when the source provided no vertex colors.
	Colors []float32

	// TexCoords holds uv pairs, one per vertex. Empty when the source provided
	// no texture coordinates.
	TexCoords []float32

	// Indices is the triangle index list. Empty for unindexed triangle lists,
	// in which case vertices are consumed three at a time in order.
	Indices []uint32

	// Bounds is the axis-aligned bounding box of Positions.
	Bounds Bounds
}

// VertexCount returns the number of vertices in the geometry.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount returns the number of triangles, honoring the index list when
// present.
func (g *Geometry) TriangleCount() int {
	if len(g.Indices) > 0 {
		return len(g.Indices) / 3
	}
	return g.VertexCount() / 3
}

// ComputeBounds recalculates Bounds from the current Positions. Zero-length
// geometry yields zero bounds.
func (g *Geometry) ComputeBounds() {
	if len(g.Positions) < 3 {
		g.Bounds = Bounds{}
		return
	}

	bmin := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	bmax := mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}

	for i := 0; i+2 < len(g.Positions); i += 3 {
		for j := 0; j < 3; j++ {
			v := g.Positions[i+j]
			if v < bmin[j] {
				bmin[j] = v
			}
			if v > bmax[j] {
				bmax[j] = v
			}
		}
	}

	g.Bounds = Bounds{Min: bmin, Max: bmax}
}
