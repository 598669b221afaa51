package loader

import (
	"fmt"
	"image/color"

	"github.com/Carmen-Shannon/gltf-go/common"
	"github.com/Carmen-Shannon/gltf-go/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser          gltfParser
	textures        []*scene.Texture
	generateNormals bool

	geometries []*scene.Geometry
	warnings   []string
}

// gltfMeshExtractor defines the interface for turning mesh descriptors of a
// parsed document into template nodes. Each template is a group node with one
// child per decoded triangle-list primitive; instancing nodes attach clones of
// the template so per-instance material edits never alias.
type gltfMeshExtractor interface {
	// ExtractMesh builds the template node for one mesh descriptor. Primitives
	// with a non-triangle-list topology or without positions are skipped with a
	// diagnostic; the template then carries fewer children than the descriptor
	// has primitives, possibly none.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh descriptor
	//
	// Returns:
	//   - *scene.Node: the template group node
	//   - error: error if an accessor of a surviving primitive is unreadable
	ExtractMesh(meshIndex int) (*scene.Node, error)

	// ExtractMeshes builds templates for every mesh descriptor, aligned by
	// index.
	//
	// Returns:
	//   - []*scene.Node: one template per descriptor
	//   - error: error if any template fails to build
	ExtractMeshes() ([]*scene.Node, error)

	// Geometries returns every geometry decoded so far, in extraction order.
	//
	// Returns:
	//   - []*scene.Geometry: the decoded geometries
	Geometries() []*scene.Geometry

	// Warnings returns the non-fatal diagnostics accumulated during extraction.
	//
	// Returns:
	//   - []string: the diagnostics in emission order
	Warnings() []string
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - textures: the resolved textures, aligned with the document's texture descriptors
//   - generateNormals: whether to synthesize normals for primitives that lack them
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser, textures []*scene.Texture, generateNormals bool) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{
		parser:          parser,
		textures:        textures,
		generateNormals: generateNormals,
	}
}

func (e *gltfMeshExtractorImpl) Warnings() []string {
	return e.warnings
}

func (e *gltfMeshExtractorImpl) Geometries() []*scene.Geometry {
	return e.geometries
}

func (e *gltfMeshExtractorImpl) ExtractMeshes() ([]*scene.Node, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	templates := make([]*scene.Node, len(doc.Meshes))
	for i := range doc.Meshes {
		template, err := e.ExtractMesh(i)
		if err != nil {
			return nil, err
		}
		templates[i] = template
	}

	return templates, nil
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) (*scene.Node, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d exceeds %d meshes: %w", meshIndex, len(doc.Meshes), ErrOutOfRange)
	}

	mesh := &doc.Meshes[meshIndex]
	meshName := mesh.Name
	if meshName == "" {
		meshName = fmt.Sprintf("mesh_%d", meshIndex)
	}

	template := scene.NewNode(meshName)
	for p := range mesh.Primitives {
		child, err := e.extractPrimitive(meshName, meshIndex, p, &mesh.Primitives[p])
		if err != nil {
			return nil, err
		}
		if child != nil {
			template.AddChild(child)
		}
	}

	return template, nil
}

// extractPrimitive decodes a single primitive into a node carrying a mesh.
// Returns nil without error when the primitive is skipped.
func (e *gltfMeshExtractorImpl) extractPrimitive(meshName string, meshIndex, primIndex int, prim *gltfPrimitive) (*scene.Node, error) {
	if common.Deref(prim.Mode, gltfPrimitiveModeTriangles) != gltfPrimitiveModeTriangles {
		e.warnf("mesh %d primitive %d: mode %d is not a triangle list, skipping", meshIndex, primIndex, *prim.Mode)
		return nil, nil
	}

	posIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		e.warnf("mesh %d primitive %d: no POSITION attribute, skipping", meshIndex, primIndex)
		return nil, nil
	}

	positions, err := e.readVertexAttribute(posIndex)
	if err != nil {
		return nil, fmt.Errorf("mesh %d primitive %d positions: %w", meshIndex, primIndex, err)
	}

	geom := &scene.Geometry{
		Name:      fmt.Sprintf("%s_%d", meshName, primIndex),
		Positions: positions,
	}

	if normalIndex, ok := prim.Attributes["NORMAL"]; ok {
		geom.Normals, err = e.readVertexAttribute(normalIndex)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d normals: %w", meshIndex, primIndex, err)
		}
	}

	if uvIndex, ok := prim.Attributes["TEXCOORD_0"]; ok {
		geom.TexCoords, err = e.readVertexAttribute(uvIndex)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d texcoords: %w", meshIndex, primIndex, err)
		}
	}

	if colorIndex, ok := prim.Attributes["COLOR_0"]; ok {
		geom.Colors, err = e.readColorAccessor(colorIndex)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d colors: %w", meshIndex, primIndex, err)
		}
	}

	if prim.Indices != nil {
		geom.Indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d indices: %w", meshIndex, primIndex, err)
		}
	}

	if len(geom.Normals) == 0 && e.generateNormals {
		geom.Normals = gltfGenerateNormals(geom.Positions, geom.Indices)
	}
	geom.ComputeBounds()
	e.geometries = append(e.geometries, geom)

	node := scene.NewNode(geom.Name)
	node.Mesh = &scene.Mesh{
		Name:     geom.Name,
		Geometry: geom,
		Material: e.resolveMaterial(meshIndex, primIndex, prim.Material, len(geom.Colors) > 0),
	}

	return node, nil
}

// readVertexAttribute reads a float accessor into an owned flat slice. The
// parser's view is borrowed from the binary payload, so the geometry takes a
// copy to outlive it.
func (e *gltfMeshExtractorImpl) readVertexAttribute(accessorIndex int) ([]float32, error) {
	borrowed, err := e.parser.ReadFloatAccessor(accessorIndex)
	if err != nil {
		return nil, err
	}

	owned := make([]float32, len(borrowed))
	copy(owned, borrowed)
	return owned, nil
}

// readColorAccessor reads a COLOR_0 accessor into a flat rgba slice in the
// unit range, four floats per vertex. Three-component colors gain an opaque
// alpha; unsigned byte and short components are scaled down by their maximum
// value, float components pass through.
func (e *gltfMeshExtractorImpl) readColorAccessor(accessorIndex int) ([]float32, error) {
	doc := e.parser.Document()
	if accessorIndex < 0 || accessorIndex >= len(doc.Accessors) {
		return nil, fmt.Errorf("color accessor index %d exceeds %d accessors: %w", accessorIndex, len(doc.Accessors), ErrOutOfRange)
	}
	acc := &doc.Accessors[accessorIndex]

	var components int
	switch acc.Type {
	case gltfAccessorTypeVec3:
		components = 3
	case gltfAccessorTypeVec4:
		components = 4
	default:
		return nil, fmt.Errorf("color accessor %d has element type %q: %w", accessorIndex, acc.Type, ErrUnsupportedElementType)
	}

	raw, err := e.parser.ReadAccessorBytes(accessorIndex)
	if err != nil {
		return nil, err
	}

	out := make([]float32, acc.Count*4)
	switch acc.ComponentType {
	case gltfComponentTypeFloat:
		src, ok := common.BytesToSlice[float32](raw)
		if !ok {
			return nil, fmt.Errorf("color accessor %d has misaligned float data: %w", accessorIndex, ErrOutOfRange)
		}
		for i := 0; i < acc.Count; i++ {
			copy(out[i*4:], src[i*components:i*components+components])
			if components == 3 {
				out[i*4+3] = 1
			}
		}
	case gltfComponentTypeUnsignedByte:
		for i := 0; i < acc.Count; i++ {
			for c := 0; c < components; c++ {
				out[i*4+c] = float32(raw[i*components+c]) / 255
			}
			if components == 3 {
				out[i*4+3] = 1
			}
		}
	case gltfComponentTypeUnsignedShort:
		src, ok := common.BytesToSlice[uint16](raw)
		if !ok {
			return nil, fmt.Errorf("color accessor %d has misaligned short data: %w", accessorIndex, ErrOutOfRange)
		}
		for i := 0; i < acc.Count; i++ {
			for c := 0; c < components; c++ {
				out[i*4+c] = float32(src[i*components+c]) / 65535
			}
			if components == 3 {
				out[i*4+3] = 1
			}
		}
	default:
		return nil, fmt.Errorf("color accessor %d has component type %d: %w", accessorIndex, acc.ComponentType, ErrUnsupportedComponentType)
	}

	return out, nil
}

// resolveMaterial builds the material record for one primitive, starting from
// the package default and layering the descriptor's fields over it in order:
// base color factor, base color texture, metallic and roughness factors,
// emissive factor, double-sided flag, then alpha mode. An opacity derived from
// the base color factor's alpha wins over the BLEND fallback opacity.
func (e *gltfMeshExtractorImpl) resolveMaterial(meshIndex, primIndex int, materialIndex *int, hasVertexColors bool) scene.Material {
	mat := scene.DefaultMaterial()
	mat.VertexColors = hasVertexColors

	doc := e.parser.Document()
	if materialIndex == nil {
		return mat
	}
	if *materialIndex < 0 || *materialIndex >= len(doc.Materials) {
		e.warnf("mesh %d primitive %d: material index %d exceeds %d materials, using default", meshIndex, primIndex, *materialIndex, len(doc.Materials))
		return mat
	}

	src := &doc.Materials[*materialIndex]
	if src.Name != "" {
		mat.Name = src.Name
	}

	opacitySet := false
	if pbr := src.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			f := *pbr.BaseColorFactor
			mat.Color = color.RGBA{
				R: uint8(f[0] * 255),
				G: uint8(f[1] * 255),
				B: uint8(f[2] * 255),
				A: uint8(f[3] * 255),
			}
			if f[3] < 1 {
				mat.Transparent = true
				mat.Opacity = f[3]
				opacitySet = true
			}
		}

		if pbr.BaseColorTexture != nil {
			ti := pbr.BaseColorTexture.Index
			if ti >= 0 && ti < len(e.textures) && e.textures[ti] != nil {
				mat.Texture = e.textures[ti]
				// The texture carries the color; a tint would darken it.
				mat.Color = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
			} else {
				e.warnf("material %d: base color texture %d did not resolve, keeping flat color", *materialIndex, ti)
			}
		}

		mat.Metallic = common.Deref(pbr.MetallicFactor, mat.Metallic)
		mat.Roughness = common.Deref(pbr.RoughnessFactor, mat.Roughness)
	}

	if src.EmissiveFactor != nil {
		f := *src.EmissiveFactor
		mat.Emissive = color.RGBA{
			R: uint8(f[0] * 255),
			G: uint8(f[1] * 255),
			B: uint8(f[2] * 255),
			A: 0xFF,
		}
	}

	mat.DoubleSided = src.DoubleSided

	if src.AlphaMode == gltfAlphaModeBlend {
		mat.Transparent = true
		if !opacitySet {
			mat.Opacity = 0.9
		}
	}

	return mat
}

// warnf records a non-fatal diagnostic.
func (e *gltfMeshExtractorImpl) warnf(format string, args ...any) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

// gltfGenerateNormals synthesizes smooth per-vertex normals for a triangle
// list. Face normals are accumulated unnormalized so that larger triangles
// weigh more, then each vertex sum is normalized. Vertices touched by no
// triangle, or only by degenerate ones, point up.
//
// Parameters:
//   - positions: flat xyz vertex positions
//   - indices: the triangle index list, or empty for an unindexed list
//
// Returns:
//   - []float32: flat xyz normals, one triple per vertex
func gltfGenerateNormals(positions []float32, indices []uint32) []float32 {
	vertexCount := len(positions) / 3
	normals := make([]float32, vertexCount*3)

	accumulate := func(i0, i1, i2 uint32) {
		if int(i0) >= vertexCount || int(i1) >= vertexCount || int(i2) >= vertexCount {
			return
		}
		p0 := mgl32.Vec3{positions[i0*3], positions[i0*3+1], positions[i0*3+2]}
		p1 := mgl32.Vec3{positions[i1*3], positions[i1*3+1], positions[i1*3+2]}
		p2 := mgl32.Vec3{positions[i2*3], positions[i2*3+1], positions[i2*3+2]}

		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, vi := range [3]uint32{i0, i1, i2} {
			normals[vi*3] += n.X()
			normals[vi*3+1] += n.Y()
			normals[vi*3+2] += n.Z()
		}
	}

	if len(indices) > 0 {
		for t := 0; t+2 < len(indices); t += 3 {
			accumulate(indices[t], indices[t+1], indices[t+2])
		}
	} else {
		for t := 0; t+2 < vertexCount; t += 3 {
			accumulate(uint32(t), uint32(t+1), uint32(t+2))
		}
	}

	for v := 0; v < vertexCount; v++ {
		n := mgl32.Vec3{normals[v*3], normals[v*3+1], normals[v*3+2]}
		if n.Len() > 1e-8 {
			n = n.Normalize()
		} else {
			n = mgl32.Vec3{0, 1, 0}
		}
		normals[v*3] = n.X()
		normals[v*3+1] = n.Y()
		normals[v*3+2] = n.Z()
	}

	return normals
}
