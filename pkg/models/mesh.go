// Package models holds the geometry the viewer displays and the loaders
// that produce it from STL and OBJ files.
package models

import (
	"github.com/taigrr/modelview/pkg/math3d"
	"github.com/taigrr/modelview/pkg/render"
)

// Mesh is an indexed triangle list with a single material.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    []Face
	Material Material

	// cached by CalculateBounds
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face is a triangle. Front faces wind counter-clockwise.
type Face struct {
	V [3]int // indices into Mesh.Vertices
}

// Material describes a mesh surface. Map is shared by reference when a
// texture is applied to several meshes.
type Material struct {
	Name      string
	Color     render.Color
	Metalness float64 // 0 = dielectric, 1 = metal
	Roughness float64 // 0 = mirror, 1 = matte
	Map       *render.Texture
}

// DefaultSTLMaterial is the grey, slightly metallic look given to STL meshes.
func DefaultSTLMaterial() Material {
	return Material{
		Name:      "stl",
		Color:     render.Hex(0xaaaaaa),
		Metalness: 0.5,
		Roughness: 0.1,
	}
}

// DefaultOBJMaterial is the plain white material given to OBJ meshes.
func DefaultOBJMaterial(name string) Material {
	return Material{
		Name:      name,
		Color:     render.Hex(0xffffff),
		Metalness: 0,
		Roughness: 1,
	}
}

// Surface converts the material for the rasterizer.
func (m Material) Surface() render.Surface {
	return render.Surface{
		Color:     m.Color,
		Texture:   m.Map,
		Metalness: m.Metalness,
		Roughness: m.Roughness,
	}
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Bounds returns the cached bounding box, or an empty box for a mesh
// without vertices.
func (m *Mesh) Bounds() render.AABB {
	if len(m.Vertices) == 0 {
		return render.EmptyAABB()
	}
	return render.NewAABB(m.BoundsMin, m.BoundsMax)
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// faceNormal returns the unnormalized normal of face f; its length is twice
// the triangle area.
func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// FillMissingNormals computes smooth normals only for vertices whose normal
// is zero, keeping normals that came from the file.
func (m *Mesh) FillMissingNormals() {
	missing := make([]bool, len(m.Vertices))
	found := false
	for i, v := range m.Vertices {
		if v.Normal == (math3d.Vec3{}) {
			missing[i] = true
			found = true
		}
	}
	if !found {
		return
	}

	for _, f := range m.Faces {
		n := m.faceNormal(f)
		for _, idx := range f.V {
			if missing[idx] {
				m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(n)
			}
		}
	}
	for i := range m.Vertices {
		if missing[i] {
			m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
		}
	}
}

// Transform applies a matrix to all vertices. Normals are transformed as
// directions, which is exact for rotations and uniform scales.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = mat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// GetVertex returns the position, normal, and UV for vertex i.
// Implements render.MeshRenderer.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
// Implements render.MeshRenderer.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetBounds returns the axis-aligned bounding box.
// Implements render.BoundedMeshRenderer.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
