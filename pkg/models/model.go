package models

import (
	"errors"

	"github.com/taigrr/modelview/pkg/math3d"
	"github.com/taigrr/modelview/pkg/render"
)

var (
	// ErrInvalidGeometry means the model's bounds cannot be normalized,
	// e.g. every vertex sits at the same point.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrEmptyModel means the file parsed but contained no triangles.
	ErrEmptyModel = errors.New("model has no triangles")
	// ErrSyntax means the file content could not be parsed.
	ErrSyntax = errors.New("malformed model data")
)

// Kind records which file format a model came from.
type Kind int

const (
	KindSTL Kind = iota + 1
	KindOBJ
)

func (k Kind) String() string {
	switch k {
	case KindSTL:
		return "stl"
	case KindOBJ:
		return "obj"
	default:
		return "unknown"
	}
}

// Model is a loaded object: one mesh for STL, one mesh per object, group
// and material section for OBJ. Position and Scale place it in the scene.
type Model struct {
	Name     string
	Kind     Kind
	Meshes   []*Mesh
	Position math3d.Vec3
	Scale    math3d.Vec3

	// MaterialLibs lists mtllib references. They are recorded, not loaded.
	MaterialLibs []string
}

// NewModel creates a model at the origin with unit scale.
func NewModel(name string, kind Kind, meshes ...*Mesh) *Model {
	return &Model{
		Name:   name,
		Kind:   kind,
		Meshes: meshes,
		Scale:  math3d.V3(1, 1, 1),
	}
}

// Matrix returns the model-to-world transform, Translate(Position) *
// Scale(Scale).
func (m *Model) Matrix() math3d.Mat4 {
	return math3d.Translate(m.Position).Mul(math3d.Scale(m.Scale))
}

// LocalBounds returns the box around all meshes before the model transform.
func (m *Model) LocalBounds() render.AABB {
	box := render.EmptyAABB()
	for _, mesh := range m.Meshes {
		box = box.Union(mesh.Bounds())
	}
	return box
}

// Bounds returns the world-space box around all meshes.
func (m *Model) Bounds() render.AABB {
	return m.LocalBounds().Transform(m.Matrix())
}

// Traverse calls fn for every mesh.
func (m *Model) Traverse(fn func(*Mesh)) {
	for _, mesh := range m.Meshes {
		fn(mesh)
	}
}

// TriangleCount returns the number of triangles across all meshes.
func (m *Model) TriangleCount() int {
	n := 0
	m.Traverse(func(mesh *Mesh) { n += mesh.TriangleCount() })
	return n
}

// ApplyTexture sets tex as the color map of every mesh material. A nil
// texture removes the maps.
func ApplyTexture(m *Model, tex *render.Texture) {
	if m == nil {
		return
	}
	m.Traverse(func(mesh *Mesh) { mesh.Material.Map = tex })
}
