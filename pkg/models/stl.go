package models

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/hschendel/stl"
	"github.com/taigrr/modelview/pkg/math3d"
)

// ParseSTL decodes a binary or ASCII STL file. Each triangle gets its own
// three vertices so faces keep flat normals.
func ParseSTL(data []byte) (*Mesh, error) {
	solid, err := stl.ReadAll(bytes.NewReader(trimBinary(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: stl: %w", ErrSyntax, err)
	}
	if len(solid.Triangles) == 0 {
		return nil, ErrEmptyModel
	}

	mesh := NewMesh(solid.Name)
	mesh.Material = DefaultSTLMaterial()
	mesh.Vertices = make([]MeshVertex, 0, len(solid.Triangles)*3)
	mesh.Faces = make([]Face, 0, len(solid.Triangles))

	for i, t := range solid.Triangles {
		var p [3]math3d.Vec3
		for k, v := range t.Vertices {
			p[k] = math3d.V3f(v)
			if !p[k].IsFinite() {
				return nil, fmt.Errorf("%w: stl: triangle %d has a non-finite vertex", ErrSyntax, i)
			}
		}

		normal := math3d.V3f(t.Normal)
		if normal.Len() < 1e-6 || !normal.IsFinite() {
			normal = p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
		}
		normal = normal.Normalize()

		base := len(mesh.Vertices)
		for _, pos := range p {
			mesh.Vertices = append(mesh.Vertices, MeshVertex{Position: pos, Normal: normal})
		}
		mesh.Faces = append(mesh.Faces, Face{V: [3]int{base, base + 1, base + 2}})
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// trimBinary drops bytes past the last record of a binary STL. Exporters
// sometimes pad the file, and the decoder only recognizes binary data of
// exactly 84+50n bytes.
func trimBinary(data []byte) []byte {
	const header, record = 84, 50
	if len(data) < header || bytes.HasPrefix(data, []byte("solid")) {
		return data
	}
	want := header + record*uint64(binary.LittleEndian.Uint32(data[80:header]))
	if uint64(len(data)) > want {
		return data[:want]
	}
	return data
}
