package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taigrr/modelview/pkg/math3d"
)

// cubeTriangles returns the 12 outward-facing, counter-clockwise triangles of
// an axis-aligned cube.
func cubeTriangles(center math3d.Vec3, size float64) [][3]math3d.Vec3 {
	h := size / 2
	c := func(x, y, z float64) math3d.Vec3 {
		return center.Add(math3d.V3(x*h, y*h, z*h))
	}
	quads := [][4]math3d.Vec3{
		{c(-1, -1, 1), c(1, -1, 1), c(1, 1, 1), c(-1, 1, 1)},     // +Z
		{c(1, -1, -1), c(-1, -1, -1), c(-1, 1, -1), c(1, 1, -1)}, // -Z
		{c(1, -1, 1), c(1, -1, -1), c(1, 1, -1), c(1, 1, 1)},     // +X
		{c(-1, -1, -1), c(-1, -1, 1), c(-1, 1, 1), c(-1, 1, -1)}, // -X
		{c(-1, 1, 1), c(1, 1, 1), c(1, 1, -1), c(-1, 1, -1)},     // +Y
		{c(-1, -1, -1), c(1, -1, -1), c(1, -1, 1), c(-1, -1, 1)}, // -Y
	}
	var tris [][3]math3d.Vec3
	for _, q := range quads {
		tris = append(tris, [3]math3d.Vec3{q[0], q[1], q[2]}, [3]math3d.Vec3{q[0], q[2], q[3]})
	}
	return tris
}

// binarySTL encodes triangles as a binary STL with zero normals.
func binarySTL(t testing.TB, tris [][3]math3d.Vec3) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(tris))))
	for _, tri := range tris {
		rec := make([]float32, 0, 12)
		rec = append(rec, 0, 0, 0)
		for _, v := range tri {
			f := v.Float32()
			rec = append(rec, f[0], f[1], f[2])
		}
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, rec))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(0)))
	}
	return buf.Bytes()
}

// asciiSTL encodes triangles as an ASCII STL solid.
func asciiSTL(name string, tris [][3]math3d.Vec3) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "solid %s\n", name)
	for _, tri := range tris {
		sb.WriteString("  facet normal 0 0 0\n    outer loop\n")
		for _, v := range tri {
			fmt.Fprintf(&sb, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		sb.WriteString("    endloop\n  endfacet\n")
	}
	fmt.Fprintf(&sb, "endsolid %s\n", name)
	return []byte(sb.String())
}
