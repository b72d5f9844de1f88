package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/modelview/pkg/math3d"
)

type testVertex struct {
	pos    math3d.Vec3
	normal math3d.Vec3
	uv     math3d.Vec2
}

// mockMesh implements MeshRenderer for testing.
type mockMesh struct {
	vertices []testVertex
	faces    [][3]int
}

func (m *mockMesh) VertexCount() int     { return len(m.vertices) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.vertices[i]
	return v.pos, v.normal, v.uv
}

// boundedMesh adds bounds so the rasterizer can frustum cull it.
type boundedMesh struct {
	mockMesh
	min, max math3d.Vec3
}

func (m *boundedMesh) GetBounds() (min, max math3d.Vec3) { return m.min, m.max }

// facingTriangle is a counter-clockwise triangle in the z=z plane facing +Z.
func facingTriangle(z float64) *mockMesh {
	n := math3d.V3(0, 0, 1)
	return &mockMesh{
		vertices: []testVertex{
			{math3d.V3(-3, -3, z), n, math3d.V2(0, 0)},
			{math3d.V3(3, -3, z), n, math3d.V2(1, 0)},
			{math3d.V3(0, 3, z), n, math3d.V2(0.5, 1)},
		},
		faces: [][3]int{{0, 1, 2}},
	}
}

func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	cam := testCamera()
	cam.SetAspectRatio(float64(width) / float64(height))
	return NewRasterizer(cam, fb), fb
}

func TestDrawMeshFlatColor(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	surf := Surface{Color: RGB(200, 100, 50)}

	r.DrawMesh(facingTriangle(0), math3d.Identity(), surf, nil, math3d.V3(0, 0, 10))

	assert.Equal(t, surf.Color, fb.GetPixel(20, 20))
	assert.Equal(t, Color{}, fb.GetPixel(0, 0), "corner stays clear")
}

func TestDrawMeshBackfaceCulling(t *testing.T) {
	mesh := facingTriangle(0)
	mesh.faces = [][3]int{{0, 2, 1}}
	surf := Surface{Color: RGB(255, 255, 255)}
	eye := math3d.V3(0, 0, 10)

	r, fb := createTestRasterizer(40, 40)
	r.DrawMesh(mesh, math3d.Identity(), surf, nil, eye)
	assert.Equal(t, Color{}, fb.GetPixel(20, 20), "clockwise triangle is culled")

	r.DisableBackfaceCulling = true
	r.DrawMesh(mesh, math3d.Identity(), surf, nil, eye)
	assert.Equal(t, surf.Color, fb.GetPixel(20, 20))
}

func TestDrawMeshDepthTest(t *testing.T) {
	near := Surface{Color: RGB(255, 0, 0)}
	far := Surface{Color: RGB(0, 0, 255)}
	eye := math3d.V3(0, 0, 10)

	for _, nearFirst := range []bool{true, false} {
		r, fb := createTestRasterizer(40, 40)
		r.ClearDepth()
		if nearFirst {
			r.DrawMesh(facingTriangle(1), math3d.Identity(), near, nil, eye)
			r.DrawMesh(facingTriangle(-1), math3d.Identity(), far, nil, eye)
		} else {
			r.DrawMesh(facingTriangle(-1), math3d.Identity(), far, nil, eye)
			r.DrawMesh(facingTriangle(1), math3d.Identity(), near, nil, eye)
		}
		assert.Equal(t, near.Color, fb.GetPixel(20, 20), "near first: %v", nearFirst)
	}
}

func TestDrawMeshTextured(t *testing.T) {
	tex := NewTexture(2, 2)
	for i := range tex.Pixels {
		tex.Pixels[i] = RGB(0, 255, 0)
	}
	r, fb := createTestRasterizer(40, 40)
	surf := Surface{Color: RGB(255, 255, 255), Texture: tex}

	r.DrawMesh(facingTriangle(0), math3d.Identity(), surf, nil, math3d.V3(0, 0, 10))

	assert.Equal(t, RGB(0, 255, 0), fb.GetPixel(20, 20))
}

func TestDrawMeshLighting(t *testing.T) {
	light := DefaultLighting()
	light.Spot.Intensity = 0
	surf := Surface{Color: RGB(128, 128, 128), Roughness: 1}
	eye := math3d.V3(0, 0, 10)

	r, fb := createTestRasterizer(40, 40)
	r.DrawMesh(facingTriangle(0), math3d.Identity(), surf, &light, eye)
	lit := fb.GetPixel(20, 20)

	light.Directional.Intensity = 0
	r2, fb2 := createTestRasterizer(40, 40)
	r2.DrawMesh(facingTriangle(0), math3d.Identity(), surf, &light, eye)
	dim := fb2.GetPixel(20, 20)

	assert.Greater(t, lit.R, dim.R, "directional light brightens the facing side")
	assert.Equal(t, uint8(255), dim.A)
}

func TestDrawMeshTransform(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	surf := Surface{Color: RGB(255, 255, 255)}
	transform := math3d.Translate(math3d.V3(100, 0, 0))

	r.DrawMesh(facingTriangle(0), transform, surf, nil, math3d.V3(0, 0, 10))

	assert.Equal(t, Color{}, fb.GetPixel(20, 20))
}

func TestFrustumCullingStats(t *testing.T) {
	r, _ := createTestRasterizer(40, 40)
	surf := Surface{Color: RGB(255, 255, 255)}
	eye := math3d.V3(0, 0, 10)

	visible := &boundedMesh{mockMesh: *facingTriangle(0), min: math3d.V3(-3, -3, 0), max: math3d.V3(3, 3, 0)}
	behind := &boundedMesh{mockMesh: *facingTriangle(20), min: math3d.V3(-3, -3, 20), max: math3d.V3(3, 3, 20)}

	r.ResetCullingStats()
	r.DrawMesh(visible, math3d.Identity(), surf, nil, eye)
	r.DrawMesh(behind, math3d.Identity(), surf, nil, eye)
	r.DrawMesh(facingTriangle(0), math3d.Identity(), surf, nil, eye)

	assert.Equal(t, CullingStats{MeshesTested: 2, MeshesCulled: 1, MeshesDrawn: 1}, r.CullingStats)
}

func TestDrawMeshSkipsBadIndices(t *testing.T) {
	mesh := facingTriangle(0)
	mesh.faces = append(mesh.faces, [3]int{0, 1, 7})
	r, _ := createTestRasterizer(20, 20)

	assert.NotPanics(t, func() {
		r.DrawMesh(mesh, math3d.Identity(), Surface{}, nil, math3d.V3(0, 0, 10))
		r.DrawMeshWireframe(mesh, math3d.Identity(), RGB(0, 255, 0))
	})
}

func TestDrawMeshWireframe(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	green := RGB(0, 255, 128)

	r.DrawMeshWireframe(facingTriangle(0), math3d.Identity(), green)

	edges := 0
	for _, p := range fb.Pixels {
		if p == green {
			edges++
		}
	}
	assert.Positive(t, edges)
	assert.NotEqual(t, green, fb.GetPixel(20, 20), "interior stays empty")
}

func TestDrawBox(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	yellow := RGB(255, 255, 0)

	r.DrawBox(EmptyAABB(), yellow)
	for _, p := range fb.Pixels {
		require.NotEqual(t, yellow, p)
	}

	r.DrawBox(NewAABB(math3d.V3(-2, -2, -2), math3d.V3(2, 2, 2)), yellow)
	count := 0
	for _, p := range fb.Pixels {
		if p == yellow {
			count++
		}
	}
	assert.Positive(t, count)
}

func TestDrawMarker(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	c := RGB(255, 230, 80)

	r.DrawMarker(math3d.Zero3(), c)
	assert.Equal(t, c, fb.GetPixel(20, 20))
	assert.Equal(t, c, fb.GetPixel(22, 20))
	assert.Equal(t, c, fb.GetPixel(20, 18))
	assert.Equal(t, Color{}, fb.GetPixel(22, 22), "cross, not square")

	// behind the camera
	fb.Clear(Color{})
	r.DrawMarker(math3d.V3(0, 0, 20), c)
	for _, p := range fb.Pixels {
		require.NotEqual(t, c, p)
	}
}

func TestRasterizerClearDepth(t *testing.T) {
	r, _ := createTestRasterizer(8, 4)
	require.Len(t, r.zbuffer, 32)

	for i := range r.zbuffer {
		r.zbuffer[i] = 0.5
	}
	r.ClearDepth()
	for _, z := range r.zbuffer {
		assert.Equal(t, math.MaxFloat64, z)
	}
}

func TestSpotCone(t *testing.T) {
	assert.InDelta(t, 1.0, spotCone(1, 0.2, 0.5), 1e-9)
	assert.InDelta(t, 0.0, spotCone(math.Cos(0.3), 0.2, 0.5), 1e-9)

	mid := spotCone(math.Cos(0.15), 0.2, 0.5)
	assert.Greater(t, mid, 0.0)
	assert.Less(t, mid, 1.0)

	// zero penumbra gives a hard edge
	assert.InDelta(t, 1.0, spotCone(math.Cos(0.19), 0.2, 0), 1e-9)
}

func BenchmarkDrawMesh(b *testing.B) {
	r, fb := createTestRasterizer(160, 90)
	light := DefaultLighting()
	surf := Surface{Color: RGB(200, 200, 200), Metalness: 0.5, Roughness: 0.1}
	mesh := facingTriangle(0)
	eye := math3d.V3(0, 0, 10)

	for b.Loop() {
		fb.Clear(Color{})
		r.ClearDepth()
		r.DrawMesh(mesh, math3d.Identity(), surf, &light, eye)
	}
}
