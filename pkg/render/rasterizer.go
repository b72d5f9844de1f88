package render

import (
	"math"

	"github.com/taigrr/modelview/pkg/math3d"
)

// MeshRenderer is the geometry the rasterizer consumes. It is implemented by
// models.Mesh and lets this package avoid importing models.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer is a MeshRenderer with local-space bounds, used for
// frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// CullingStats counts frustum culling decisions since the last reset.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

// Rasterizer draws triangles into a framebuffer with a depth buffer.
// Front faces are counter-clockwise when seen from the camera.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64

	frustum   Frustum
	frustumVP math3d.Mat4

	// per-mesh scratch, reused between draws
	worldPos []math3d.Vec3
	diffuse  []math3d.Vec3
	specular []math3d.Vec3

	CullingStats           CullingStats
	DisableBackfaceCulling bool
}

// NewRasterizer creates a rasterizer drawing through camera into fb.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb}
	r.Resize()
	return r
}

// Resize reallocates the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth resets the depth buffer. Call once per frame.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// ResetCullingStats zeroes the culling counters.
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// Frustum returns the view frustum for the camera's current matrices.
func (r *Rasterizer) Frustum() Frustum {
	vp := r.camera.ViewProjectionMatrix()
	if vp != r.frustumVP {
		r.frustum = NewFrustumFromMatrix(vp)
		r.frustumVP = vp
	}
	return r.frustum
}

// IsVisible reports whether a world-space box intersects the view frustum.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	return r.Frustum().IntersectAABB(worldBounds)
}

// culled reports whether a bounded mesh lies entirely outside the frustum.
// Meshes without bounds are never culled.
func (r *Rasterizer) culled(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}
	r.CullingStats.MeshesTested++

	lo, hi := bounded.GetBounds()
	if !r.IsVisible(NewAABB(lo, hi).Transform(transform)) {
		r.CullingStats.MeshesCulled++
		return true
	}
	r.CullingStats.MeshesDrawn++
	return false
}

// rasterVertex is a vertex after projection to screen space.
type rasterVertex struct {
	X, Y, Z  float64 // screen x, y and NDC depth
	InvW     float64
	UV       math3d.Vec2
	Diffuse  math3d.Vec3
	Specular math3d.Vec3
}

// DrawMesh renders a mesh with Gouraud shading. Lighting is evaluated per
// vertex in world space and interpolated perspective-correctly; when the
// surface has a texture it is sampled per pixel and modulated by the
// interpolated light.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, surf Surface, light *Lighting, eye math3d.Vec3) {
	if r.Width() == 0 || r.Height() == 0 || r.culled(mesh, transform) {
		return
	}

	n := mesh.VertexCount()
	r.worldPos = grow(r.worldPos, n)
	r.diffuse = grow(r.diffuse, n)
	r.specular = grow(r.specular, n)

	flat := Lighting{Ambient: 1}
	if light == nil {
		light = &flat
	}
	for i := range n {
		pos, normal, _ := mesh.GetVertex(i)
		wp := transform.MulVec3(pos)
		wn := transform.MulVec3Dir(normal).Normalize()
		r.worldPos[i] = wp
		r.diffuse[i], r.specular[i] = light.Shade(wp, wn, eye, surf)
	}

	viewProj := r.camera.ViewProjectionMatrix()
	var tri [3]rasterVertex
	for f := range mesh.TriangleCount() {
		face := mesh.GetFace(f)
		if !validFace(face, n) {
			continue
		}
		visible := true
		for k, idx := range face {
			_, _, uv := mesh.GetVertex(idx)
			v, ok := r.project(viewProj, r.worldPos[idx])
			if !ok {
				visible = false
				break
			}
			v.UV = uv
			v.Diffuse = r.diffuse[idx]
			v.Specular = r.specular[idx]
			tri[k] = v
		}
		if visible {
			r.fillTriangle(tri, surf)
		}
	}
}

// project maps a world point to screen space. Points on or behind the eye
// plane are rejected.
func (r *Rasterizer) project(viewProj math3d.Mat4, p math3d.Vec3) (rasterVertex, bool) {
	clip := viewProj.MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 1e-9 {
		return rasterVertex{}, false
	}
	invW := 1 / clip.W
	return rasterVertex{
		X:    (clip.X*invW + 1) * 0.5 * float64(r.Width()),
		Y:    (1 - clip.Y*invW) * 0.5 * float64(r.Height()),
		Z:    clip.Z * invW,
		InvW: invW,
	}, true
}

func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// fillTriangle scan-converts a projected triangle with incremental edge
// functions.
func (r *Rasterizer) fillTriangle(v [3]rasterVertex, surf Surface) {
	area := (v[1].X-v[0].X)*(v[2].Y-v[0].Y) - (v[1].Y-v[0].Y)*(v[2].X-v[0].X)
	switch {
	case area == 0:
		return
	case area > 0:
		// screen y points down, so a positive area is clockwise on screen
		if !r.DisableBackfaceCulling {
			return
		}
	default:
		v[1], v[2] = v[2], v[1]
		area = -area
	}

	minX := max(0, int(math.Floor(min(v[0].X, v[1].X, v[2].X))))
	maxX := min(r.Width()-1, int(math.Ceil(max(v[0].X, v[1].X, v[2].X))))
	minY := max(0, int(math.Floor(min(v[0].Y, v[1].Y, v[2].Y))))
	maxY := min(r.Height()-1, int(math.Ceil(max(v[0].Y, v[1].Y, v[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	a0, b0, c0 := edgeCoeffs(v[1].X, v[1].Y, v[2].X, v[2].Y)
	a1, b1, c1 := edgeCoeffs(v[2].X, v[2].Y, v[0].X, v[0].Y)
	a2, b2, c2 := edgeCoeffs(v[0].X, v[0].Y, v[1].X, v[1].Y)
	invArea := 1 / area

	px, py := float64(minX)+0.5, float64(minY)+0.5
	w0Row := a0*px + b0*py + c0
	w1Row := a1*px + b1*py + c1
	w2Row := a2*px + b2*py + c2

	width := r.Width()
	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		row := y * width
		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				l0, l1, l2 := w0*invArea, w1*invArea, w2*invArea
				z := l0*v[0].Z + l1*v[1].Z + l2*v[2].Z
				if z < r.zbuffer[row+x] && z >= -1 && z <= 1 {
					r.zbuffer[row+x] = z
					r.fb.SetPixel(x, y, shadePixel(v, l0, l1, l2, surf))
				}
			}
			w0 += a0
			w1 += a1
			w2 += a2
		}
		w0Row += b0
		w1Row += b1
		w2Row += b2
	}
}

// shadePixel interpolates vertex attributes with 1/w weights.
func shadePixel(v [3]rasterVertex, l0, l1, l2 float64, surf Surface) Color {
	p0, p1, p2 := l0*v[0].InvW, l1*v[1].InvW, l2*v[2].InvW
	sum := p0 + p1 + p2
	if sum == 0 {
		return surf.Color
	}
	p0, p1, p2 = p0/sum, p1/sum, p2/sum

	diffuse := v[0].Diffuse.Scale(p0).Add(v[1].Diffuse.Scale(p1)).Add(v[2].Diffuse.Scale(p2))
	specular := v[0].Specular.Scale(p0).Add(v[1].Specular.Scale(p1)).Add(v[2].Specular.Scale(p2))

	base := surf.Color
	if surf.Texture != nil {
		u := p0*v[0].UV.X + p1*v[1].UV.X + p2*v[2].UV.X
		t := p0*v[0].UV.Y + p1*v[1].UV.Y + p2*v[2].UV.Y
		base = ModulateColor(surf.Texture.Sample(u, t), surf.Color)
	}
	return shadeColor(base, diffuse, specular)
}

// DrawMeshWireframe renders every triangle edge of a mesh.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	if r.Width() == 0 || r.Height() == 0 || r.culled(mesh, transform) {
		return
	}
	n := mesh.VertexCount()
	for f := range mesh.TriangleCount() {
		face := mesh.GetFace(f)
		if !validFace(face, n) {
			continue
		}
		var p [3]math3d.Vec3
		for k, idx := range face {
			pos, _, _ := mesh.GetVertex(idx)
			p[k] = transform.MulVec3(pos)
		}
		r.DrawLine3D(p[0], p[1], color)
		r.DrawLine3D(p[1], p[2], color)
		r.DrawLine3D(p[2], p[0], color)
	}
}

// DrawLine3D projects a world-space segment and draws it without depth
// testing. Segments with an endpoint behind the camera are skipped.
func (r *Rasterizer) DrawLine3D(a, b math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()
	pa, okA := r.project(viewProj, a)
	pb, okB := r.project(viewProj, b)
	if !okA || !okB {
		return
	}
	limit := 4 * float64(max(r.Width(), r.Height()))
	if math.Abs(pa.X) > limit || math.Abs(pa.Y) > limit || math.Abs(pb.X) > limit || math.Abs(pb.Y) > limit {
		return
	}
	r.fb.DrawLine(int(pa.X), int(pa.Y), int(pb.X), int(pb.Y), color)
}

func validFace(face [3]int, n int) bool {
	for _, idx := range face {
		if idx < 0 || idx >= n {
			return false
		}
	}
	return true
}

func grow(s []math3d.Vec3, n int) []math3d.Vec3 {
	if cap(s) < n {
		return make([]math3d.Vec3, n)
	}
	return s[:n]
}
