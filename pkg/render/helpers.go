package render

import "github.com/taigrr/modelview/pkg/math3d"

// boxEdges indexes AABB.Corners: bit 0 is X, bit 1 is Y, bit 2 is Z.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along X
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along Y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along Z
}

// DrawBox draws the twelve edges of a world-space box.
func (r *Rasterizer) DrawBox(box AABB, color Color) {
	if box.IsEmpty() {
		return
	}
	corners := box.Corners()
	for _, e := range boxEdges {
		r.DrawLine3D(corners[e[0]], corners[e[1]], color)
	}
}

// DrawAxes draws the world X, Y and Z axes from origin in red, green and
// blue.
func (r *Rasterizer) DrawAxes(origin math3d.Vec3, length float64) {
	r.DrawLine3D(origin, origin.Add(math3d.V3(length, 0, 0)), RGB(230, 60, 60))
	r.DrawLine3D(origin, origin.Add(math3d.V3(0, length, 0)), RGB(60, 230, 60))
	r.DrawLine3D(origin, origin.Add(math3d.V3(0, 0, length)), RGB(60, 100, 230))
}

// DrawMarker draws a small cross at a world position, used to show where a
// light sits.
func (r *Rasterizer) DrawMarker(p math3d.Vec3, color Color) {
	sx, sy, _, ok := r.camera.WorldToScreen(p, r.Width(), r.Height())
	if !ok {
		return
	}
	x, y := int(sx), int(sy)
	for d := -2; d <= 2; d++ {
		r.fb.SetPixel(x+d, y, color)
		r.fb.SetPixel(x, y+d, color)
	}
}
