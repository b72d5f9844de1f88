package app

import (
	"math"

	"github.com/taigrr/modelview/pkg/math3d"
	"github.com/taigrr/modelview/pkg/render"
)

// RenderMode controls how meshes are drawn.
type RenderMode int

const (
	RenderModeShaded    RenderMode = iota // lit, textured when a map is set
	RenderModeWireframe                   // edges only
)

// ViewState holds UI toggles.
type ViewState struct {
	TextureEnabled bool
	RenderMode     RenderMode
	ShowHUD        bool
	ShowBounds     bool
	LightMode      bool        // positioning the spot light with the mouse
	PendingLight   math3d.Vec3 // spot position while in light mode
}

// NewViewState returns the start-up toggles.
func NewViewState() ViewState {
	return ViewState{TextureEnabled: true, RenderMode: RenderModeShaded}
}

// ToggleWireframe flips between shaded and wireframe drawing.
func (v *ViewState) ToggleWireframe() {
	if v.RenderMode == RenderModeWireframe {
		v.RenderMode = RenderModeShaded
	} else {
		v.RenderMode = RenderModeWireframe
	}
}

// ScreenToLightPos maps a cell position to a point on the hemisphere facing
// the camera, radius units from target. The screen center is straight
// toward the camera; the edges lie on the horizon.
func ScreenToLightPos(cam *render.Camera, target math3d.Vec3, radius float64, x, y, width, height int) math3d.Vec3 {
	nx := (float64(x)/float64(max(width, 1)))*2 - 1
	ny := (float64(y)/float64(max(height, 1)))*2 - 1

	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	nz := math.Sqrt(1 - lenSq)

	dir := cam.Right().Scale(nx).
		Add(cam.Up().Scale(-ny)).
		Add(cam.Forward().Scale(-nz)).
		Normalize()
	return target.Add(dir.Scale(radius))
}
