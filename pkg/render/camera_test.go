package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taigrr/modelview/pkg/math3d"
)

func TestCameraLookAt(t *testing.T) {
	tests := []struct {
		name   string
		pos    math3d.Vec3
		target math3d.Vec3
	}{
		{"down -Z", math3d.V3(0, 0, 10), math3d.Zero3()},
		{"from the side", math3d.V3(10, 0, 0), math3d.Zero3()},
		{"from above", math3d.V3(0, 10, 5), math3d.Zero3()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cam := NewCamera()
			cam.SetPosition(tc.pos)
			cam.LookAt(tc.target)

			want := tc.target.Sub(tc.pos).Normalize()
			got := cam.Forward()
			assert.InDelta(t, want.X, got.X, 1e-9)
			assert.InDelta(t, want.Y, got.Y, 1e-9)
			assert.InDelta(t, want.Z, got.Z, 1e-9)
			assert.InDelta(t, 0, cam.Right().Dot(got), 1e-9)
		})
	}
}

func TestCameraWorldToScreen(t *testing.T) {
	cam := testCamera()

	x, y, _, ok := cam.WorldToScreen(math3d.Zero3(), 80, 40)
	assert.True(t, ok)
	assert.InDelta(t, 40, x, 1e-6)
	assert.InDelta(t, 20, y, 1e-6)

	_, up, _, ok := cam.WorldToScreen(math3d.V3(0, 1, 0), 80, 40)
	assert.True(t, ok)
	assert.Less(t, up, 20.0, "screen y grows downward")

	_, _, _, ok = cam.WorldToScreen(math3d.V3(0, 0, 20), 80, 40)
	assert.False(t, ok, "behind the camera")
}

func TestCameraMatrixCache(t *testing.T) {
	cam := testCamera()
	before := cam.ViewProjectionMatrix()

	cam.SetFOV(math.Pi / 2)
	after := cam.ViewProjectionMatrix()
	assert.NotEqual(t, before, after)

	cam.SetPosition(math3d.V3(0, 0, 20))
	assert.NotEqual(t, after, cam.ViewProjectionMatrix())
}
