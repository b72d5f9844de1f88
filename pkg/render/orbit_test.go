package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taigrr/modelview/pkg/math3d"
)

func homePose() OrbitPose {
	return OrbitPose{Target: math3d.Zero3(), Azimuth: 0, Polar: math.Pi / 2, Distance: 15}
}

func TestOrbitPoseEye(t *testing.T) {
	eye := homePose().Eye()
	assert.InDelta(t, 0, eye.X, 1e-9)
	assert.InDelta(t, 0, eye.Y, 1e-9)
	assert.InDelta(t, 15, eye.Z, 1e-9)

	side := OrbitPose{Azimuth: math.Pi / 2, Polar: math.Pi / 2, Distance: 2}.Eye()
	assert.InDelta(t, 2, side.X, 1e-9)
}

func TestOrbitControlsStartAtHome(t *testing.T) {
	o := NewOrbitControls(homePose(), 60)
	assert.Equal(t, homePose(), o.Current())
	assert.Equal(t, homePose(), o.Goal())
}

func TestOrbitControlsRotateClampsPolar(t *testing.T) {
	o := NewOrbitControls(homePose(), 60)

	o.Rotate(0, 1000)
	assert.InDelta(t, minPolar, o.Goal().Polar, 1e-9)

	o.Rotate(0, -1000)
	assert.InDelta(t, math.Pi-minPolar, o.Goal().Polar, 1e-9)

	o.Reset()
	o.Rotate(10, 0)
	assert.InDelta(t, -10*o.RotateSpeed, o.Goal().Azimuth, 1e-9)
}

func TestOrbitControlsZoomClampsDistance(t *testing.T) {
	o := NewOrbitControls(homePose(), 60)

	o.Zoom(1)
	assert.InDelta(t, 15*0.9, o.Goal().Distance, 1e-9)

	o.Zoom(1000)
	assert.Equal(t, o.MinDistance, o.Goal().Distance)

	o.Zoom(-1000)
	assert.Equal(t, o.MaxDistance, o.Goal().Distance)
}

func TestOrbitControlsPan(t *testing.T) {
	o := NewOrbitControls(homePose(), 60)

	// looking down -Z, right is +X and up is +Y
	o.Pan(-10, 0)
	assert.Greater(t, o.Goal().Target.X, 0.0)
	assert.InDelta(t, 0, o.Goal().Target.Y, 1e-9)

	o.Reset()
	o.Pan(0, 10)
	assert.Greater(t, o.Goal().Target.Y, 0.0)
}

func TestOrbitControlsUpdateEases(t *testing.T) {
	o := NewOrbitControls(homePose(), 60)
	o.Zoom(5)
	goal := o.Goal().Distance

	o.Update()
	first := o.Current().Distance
	assert.Less(t, first, 15.0)
	assert.Greater(t, first, goal, "one frame does not reach the goal")

	for range 600 {
		o.Update()
	}
	assert.InDelta(t, goal, o.Current().Distance, 1e-3)

	o.Rotate(20, 0)
	o.Snap()
	assert.Equal(t, o.Goal(), o.Current())
}

func TestOrbitControlsApply(t *testing.T) {
	o := NewOrbitControls(homePose(), 60)
	cam := NewCamera()
	o.Apply(cam)

	assert.InDelta(t, 15, cam.Position.Z, 1e-9)
	fwd := cam.Forward()
	assert.InDelta(t, -1, fwd.Z, 1e-9)
}
