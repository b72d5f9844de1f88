package render

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/modelview/pkg/math3d"
)

const minPolar = 0.01

// OrbitPose is a camera placement on a sphere around a target point.
type OrbitPose struct {
	Target   math3d.Vec3
	Azimuth  float64 // around +Y, 0 looks from +Z
	Polar    float64 // from +Y, pi/2 is the horizon
	Distance float64
}

// Eye returns the camera position for the pose.
func (p OrbitPose) Eye() math3d.Vec3 {
	sinP := math.Sin(p.Polar)
	return p.Target.Add(math3d.V3(
		p.Distance*sinP*math.Sin(p.Azimuth),
		p.Distance*math.Cos(p.Polar),
		p.Distance*sinP*math.Cos(p.Azimuth),
	))
}

// springValue eases one scalar toward a goal.
type springValue struct {
	pos, vel float64
	spring   harmonica.Spring
}

func (s *springValue) step(goal float64) {
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, goal)
}

func (s *springValue) snap(goal float64) {
	s.pos, s.vel = goal, 0
}

// OrbitControls rotates, zooms and pans a camera around a target. Input
// moves the goal pose immediately; Update eases the current pose toward it
// so motion decays smoothly like damped orbit controls.
type OrbitControls struct {
	MinDistance float64
	MaxDistance float64
	RotateSpeed float64 // radians per input unit
	ZoomSpeed   float64 // fraction of distance per wheel step
	PanSpeed    float64 // fraction of distance per input unit

	home OrbitPose
	goal OrbitPose

	// target x, y, z, azimuth, polar, distance
	axes [6]springValue
}

// NewOrbitControls creates controls resting at home, animated at fps.
func NewOrbitControls(home OrbitPose, fps int) *OrbitControls {
	if fps <= 0 {
		fps = 60
	}
	o := &OrbitControls{
		MinDistance: 1,
		MaxDistance: 200,
		RotateSpeed: 0.03,
		ZoomSpeed:   0.1,
		PanSpeed:    0.002,
	}
	for i := range o.axes {
		// Critically damped: no overshoot when a drag stops.
		o.axes[i].spring = harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0)
	}
	home.Polar = clampPolar(home.Polar)
	o.home = home
	o.Reset()
	o.Snap()
	return o
}

// Goal returns the pose the controls are easing toward.
func (o *OrbitControls) Goal() OrbitPose {
	return o.goal
}

// Current returns the eased pose.
func (o *OrbitControls) Current() OrbitPose {
	return OrbitPose{
		Target:   math3d.V3(o.axes[0].pos, o.axes[1].pos, o.axes[2].pos),
		Azimuth:  o.axes[3].pos,
		Polar:    o.axes[4].pos,
		Distance: o.axes[5].pos,
	}
}

// Rotate orbits by the given input deltas (e.g. mouse cells dragged).
func (o *OrbitControls) Rotate(dx, dy float64) {
	o.goal.Azimuth -= dx * o.RotateSpeed
	o.goal.Polar = clampPolar(o.goal.Polar - dy*o.RotateSpeed)
}

// Zoom moves toward (steps > 0) or away from (steps < 0) the target.
func (o *OrbitControls) Zoom(steps float64) {
	d := o.goal.Distance * math.Pow(1-o.ZoomSpeed, steps)
	o.goal.Distance = math.Max(o.MinDistance, math.Min(o.MaxDistance, d))
}

// Pan slides the target in the view plane.
func (o *OrbitControls) Pan(dx, dy float64) {
	right := math3d.V3(math.Cos(o.goal.Azimuth), 0, -math.Sin(o.goal.Azimuth))
	forward := o.goal.Target.Sub(o.goal.Eye()).Normalize()
	up := right.Cross(forward)
	k := o.goal.Distance * o.PanSpeed
	o.goal.Target = o.goal.Target.
		Sub(right.Scale(dx * k)).
		Add(up.Scale(dy * k))
}

// Reset returns the goal to the home pose.
func (o *OrbitControls) Reset() {
	o.goal = o.home
}

// Update advances the springs by one frame.
func (o *OrbitControls) Update() {
	for i, g := range o.goalValues() {
		o.axes[i].step(g)
	}
}

// Snap jumps the current pose to the goal.
func (o *OrbitControls) Snap() {
	for i, g := range o.goalValues() {
		o.axes[i].snap(g)
	}
}

// Apply positions cam at the current pose looking at its target.
func (o *OrbitControls) Apply(cam *Camera) {
	pose := o.Current()
	cam.SetPosition(pose.Eye())
	cam.LookAt(pose.Target)
}

func (o *OrbitControls) goalValues() [6]float64 {
	g := o.goal
	return [6]float64{g.Target.X, g.Target.Y, g.Target.Z, g.Azimuth, g.Polar, g.Distance}
}

func clampPolar(p float64) float64 {
	return math.Max(minPolar, math.Min(math.Pi-minPolar, p))
}
