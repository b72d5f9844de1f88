package render

import (
	"math"

	"github.com/taigrr/modelview/pkg/math3d"
)

// DirectionalLight shines from Position toward the origin.
type DirectionalLight struct {
	Position  math3d.Vec3
	Color     Color
	Intensity float64
}

// SpotLight is a cone light from Position toward Target. Angle is the cone
// half-angle in radians and Penumbra the fraction of it that fades out.
type SpotLight struct {
	Position  math3d.Vec3
	Target    math3d.Vec3
	Color     Color
	Angle     float64
	Penumbra  float64
	Intensity float64
}

// Lighting is the scene light rig: an ambient term, one directional light,
// one spot light and an environment preset.
type Lighting struct {
	Ambient     float64
	Directional DirectionalLight
	Spot        SpotLight
	Environment Environment
}

// Surface describes how a mesh reflects light.
type Surface struct {
	Color     Color
	Texture   *Texture // optional, modulated by Color
	Metalness float64
	Roughness float64
}

// DefaultLighting returns the stock viewer rig.
func DefaultLighting() Lighting {
	env, _ := LookupEnvironment(DefaultEnvironment)
	return Lighting{
		Ambient: 0.4,
		Directional: DirectionalLight{
			Position:  math3d.V3(10, 10, 10),
			Color:     RGB(255, 255, 255),
			Intensity: 0.8,
		},
		Spot: SpotLight{
			Position:  math3d.V3(0, 10, 10),
			Target:    math3d.Zero3(),
			Color:     RGB(255, 255, 255),
			Angle:     0.2,
			Penumbra:  1,
			Intensity: 1.2,
		},
		Environment: env,
	}
}

// Shade evaluates the light rig at a surface point. Diffuse is a per-channel
// multiplier for the surface color; specular is added on top, both in 0..1
// units per channel. Normals facing away from the eye are flipped so both
// sides of thin geometry receive light.
func (l *Lighting) Shade(pos, normal, eye math3d.Vec3, s Surface) (diffuse, specular math3d.Vec3) {
	n := normal.Normalize()
	view := eye.Sub(pos).Normalize()
	if n.Dot(view) < 0 {
		n = n.Negate()
	}

	metal := clamp01(s.Metalness)
	rough := clamp01(s.Roughness)
	diffuseWeight := 1 - 0.8*metal
	specStrength := (1 - rough) * (0.04 + 0.96*metal)
	shininess := math.Max(1, (1-rough)*(1-rough)*128)
	specTint := colorVec(RGB(255, 255, 255)).Lerp(colorVec(s.Color), metal)

	ambient := l.Ambient * diffuseWeight
	diffuse = math3d.V3(ambient, ambient, ambient)

	// hemisphere term: ground color below, sky color above
	env := l.Environment
	if env.Intensity > 0 {
		t := 0.5 * (n.Y + 1)
		hemi := colorVec(env.Ground).Lerp(colorVec(env.Sky), t)
		diffuse = diffuse.Add(hemi.Scale(env.Intensity * diffuseWeight))
	}

	addLight := func(dir math3d.Vec3, c Color, intensity float64) {
		ndl := n.Dot(dir)
		if ndl <= 0 || intensity <= 0 {
			return
		}
		lc := colorVec(c).Scale(intensity)
		diffuse = diffuse.Add(lc.Scale(ndl * diffuseWeight))
		if specStrength > 0 {
			half := dir.Add(view).Normalize()
			spec := math.Pow(math.Max(0, n.Dot(half)), shininess)
			specular = specular.Add(lc.Mul(specTint).Scale(spec * specStrength))
		}
	}

	if d := l.Directional; d.Position.Len() > 0 {
		addLight(d.Position.Normalize(), d.Color, d.Intensity)
	}

	if sp := l.Spot; sp.Intensity > 0 {
		toLight := sp.Position.Sub(pos)
		if toLight.Len() > 0 {
			dir := toLight.Normalize()
			axis := sp.Target.Sub(sp.Position).Normalize()
			cone := spotCone(dir.Negate().Dot(axis), sp.Angle, sp.Penumbra)
			addLight(dir, sp.Color, sp.Intensity*cone)
		}
	}

	return diffuse, specular
}

// spotCone returns the spot attenuation for the cosine between the cone axis
// and the direction to the lit point.
func spotCone(cosTheta, angle, penumbra float64) float64 {
	outer := math.Cos(angle)
	inner := math.Cos(angle * (1 - clamp01(penumbra)))
	if inner <= outer {
		if cosTheta >= outer {
			return 1
		}
		return 0
	}
	return smoothstep(outer, inner, cosTheta)
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// colorVec converts a color to 0..1 RGB components.
func colorVec(c Color) math3d.Vec3 {
	return math3d.V3(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

// shadeColor combines a base color with lighting terms.
func shadeColor(base Color, diffuse, specular math3d.Vec3) Color {
	return RGB(
		toByte(float64(base.R)/255*diffuse.X+specular.X),
		toByte(float64(base.G)/255*diffuse.Y+specular.Y),
		toByte(float64(base.B)/255*diffuse.Z+specular.Z),
	)
}

func toByte(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
