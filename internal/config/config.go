// Package config loads the viewer's optional HCL configuration file and
// merges it over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/taigrr/modelview/pkg/math3d"
	"github.com/taigrr/modelview/pkg/render"
)

// Config is the fully resolved configuration.
type Config struct {
	Viewer   Viewer
	Camera   Camera
	Material Material
	Lighting Lighting
}

// Viewer holds display and loading settings.
type Viewer struct {
	TargetSize     float64
	FPS            int
	Background     string // empty uses the environment gradient
	TextureMaxSize int
}

// Camera holds the initial camera placement.
type Camera struct {
	FOV      float64 // vertical, degrees
	Distance float64
}

// Material is the surface given to STL meshes.
type Material struct {
	Color     string
	Metalness float64
	Roughness float64
}

// Lighting configures the light rig.
type Lighting struct {
	Ambient     float64
	Environment string
	Directional DirectionalLight
	Spot        SpotLight
}

// DirectionalLight configures the directional light.
type DirectionalLight struct {
	Position  [3]float64
	Intensity float64
}

// SpotLight configures the spot light, which always aims at the origin.
type SpotLight struct {
	Position  [3]float64
	Angle     float64
	Penumbra  float64
	Intensity float64
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Viewer: Viewer{
			TargetSize:     10,
			FPS:            60,
			Background:     "#1e1e1e",
			TextureMaxSize: 512,
		},
		Camera: Camera{
			FOV:      75,
			Distance: 15,
		},
		Material: Material{
			Color:     "#aaaaaa",
			Metalness: 0.5,
			Roughness: 0.1,
		},
		Lighting: Lighting{
			Ambient:     0.4,
			Environment: render.DefaultEnvironment,
			Directional: DirectionalLight{Position: [3]float64{10, 10, 10}, Intensity: 0.8},
			Spot: SpotLight{
				Position:  [3]float64{0, 10, 10},
				Angle:     0.2,
				Penumbra:  1,
				Intensity: 1.2,
			},
		},
	}
}

// file mirrors the HCL layout. Every attribute and block is optional.
type file struct {
	Viewer   *viewerBlock   `hcl:"viewer,block"`
	Camera   *cameraBlock   `hcl:"camera,block"`
	Material *materialBlock `hcl:"material,block"`
	Lighting *lightingBlock `hcl:"lighting,block"`
}

type viewerBlock struct {
	TargetSize     *float64 `hcl:"target_size,optional"`
	FPS            *int     `hcl:"fps,optional"`
	Background     *string  `hcl:"background,optional"`
	TextureMaxSize *int     `hcl:"texture_max_size,optional"`
}

type cameraBlock struct {
	FOV      *float64 `hcl:"fov,optional"`
	Distance *float64 `hcl:"distance,optional"`
}

type materialBlock struct {
	Color     *string  `hcl:"color,optional"`
	Metalness *float64 `hcl:"metalness,optional"`
	Roughness *float64 `hcl:"roughness,optional"`
}

type lightingBlock struct {
	Ambient     *float64          `hcl:"ambient,optional"`
	Environment *string           `hcl:"environment,optional"`
	Directional *directionalBlock `hcl:"directional,block"`
	Spot        *spotBlock        `hcl:"spot,block"`
}

type directionalBlock struct {
	Position  []float64 `hcl:"position,optional"`
	Intensity *float64  `hcl:"intensity,optional"`
}

type spotBlock struct {
	Position  []float64 `hcl:"position,optional"`
	Angle     *float64  `hcl:"angle,optional"`
	Penumbra  *float64  `hcl:"penumbra,optional"`
	Intensity *float64  `hcl:"intensity,optional"`
}

// Load reads an HCL file over the defaults. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("parse config %s: %w", path, diags)
	}

	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return cfg, fmt.Errorf("decode config %s: %w", path, diags)
	}
	if err := raw.apply(&cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (f *file) apply(cfg *Config) error {
	if v := f.Viewer; v != nil {
		set(&cfg.Viewer.TargetSize, v.TargetSize)
		set(&cfg.Viewer.FPS, v.FPS)
		set(&cfg.Viewer.Background, v.Background)
		set(&cfg.Viewer.TextureMaxSize, v.TextureMaxSize)
	}
	if c := f.Camera; c != nil {
		set(&cfg.Camera.FOV, c.FOV)
		set(&cfg.Camera.Distance, c.Distance)
	}
	if m := f.Material; m != nil {
		set(&cfg.Material.Color, m.Color)
		set(&cfg.Material.Metalness, m.Metalness)
		set(&cfg.Material.Roughness, m.Roughness)
	}
	if l := f.Lighting; l != nil {
		set(&cfg.Lighting.Ambient, l.Ambient)
		set(&cfg.Lighting.Environment, l.Environment)
		if d := l.Directional; d != nil {
			if err := setVec(&cfg.Lighting.Directional.Position, d.Position, "lighting.directional.position"); err != nil {
				return err
			}
			set(&cfg.Lighting.Directional.Intensity, d.Intensity)
		}
		if s := l.Spot; s != nil {
			if err := setVec(&cfg.Lighting.Spot.Position, s.Position, "lighting.spot.position"); err != nil {
				return err
			}
			set(&cfg.Lighting.Spot.Angle, s.Angle)
			set(&cfg.Lighting.Spot.Penumbra, s.Penumbra)
			set(&cfg.Lighting.Spot.Intensity, s.Intensity)
		}
	}
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setVec(dst *[3]float64, src []float64, name string) error {
	if src == nil {
		return nil
	}
	if len(src) != 3 {
		return fmt.Errorf("%s needs 3 numbers, got %d", name, len(src))
	}
	copy(dst[:], src)
	return nil
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Viewer.TargetSize > 0 && !math.IsInf(c.Viewer.TargetSize, 0),
		"viewer.target_size must be positive, got %v", c.Viewer.TargetSize)
	check(c.Viewer.FPS >= 1 && c.Viewer.FPS <= 240, "viewer.fps must be between 1 and 240, got %d", c.Viewer.FPS)
	check(c.Viewer.TextureMaxSize >= 16, "viewer.texture_max_size must be at least 16, got %d", c.Viewer.TextureMaxSize)
	if c.Viewer.Background != "" {
		_, err := ParseColor(c.Viewer.Background)
		check(err == nil, "viewer.background: %v", err)
	}

	check(c.Camera.FOV > 1 && c.Camera.FOV < 179, "camera.fov must be between 1 and 179 degrees, got %v", c.Camera.FOV)
	check(c.Camera.Distance > 0, "camera.distance must be positive, got %v", c.Camera.Distance)

	_, err := ParseColor(c.Material.Color)
	check(err == nil, "material.color: %v", err)
	check(inUnit(c.Material.Metalness), "material.metalness must be in [0, 1], got %v", c.Material.Metalness)
	check(inUnit(c.Material.Roughness), "material.roughness must be in [0, 1], got %v", c.Material.Roughness)

	l := c.Lighting
	check(l.Ambient >= 0, "lighting.ambient must not be negative, got %v", l.Ambient)
	_, ok := render.LookupEnvironment(l.Environment)
	check(ok, "lighting.environment %q is not one of %s", l.Environment, strings.Join(render.EnvironmentNames(), ", "))
	check(l.Directional.Intensity >= 0, "lighting.directional.intensity must not be negative")
	check(l.Spot.Intensity >= 0, "lighting.spot.intensity must not be negative")
	check(l.Spot.Angle > 0 && l.Spot.Angle <= math.Pi/2, "lighting.spot.angle must be in (0, pi/2], got %v", l.Spot.Angle)
	check(inUnit(l.Spot.Penumbra), "lighting.spot.penumbra must be in [0, 1], got %v", l.Spot.Penumbra)

	return errors.Join(errs...)
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

// ParseColor accepts "#rrggbb", "rrggbb" or "r,g,b" with 0-255 components.
func ParseColor(s string) (render.Color, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return render.Color{}, fmt.Errorf("color %q: want r,g,b", s)
		}
		var c [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return render.Color{}, fmt.Errorf("color %q: component %q is not 0-255", s, p)
			}
			c[i] = uint8(n)
		}
		return render.RGB(c[0], c[1], c[2]), nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return render.Color{}, fmt.Errorf("color %q: want #rrggbb or r,g,b", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return render.Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return render.Hex(uint32(v)), nil
}

// LightRig converts the lighting settings for the renderer. The config must
// be valid.
func (c Config) LightRig() render.Lighting {
	l := render.DefaultLighting()
	l.Ambient = c.Lighting.Ambient
	if env, ok := render.LookupEnvironment(c.Lighting.Environment); ok {
		l.Environment = env
	}
	d := c.Lighting.Directional
	l.Directional.Position = math3d.V3(d.Position[0], d.Position[1], d.Position[2])
	l.Directional.Intensity = d.Intensity
	s := c.Lighting.Spot
	l.Spot.Position = math3d.V3(s.Position[0], s.Position[1], s.Position[2])
	l.Spot.Angle = s.Angle
	l.Spot.Penumbra = s.Penumbra
	l.Spot.Intensity = s.Intensity
	return l
}

// FOVRadians returns the camera field of view in radians.
func (c Config) FOVRadians() float64 {
	return c.Camera.FOV * math.Pi / 180
}
