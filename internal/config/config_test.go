package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/modelview/pkg/math3d"
	"github.com/taigrr/modelview/pkg/render"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modelview.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10.0, cfg.Viewer.TargetSize)
	assert.Equal(t, 75.0, cfg.Camera.FOV)
	assert.Equal(t, 15.0, cfg.Camera.Distance)
	assert.Equal(t, "#1e1e1e", cfg.Viewer.Background)
	assert.Equal(t, "city", cfg.Lighting.Environment)
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
viewer {
  target_size      = 20
  fps              = 30
  background       = "30,30,40"
  texture_max_size = 256
}
camera {
  fov      = 60
  distance = 25
}
material {
  color     = "#ff8800"
  metalness = 0.2
  roughness = 0.7
}
lighting {
  ambient     = 0.3
  environment = "sunset"
  directional {
    position  = [1, 2, 3]
    intensity = 0.5
  }
  spot {
    position  = [0, 5, 5]
    angle     = 0.3
    penumbra  = 0.5
    intensity = 2
  }
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, Viewer{TargetSize: 20, FPS: 30, Background: "30,30,40", TextureMaxSize: 256}, cfg.Viewer)
	assert.Equal(t, Camera{FOV: 60, Distance: 25}, cfg.Camera)
	assert.Equal(t, Material{Color: "#ff8800", Metalness: 0.2, Roughness: 0.7}, cfg.Material)
	assert.Equal(t, [3]float64{1, 2, 3}, cfg.Lighting.Directional.Position)
	assert.Equal(t, 2.0, cfg.Lighting.Spot.Intensity)

	rig := cfg.LightRig()
	assert.Equal(t, "sunset", rig.Environment.Name)
	assert.Equal(t, math3d.V3(0, 5, 5), rig.Spot.Position)
	assert.Equal(t, 0.3, rig.Ambient)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
camera {
  distance = 30
}
lighting {
  spot {
    intensity = 0
  }
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Camera.Distance = 30
	want.Lighting.Spot.Intensity = 0
	assert.Equal(t, want, cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "viewer {"},
		{"unknown attribute", "viewer {\n  zoom = 2\n}\n"},
		{"unknown block", "scene {\n}\n"},
		{"wrong type", "viewer {\n  fps = \"fast\"\n}\n"},
		{"short position", "lighting {\n  directional {\n    position = [1, 2]\n  }\n}\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"target size", func(c *Config) { c.Viewer.TargetSize = 0 }, "viewer.target_size"},
		{"fps", func(c *Config) { c.Viewer.FPS = 1000 }, "viewer.fps"},
		{"texture size", func(c *Config) { c.Viewer.TextureMaxSize = 4 }, "viewer.texture_max_size"},
		{"background", func(c *Config) { c.Viewer.Background = "blue" }, "viewer.background"},
		{"fov", func(c *Config) { c.Camera.FOV = 180 }, "camera.fov"},
		{"distance", func(c *Config) { c.Camera.Distance = -1 }, "camera.distance"},
		{"color", func(c *Config) { c.Material.Color = "#12" }, "material.color"},
		{"metalness", func(c *Config) { c.Material.Metalness = 2 }, "material.metalness"},
		{"environment", func(c *Config) { c.Lighting.Environment = "moon" }, "lighting.environment"},
		{"spot angle", func(c *Config) { c.Lighting.Spot.Angle = 0 }, "lighting.spot.angle"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Viewer.FPS = 0
	cfg.Camera.Distance = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "viewer.fps")
	assert.Contains(t, err.Error(), "camera.distance")
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    render.Color
		wantErr bool
	}{
		{"#aaaaaa", render.RGB(0xaa, 0xaa, 0xaa), false},
		{"ff8800", render.RGB(0xff, 0x88, 0x00), false},
		{"30, 30, 40", render.RGB(30, 30, 40), false},
		{"256,0,0", render.Color{}, true},
		{"1,2", render.Color{}, true},
		{"#ggg000", render.Color{}, true},
		{"", render.Color{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseColor(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFOVRadians(t *testing.T) {
	cfg := Default()
	cfg.Camera.FOV = 90
	assert.InDelta(t, 1.5707963, cfg.FOVRadians(), 1e-6)
}
