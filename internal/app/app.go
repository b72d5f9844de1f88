// Package app is the terminal front end: it owns the viewer state, the
// orbit camera and the light rig, and draws them with the software
// rasterizer either to the terminal or to a PNG file.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/taigrr/modelview/internal/config"
	"github.com/taigrr/modelview/internal/logging"
	"github.com/taigrr/modelview/internal/viewer"
	"github.com/taigrr/modelview/pkg/math3d"
	"github.com/taigrr/modelview/pkg/models"
	"github.com/taigrr/modelview/pkg/render"
)

// Options select what the app shows at start-up.
type Options struct {
	Config      config.Config
	ModelPath   string // optional
	TexturePath string // optional
}

// App holds everything needed to draw a frame.
type App struct {
	cfg        config.Config
	viewer     *viewer.Viewer
	camera     *render.Camera
	orbit      *render.OrbitControls
	lights     render.Lighting
	background *render.Color // nil draws the environment gradient
	view       ViewState
	log        *slog.Logger

	modelPath   string
	texturePath string
}

// New builds an app from a validated configuration. The logger is taken
// from ctx.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)

	mat, err := stlMaterial(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg: cfg,
		viewer: viewer.New(viewer.Options{
			TargetSize:     cfg.Viewer.TargetSize,
			TextureMaxSize: cfg.Viewer.TextureMaxSize,
			STLMaterial:    &mat,
			Logger:         log,
		}),
		camera:      render.NewCamera(),
		orbit:       render.NewOrbitControls(homePose(cfg), cfg.Viewer.FPS),
		lights:      cfg.LightRig(),
		view:        NewViewState(),
		log:         log,
		modelPath:   opts.ModelPath,
		texturePath: opts.TexturePath,
	}
	a.camera.SetFOV(cfg.FOVRadians())
	a.orbit.MaxDistance = math.Max(a.orbit.MaxDistance, cfg.Camera.Distance*4)

	if cfg.Viewer.Background != "" {
		bg, err := config.ParseColor(cfg.Viewer.Background)
		if err != nil {
			return nil, err
		}
		a.background = &bg
	}
	return a, nil
}

func homePose(cfg config.Config) render.OrbitPose {
	return render.OrbitPose{
		Target:   math3d.Zero3(),
		Azimuth:  0,
		Polar:    math.Pi / 2,
		Distance: cfg.Camera.Distance,
	}
}

func stlMaterial(cfg config.Config) (models.Material, error) {
	mat := models.DefaultSTLMaterial()
	c, err := config.ParseColor(cfg.Material.Color)
	if err != nil {
		return mat, fmt.Errorf("material: %w", err)
	}
	mat.Color = c
	mat.Metalness = cfg.Material.Metalness
	mat.Roughness = cfg.Material.Roughness
	return mat, nil
}

// State exposes the viewer state.
func (a *App) State() viewer.State {
	return a.viewer.State()
}

// LoadNow reads and applies the start-up model and texture synchronously.
// It returns the first load error; the state carries the user message.
func (a *App) LoadNow() error {
	var errs []error
	if a.texturePath != "" {
		res := viewer.Result{Kind: viewer.TextureResult, Name: filepath.Base(a.texturePath)}
		data, err := os.ReadFile(a.texturePath)
		if err == nil {
			res.Texture, err = a.viewer.DecodeTexture(a.texturePath, data)
		}
		res.Err = err
		a.viewer.Apply(res)
		if err != nil {
			errs = append(errs, fmt.Errorf("texture %s: %w", a.texturePath, err))
		}
	}
	if a.modelPath != "" {
		res := viewer.Result{Kind: viewer.ModelResult, Name: filepath.Base(a.modelPath)}
		data, err := os.ReadFile(a.modelPath)
		if err == nil {
			res.Model, err = a.viewer.LoadModel(a.modelPath, data)
		}
		res.Err = err
		a.viewer.Apply(res)
		if err != nil {
			errs = append(errs, fmt.Errorf("model %s: %w", a.modelPath, err))
		}
	}
	return errors.Join(errs...)
}

// drawScene renders the current state into the rasterizer's framebuffer.
func (a *App) drawScene(r *render.Rasterizer, fb *render.Framebuffer) {
	a.camera.SetAspectRatio(float64(fb.Width) / float64(max(fb.Height, 1)))
	a.orbit.Apply(a.camera)

	if a.background != nil {
		fb.Clear(*a.background)
	} else {
		env := a.lights.Environment
		fb.ClearGradient(env.Top, env.Bottom)
	}
	r.ClearDepth()
	r.ResetCullingStats()

	lights := a.lights
	if a.view.LightMode {
		lights.Spot.Position = a.view.PendingLight
	}

	st := a.viewer.State()
	if m := st.Model; m != nil {
		transform := m.Matrix()
		for _, mesh := range m.Meshes {
			if a.view.RenderMode == RenderModeWireframe {
				r.DrawMeshWireframe(mesh, transform, wireColor)
				continue
			}
			surf := mesh.Material.Surface()
			if !a.view.TextureEnabled {
				surf.Texture = nil
			}
			r.DrawMesh(mesh, transform, surf, &lights, a.camera.Position)
		}
		if a.view.ShowBounds {
			r.DrawBox(m.Bounds(), boundsColor)
			r.DrawAxes(math3d.Zero3(), a.cfg.Viewer.TargetSize*0.75)
		}
	}

	if a.view.LightMode {
		r.DrawLine3D(lights.Spot.Position, lights.Spot.Target, lightColor)
		r.DrawMarker(lights.Spot.Position, lightColor)
	}
}

var (
	wireColor   = render.RGB(0, 255, 128)
	boundsColor = render.RGB(255, 200, 0)
	lightColor  = render.RGB(255, 230, 80)
)

// Snapshot loads the start-up files, renders one frame at width x height
// pixels and writes it to path as PNG.
func (a *App) Snapshot(path string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("snapshot size %dx%d: must be positive", width, height)
	}
	if err := a.LoadNow(); err != nil {
		return err
	}
	a.orbit.Snap()

	fb := render.NewFramebuffer(width, height)
	r := render.NewRasterizer(a.camera, fb)
	a.drawScene(r, fb)

	if err := fb.SavePNG(path); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	a.log.Info("snapshot written", "path", path, "width", width, "height", height,
		"meshes_drawn", r.CullingStats.MeshesDrawn)
	return nil
}

// Export loads the start-up files and writes the normalized model as GLB.
func (a *App) Export(path string) error {
	if a.modelPath == "" {
		return errors.New("export: no model given")
	}
	if err := a.LoadNow(); err != nil {
		return err
	}
	m := a.viewer.State().Model
	if err := models.ExportGLB(m, path); err != nil {
		return err
	}
	a.log.Info("model exported", "path", path, "triangles", m.TriangleCount())
	return nil
}
