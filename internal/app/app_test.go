package app

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/modelview/internal/config"
	"github.com/taigrr/modelview/internal/viewer"
	"github.com/taigrr/modelview/pkg/math3d"
	"github.com/taigrr/modelview/pkg/render"
)

const cubeOBJ = `# unit cube
o cube
v -1 -1  1
v  1 -1  1
v  1  1  1
v -1  1  1
v -1 -1 -1
v  1 -1 -1
v  1  1 -1
v -1  1 -1
f 1 2 3 4
f 6 5 8 7
f 2 6 7 3
f 5 1 4 8
f 4 3 7 8
f 5 6 2 1
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newApp(t *testing.T, opts Options) *App {
	t.Helper()
	if opts.Config == (config.Config{}) {
		opts.Config = config.Default()
	}
	a, err := New(context.Background(), opts)
	require.NoError(t, err)
	return a
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Viewer.TargetSize = -1
	_, err := New(context.Background(), Options{Config: cfg})
	require.Error(t, err)
}

func TestSnapshot(t *testing.T) {
	a := newApp(t, Options{ModelPath: writeFile(t, "cube.obj", cubeOBJ)})
	out := filepath.Join(t.TempDir(), "shot.png")

	require.NoError(t, a.Snapshot(out, 64, 48))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	r, g, b, _ := img.At(32, 24).RGBA()
	bg := uint32(0x1e) * 0x101
	assert.False(t, r == bg && g == bg && b == bg, "model should cover the center")
	r, g, b, _ = img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{bg, bg, bg}, []uint32{r, g, b})

	st := a.State()
	require.NotNil(t, st.Model)
	assert.Equal(t, "cube.obj", st.ModelName)
	assert.InDelta(t, 10, st.Model.Bounds().Size().X, 1e-6)
}

func TestSnapshotEnvironmentBackground(t *testing.T) {
	cfg := config.Default()
	cfg.Viewer.Background = ""
	cfg.Lighting.Environment = "sunset"
	a := newApp(t, Options{Config: cfg})
	out := filepath.Join(t.TempDir(), "empty.png")

	require.NoError(t, a.Snapshot(out, 8, 8))
	env, ok := render.LookupEnvironment("sunset")
	require.True(t, ok)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(env.Top.R)*0x101, r)
	assert.Equal(t, uint32(env.Top.G)*0x101, g)
	assert.Equal(t, uint32(env.Top.B)*0x101, b)
}

func TestSnapshotLoadError(t *testing.T) {
	a := newApp(t, Options{ModelPath: writeFile(t, "model.stl", "corrupt")})
	out := filepath.Join(t.TempDir(), "shot.png")

	err := a.Snapshot(out, 16, 16)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.stl")
	assert.Equal(t, viewer.MsgModelError, a.State().Err)
	assert.Nil(t, a.State().Model)
	assert.NoFileExists(t, out)
}

func TestSnapshotBadSize(t *testing.T) {
	a := newApp(t, Options{})
	require.Error(t, a.Snapshot(filepath.Join(t.TempDir(), "x.png"), 0, 10))
}

func TestExport(t *testing.T) {
	a := newApp(t, Options{ModelPath: writeFile(t, "cube.obj", cubeOBJ)})
	out := filepath.Join(t.TempDir(), "cube.glb")

	require.NoError(t, a.Export(out))
	doc, err := gltf.Open(out)
	require.NoError(t, err)
	assert.Len(t, doc.Meshes, 1)
}

func TestExportWithoutModel(t *testing.T) {
	a := newApp(t, Options{})
	require.Error(t, a.Export(filepath.Join(t.TempDir(), "x.glb")))
}

func TestLayout(t *testing.T) {
	scene, controls, errRow := layout(80, 24)
	assert.Equal(t, 22, scene.Dy())
	assert.Equal(t, 22, controls.Min.Y)
	assert.Equal(t, 23, errRow.Min.Y)
	assert.Equal(t, 80, controls.Dx())

	scene, controls, _ = layout(80, 2)
	assert.Equal(t, 2, scene.Dy())
	assert.True(t, controls.Empty())
}

func TestPrompt(t *testing.T) {
	var p Prompt
	assert.False(t, p.Active())

	p.Open(viewer.TextureResult)
	p.Insert("wood")
	p.Insert(".jpg\n")
	p.Backspace()
	p.Insert("g")
	assert.True(t, p.Active())
	assert.Equal(t, viewer.TextureResult, p.Kind())
	assert.Equal(t, "wood.jpg", p.Value())
	assert.Contains(t, p.View(60), "Texture (.jpg): wood.jpg")

	p.Close()
	p.Open(viewer.ModelResult)
	assert.Empty(t, p.Value())
	assert.Contains(t, p.View(60), "Model (.obj, .stl)")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in, want string
	}{
		{"  model.obj ", "model.obj"},
		{`"/tmp/my model.stl"`, "/tmp/my model.stl"},
		{"'/tmp/a.obj'", "/tmp/a.obj"},
		{"~/a.obj", filepath.Join(home, "a.obj")},
		{"~user/a.obj", "~user/a.obj"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandPath(tt.in), tt.in)
	}
}

func TestControlAndErrorRows(t *testing.T) {
	row := controlRow(NewViewState(), 200)
	for _, label := range []string{"open model", "open texture", "wireframe", "quit"} {
		assert.Contains(t, row, label)
	}
	assert.Contains(t, errorLine(viewer.MsgTextureError, 100), viewer.MsgTextureError)
	assert.NotContains(t, errorLine("", 10), "Error")
}

func TestHUDLine(t *testing.T) {
	h := NewHUD()
	line := h.Line(viewer.State{}, "city", 12.5, render.CullingStats{}, 120)
	assert.Contains(t, line, "no model")
	assert.Contains(t, line, "env city")
	assert.Contains(t, line, "dist 12.5")
	assert.True(t, strings.Contains(line, "FPS"))
}

func TestToggleWireframe(t *testing.T) {
	v := NewViewState()
	v.ToggleWireframe()
	assert.Equal(t, RenderModeWireframe, v.RenderMode)
	v.ToggleWireframe()
	assert.Equal(t, RenderModeShaded, v.RenderMode)
}

func TestScreenToLightPos(t *testing.T) {
	cam := render.NewCamera()
	cam.SetPosition(math3d.V3(0, 0, 10))
	cam.LookAt(math3d.Zero3())

	center := ScreenToLightPos(cam, math3d.Zero3(), 5, 40, 12, 80, 24)
	assert.InDelta(t, 0, center.X, 1e-9)
	assert.InDelta(t, 0, center.Y, 1e-9)
	assert.InDelta(t, 5, center.Z, 1e-9)

	top := ScreenToLightPos(cam, math3d.Zero3(), 5, 40, 0, 80, 24)
	assert.InDelta(t, 5, top.Y, 1e-9)
	assert.InDelta(t, 0, top.Z, 1e-9)

	right := ScreenToLightPos(cam, math3d.Zero3(), 5, 80, 12, 80, 24)
	assert.InDelta(t, 5, right.X, 1e-9)
}
