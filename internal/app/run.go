package app

import (
	"context"
	"fmt"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/modelview/internal/viewer"
	"github.com/taigrr/modelview/pkg/math3d"
	"github.com/taigrr/modelview/pkg/render"
	"golang.org/x/sync/errgroup"
)

// terminalUI is the state owned by the frame loop.
type terminalUI struct {
	*App
	term   *uv.Terminal
	width  int
	height int

	screen *render.TerminalRenderer
	fb     *render.Framebuffer
	raster *render.Rasterizer
	hud    *HUD
	prompt Prompt

	dragging  bool
	dragRight bool
	lastX     int
	lastY     int
}

// Run takes over the terminal until ctx is cancelled or the user quits.
// The start-up model and texture load in the background like any other.
func (a *App) Run(ctx context.Context) error {
	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ui := &terminalUI{App: a, term: term, hud: NewHUD()}
	ui.resize(width, height)

	if a.texturePath != "" {
		a.viewer.OpenTexture(ctx, a.texturePath)
	}
	if a.modelPath != "" {
		a.viewer.OpenModel(ctx, a.modelPath)
	}

	events := make(chan uv.Event, 64)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-term.Events():
				if !ok {
					return nil
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	g.Go(func() error {
		defer cancel()
		return ui.loop(ctx, events)
	})
	return g.Wait()
}

func (ui *terminalUI) loop(ctx context.Context, events <-chan uv.Event) error {
	ticker := time.NewTicker(time.Second / time.Duration(max(ui.cfg.Viewer.FPS, 1)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if quit := ui.handle(ctx, ev); quit {
				return nil
			}
		case res := <-ui.viewer.Results():
			ui.viewer.Apply(res)
		case <-ticker.C:
			if err := ui.frame(); err != nil {
				return err
			}
		}
	}
}

func (ui *terminalUI) resize(width, height int) {
	ui.width, ui.height = width, height
	scene, _, _ := layout(width, height)
	ui.screen = render.NewTerminalRenderer(ui.term, scene)
	w, h := ui.screen.FramebufferSize()
	ui.fb = render.NewFramebuffer(max(w, 1), max(h, 1))
	ui.raster = render.NewRasterizer(ui.camera, ui.fb)
}

func (ui *terminalUI) frame() error {
	ui.orbit.Update()
	ui.drawScene(ui.raster, ui.fb)
	ui.screen.Render(ui.fb)

	_, controls, errRow := layout(ui.width, ui.height)
	st := ui.viewer.State()
	switch {
	case ui.prompt.Active():
		drawLine(ui.term, controls, ui.prompt.View(ui.width))
	case ui.view.LightMode:
		drawLine(ui.term, controls, lightLine(ui.width))
	default:
		drawLine(ui.term, controls, controlRow(ui.view, ui.width))
	}
	drawLine(ui.term, errRow, errorLine(st.Err, ui.width))

	ui.hud.UpdateFPS()
	if ui.view.ShowHUD {
		line := ui.hud.Line(st, ui.lights.Environment.Name, ui.orbit.Goal().Distance,
			ui.raster.CullingStats, ui.width)
		drawLine(ui.term, uv.Rect(0, 0, ui.width, 1), line)
	}

	if err := ui.screen.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// handle applies one input event and reports whether to quit.
func (ui *terminalUI) handle(ctx context.Context, ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		ui.term.Erase()
		ui.term.Resize(ev.Width, ev.Height)
		ui.resize(ev.Width, ev.Height)

	case uv.PasteEvent:
		if ui.prompt.Active() {
			ui.prompt.Insert(ev.Content)
		}

	case uv.KeyPressEvent:
		if ev.MatchString("ctrl+c") {
			return true
		}
		if ui.prompt.Active() {
			ui.promptKey(ctx, ev)
			return false
		}
		return ui.key(ev)

	case uv.MouseClickEvent:
		if ui.view.LightMode {
			ui.lights.Spot.Position = ui.view.PendingLight
			ui.view.LightMode = false
			ui.log.Debug("spot light moved", "position", ui.lights.Spot.Position)
			return false
		}
		ui.dragging = true
		ui.dragRight = ev.Button == uv.MouseRight
		ui.lastX, ui.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		ui.dragging = false

	case uv.MouseMotionEvent:
		if ui.view.LightMode {
			ui.view.PendingLight = ui.lightAt(ev.X, ev.Y)
			return false
		}
		if !ui.dragging {
			return false
		}
		dx, dy := float64(ev.X-ui.lastX), float64(ev.Y-ui.lastY)
		ui.lastX, ui.lastY = ev.X, ev.Y
		if ui.dragRight {
			// cells are twice as tall as they are wide
			ui.orbit.Pan(dx*4, dy*8)
		} else {
			ui.orbit.Rotate(dx*2, dy*4)
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			ui.orbit.Zoom(1)
		case uv.MouseWheelDown:
			ui.orbit.Zoom(-1)
		}
	}
	return false
}

func (ui *terminalUI) key(ev uv.KeyPressEvent) bool {
	switch {
	case ev.MatchString("escape"):
		if ui.view.LightMode {
			ui.view.LightMode = false
			return false
		}
		return true
	case ev.MatchString("o"):
		ui.prompt.Open(viewer.ModelResult)
	case ev.MatchString("i"):
		ui.prompt.Open(viewer.TextureResult)
	case ev.MatchString("r"):
		ui.orbit.Reset()
	case ev.MatchString("t"):
		ui.view.TextureEnabled = !ui.view.TextureEnabled
	case ev.MatchString("x"):
		ui.view.ToggleWireframe()
	case ev.MatchString("b"):
		ui.view.ShowBounds = !ui.view.ShowBounds
	case ev.MatchString("l"):
		ui.view.LightMode = true
		ui.view.PendingLight = ui.lights.Spot.Position
	case ev.MatchString("?"), ev.MatchString("shift+/"):
		ui.view.ShowHUD = !ui.view.ShowHUD
	case ev.MatchString("+"), ev.MatchString("="):
		ui.orbit.Zoom(1)
	case ev.MatchString("-"), ev.MatchString("_"):
		ui.orbit.Zoom(-1)
	}
	return false
}

func (ui *terminalUI) promptKey(ctx context.Context, ev uv.KeyPressEvent) {
	switch {
	case ev.MatchString("escape"):
		ui.prompt.Close()
	case ev.MatchString("enter"):
		ui.prompt.Close()
		path := ui.prompt.Value()
		if path == "" {
			return
		}
		ui.log.Info("load requested", "kind", ui.prompt.Kind().String(), "path", path)
		if ui.prompt.Kind() == viewer.TextureResult {
			ui.viewer.OpenTexture(ctx, path)
		} else {
			ui.viewer.OpenModel(ctx, path)
		}
	case ev.MatchString("backspace"):
		ui.prompt.Backspace()
	default:
		if ev.Text != "" {
			ui.prompt.Insert(ev.Text)
		}
	}
}

func (ui *terminalUI) lightAt(x, y int) math3d.Vec3 {
	scene, _, _ := layout(ui.width, ui.height)
	spot := ui.lights.Spot
	radius := spot.Position.Sub(spot.Target).Len()
	if radius == 0 {
		radius = ui.cfg.Camera.Distance
	}
	return ScreenToLightPos(ui.camera, spot.Target, radius, x, y, scene.Dx(), scene.Dy())
}
