package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/modelview/internal/viewer"
	"github.com/taigrr/modelview/pkg/render"
)

var (
	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d0d0d0")).
			Background(lipgloss.Color("#262626"))
	keyStyle = barStyle.
			Foreground(lipgloss.Color("#5fd7ff")).
			Bold(true)
	checkStyle = barStyle.
			Foreground(lipgloss.Color("#87ff87"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#af0000")).
			Bold(true)
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#005f87"))
	lightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffd75f")).
			Background(lipgloss.Color("#000000")).
			Bold(true)
	hudStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87ff87")).
			Background(lipgloss.Color("#000000"))
)

// layout splits the terminal into the scene, the control row and the error
// row. Terminals too short for the rows give everything to the scene.
func layout(width, height int) (scene, controls, errRow uv.Rectangle) {
	if height < 3 {
		return uv.Rect(0, 0, width, height), uv.Rectangle{}, uv.Rectangle{}
	}
	scene = uv.Rect(0, 0, width, height-2)
	controls = uv.Rect(0, height-2, width, 1)
	errRow = uv.Rect(0, height-1, width, 1)
	return scene, controls, errRow
}

func fill(style lipgloss.Style, width int, s string) string {
	return style.Width(width).MaxWidth(width).Render(s)
}

func checkbox(on bool) string {
	if on {
		return checkStyle.Render("[✓]")
	}
	return barStyle.Render("[ ]")
}

// controlRow renders the key legend with the current toggles.
func controlRow(v ViewState, width int) string {
	item := func(key, label string) string {
		return keyStyle.Render(key) + barStyle.Render(" "+label+"  ")
	}
	row := barStyle.Render(" ") +
		item("o", "open model") +
		item("i", "open texture") +
		item("r", "reset") +
		checkbox(v.TextureEnabled) + item(" t", "texture") +
		checkbox(v.RenderMode == RenderModeWireframe) + item(" x", "wireframe") +
		checkbox(v.ShowBounds) + item(" b", "bounds") +
		item("l", "light") +
		item("?", "info") +
		item("esc", "quit")
	return fill(barStyle, width, row)
}

// errorLine renders msg, or a blank row when there is none.
func errorLine(msg string, width int) string {
	if msg == "" {
		return fill(lipgloss.NewStyle(), width, "")
	}
	return fill(errorStyle, width, " "+msg)
}

func lightLine(width int) string {
	return fill(lightStyle, width, " ◉ LIGHT MODE - move the mouse to place the spot light, click to set, esc to cancel")
}

// HUD tracks frame rate and renders the info overlay.
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a HUD.
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS counts a frame.
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Line renders the overlay: frame rate, file names, triangle count, camera
// distance and the environment preset.
func (h *HUD) Line(st viewer.State, env string, distance float64, stats render.CullingStats, width int) string {
	parts := []string{fmt.Sprintf("%.0f FPS", h.fps)}
	if st.Model != nil {
		parts = append(parts,
			st.ModelName,
			fmt.Sprintf("%d tris", st.Model.TriangleCount()),
			fmt.Sprintf("%d/%d meshes", stats.MeshesDrawn, stats.MeshesTested))
	} else {
		parts = append(parts, "no model")
	}
	if st.TextureName != "" {
		parts = append(parts, "tex "+st.TextureName)
	}
	parts = append(parts, fmt.Sprintf("dist %.1f", distance), "env "+env)
	return fill(hudStyle, width, " "+strings.Join(parts, " · "))
}

// Prompt is a one-line path editor.
type Prompt struct {
	kind   viewer.ResultKind
	value  []rune
	active bool
}

// Open starts editing a path for kind, discarding earlier input.
func (p *Prompt) Open(kind viewer.ResultKind) {
	p.kind = kind
	p.value = p.value[:0]
	p.active = true
}

// Close stops editing.
func (p *Prompt) Close() { p.active = false }

// Active reports whether the prompt is shown.
func (p *Prompt) Active() bool { return p.active }

// Kind is the load the prompt was opened for.
func (p *Prompt) Kind() viewer.ResultKind { return p.kind }

// Insert appends typed or pasted text. Line breaks are dropped.
func (p *Prompt) Insert(s string) {
	s = strings.NewReplacer("\r", "", "\n", "").Replace(s)
	p.value = append(p.value, []rune(s)...)
}

// Backspace removes the last rune.
func (p *Prompt) Backspace() {
	if len(p.value) > 0 {
		p.value = p.value[:len(p.value)-1]
	}
}

// Value returns the entered path with quotes and a leading ~ resolved.
func (p *Prompt) Value() string {
	return expandPath(string(p.value))
}

// View renders the prompt row.
func (p *Prompt) View(width int) string {
	label := "Model (.obj, .stl)"
	if p.kind == viewer.TextureResult {
		label = "Texture (.jpg)"
	}
	return fill(promptStyle, width, fmt.Sprintf(" %s: %s█", label, string(p.value)))
}

func expandPath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	if s == "~" || strings.HasPrefix(s, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, strings.TrimPrefix(s, "~"))
		}
	}
	return s
}

// drawLine paints a styled string into a screen region.
func drawLine(scr uv.Screen, area uv.Rectangle, s string) {
	if area.Empty() {
		return
	}
	uv.NewStyledString(s).Draw(scr, area)
}
