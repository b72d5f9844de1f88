package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Screen is a cell grid that can be flushed to the terminal.
// *uv.Terminal satisfies it.
type Screen interface {
	uv.Screen
	Display() error
}

// TerminalRenderer draws a framebuffer into a rectangular region of a
// terminal screen. Each cell shows two vertically stacked pixels.
type TerminalRenderer struct {
	scr  Screen
	area uv.Rectangle
}

// NewTerminalRenderer creates a renderer for the given screen region.
func NewTerminalRenderer(scr Screen, area uv.Rectangle) *TerminalRenderer {
	return &TerminalRenderer{scr: scr, area: area}
}

// FramebufferSize returns the pixel size matching the region: one column per
// cell and two rows per cell.
func (r *TerminalRenderer) FramebufferSize() (width, height int) {
	return r.area.Dx(), r.area.Dy() * 2
}

// Render copies the framebuffer into the screen's cell buffer.
func (r *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(r.scr, r.area)
}

// Flush sends pending cell changes to the terminal.
func (r *TerminalRenderer) Flush() error {
	return r.scr.Display()
}

// Draw writes the framebuffer to the screen region as upper half blocks:
// foreground is the even pixel row, background the odd one.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			cell := halfBlock(fb.GetPixel(x, topY), fb.GetPixel(x, topY+1))
			scr.SetCell(col, row, &cell)
		}
	}
}

func halfBlock(top, bottom Color) uv.Cell {
	return uv.Cell{
		Content: "▀",
		Width:   1,
		Style: uv.Style{
			Fg: rgbaToColor(top),
			Bg: rgbaToColor(bottom),
		},
	}
}

// rgbaToColor maps fully transparent pixels to the terminal default color.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Color is an alias for color.RGBA.
type Color = color.RGBA

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Hex creates an opaque color from 0xRRGGBB.
func Hex(v uint32) Color {
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}
