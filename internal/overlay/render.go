package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/1broseidon/imgoverlay/internal/config"
	"github.com/1broseidon/imgoverlay/internal/geometry"
)

// ErrNoImage is returned by operations that need a loaded image.
var ErrNoImage = errors.New("no image loaded")

const placeholderText = "Load Image"

// DecodeFile reads and decodes an image in any registered format.
func DecodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return img, format, nil
}

func toImageRect(r geometry.Rect) image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

func fill(dst draw.Image, r geometry.Rect, c color.Color) {
	draw.Draw(dst, toImageRect(r), &image.Uniform{c}, image.Point{}, draw.Src)
}

func outline(dst draw.Image, r geometry.Rect, c color.Color) {
	fill(dst, geometry.NewRect(r.X, r.Y, r.Width, 1), c)
	fill(dst, geometry.NewRect(r.X, r.Bottom()-1, r.Width, 1), c)
	fill(dst, geometry.NewRect(r.X, r.Y, 1, r.Height), c)
	fill(dst, geometry.NewRect(r.Right()-1, r.Y, 1, r.Height), c)
}

// drawText draws s with its top-left corner at (x, y).
func drawText(dst draw.Image, x, y int, s string, c color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(s)
}

func drawCentered(dst draw.Image, r geometry.Rect, s string, c color.Color) {
	w := labelWidth(s)
	drawText(dst, r.X+(r.Width-w)/2, r.Y+(r.Height-basicfont.Face7x13.Height)/2, s, c)
}

func drawButton(dst draw.Image, b Button, theme config.Theme) {
	bg := theme.Button
	if b.Danger {
		bg = theme.Danger
	}
	fill(dst, b.Bounds, bg)
	outline(dst, b.Bounds, theme.Panel)
	drawCentered(dst, b.Bounds, b.Label, theme.Foreground)
}

// RenderFrame paints the overlay at the given window size: the top bar, the
// sunken content area and either img scaled to fit or the placeholder.
func RenderFrame(size geometry.Size, theme config.Theme, img image.Image) *image.RGBA {
	size.Width = max(size.Width, 1)
	size.Height = max(size.Height, 1)
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	fill(dst, geometry.Rect{Width: size.Width, Height: size.Height}, theme.Background)

	bar := geometry.NewRect(framePad, framePad, size.Width-2*framePad, toolbarHeight)
	fill(dst, bar, theme.Background)
	for _, b := range ToolbarButtons(size.Width) {
		drawButton(dst, b, theme)
	}

	area := ContentArea(size)
	fill(dst, area, theme.Panel)
	outline(dst, area, theme.Trough)

	if img == nil {
		drawCentered(dst, area, placeholderText, theme.Foreground)
		return dst
	}

	b := img.Bounds()
	target := imageRect(size, geometry.Size{Width: b.Dx(), Height: b.Dy()})
	if target.Empty() {
		return dst
	}
	xdraw.CatmullRom.Scale(dst, toImageRect(target), img, b, xdraw.Over, nil)
	return dst
}

// PanelState is what the settings panel displays.
type PanelState struct {
	Transparency float64
	Decoration   string
	AlwaysOnTop  bool
	Fullscreen   bool
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// RenderSettings paints the settings panel.
func RenderSettings(size geometry.Size, theme config.Theme, state PanelState) *image.RGBA {
	size.Width = max(size.Width, 1)
	size.Height = max(size.Height, 1)
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	fill(dst, geometry.Rect{Width: size.Width, Height: size.Height}, theme.Background)

	drawCentered(dst, geometry.NewRect(0, 12, size.Width, 16), "Overlay Settings", theme.Foreground)
	drawText(dst, 15, 42, fmt.Sprintf("Transparency: %.2f", state.Transparency), theme.Foreground)

	trough := transparencyTrough(size.Width)
	fill(dst, trough, theme.Trough)
	frac := (state.Transparency - minTransparency) / (maxTransparency - minTransparency)
	filled := trough
	filled.Width = int(float64(trough.Width) * min(max(frac, 0), 1))
	fill(dst, filled, theme.Foreground)

	drawText(dst, 15, 92, fmt.Sprintf("Frame: %s  Top: %s  Full: %s",
		state.Decoration, onOff(state.AlwaysOnTop), onOff(state.Fullscreen)), theme.Foreground)

	for _, b := range SettingsButtons(size.Width) {
		drawButton(dst, b, theme)
	}
	return dst
}
