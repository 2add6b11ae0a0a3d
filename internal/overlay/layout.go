package overlay

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/1broseidon/imgoverlay/internal/geometry"
)

// Overlay chrome, in pixels.
const (
	framePad      = 5
	toolbarHeight = 30
	buttonHeight  = 22
	buttonPad     = 6
	contentInset  = 5
)

// Action is something a button can trigger.
type Action int

const (
	ActionNone Action = iota
	ActionClearImage
	ActionReloadImage
	ActionOpenSettings
	ActionTransparencyDown
	ActionTransparencyUp
	ActionToggleFrame
	ActionToggleFullscreen
	ActionToggleTopmost
	ActionCloseSettings
)

// Button is a labelled hit area.
type Button struct {
	Label  string
	Action Action
	Bounds geometry.Rect
	Danger bool
}

// Hit returns the action of the first button containing p.
func Hit(buttons []Button, p geometry.Point) Action {
	for _, b := range buttons {
		if b.Bounds.Contains(p) {
			return b.Action
		}
	}
	return ActionNone
}

func labelWidth(label string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(label).Ceil()
}

func newButton(label string, action Action, x, y int) Button {
	return Button{
		Label:  label,
		Action: action,
		Bounds: geometry.NewRect(x, y, labelWidth(label)+2*buttonPad, buttonHeight),
	}
}

// ToolbarButtons lays out the overlay's top bar for a window of the given
// width: reload and clear on the left, settings on the right.
func ToolbarButtons(width int) []Button {
	y := framePad + (toolbarHeight-buttonHeight)/2
	reload := newButton("Reload", ActionReloadImage, framePad, y)
	clearBtn := newButton("Clear", ActionClearImage, reload.Bounds.Right()+framePad, y)
	settings := newButton("Settings", ActionOpenSettings, 0, y)
	settings.Bounds.X = width - framePad - settings.Bounds.Width
	return []Button{reload, clearBtn, settings}
}

// ContentArea is where the image or placeholder is drawn.
func ContentArea(size geometry.Size) geometry.Rect {
	top := framePad + toolbarHeight + framePad
	return geometry.NewRect(framePad, top, size.Width-2*framePad, size.Height-top-framePad)
}

// ScaleToFit scales size up or down to the largest size inside limit that
// keeps its aspect ratio.
func ScaleToFit(size, limit geometry.Size) geometry.Size {
	if size.Width <= 0 || size.Height <= 0 || limit.Width <= 0 || limit.Height <= 0 {
		return geometry.Size{}
	}
	scale := min(float64(limit.Width)/float64(size.Width), float64(limit.Height)/float64(size.Height))
	return geometry.Size{
		Width:  max(1, int(float64(size.Width)*scale)),
		Height: max(1, int(float64(size.Height)*scale)),
	}
}

// imageRect centers an image of the given size in the content area, leaving
// a small inset, scaled to fit.
func imageRect(window, img geometry.Size) geometry.Rect {
	area := ContentArea(window)
	inner := geometry.Size{Width: area.Width - 2*contentInset, Height: area.Height - 2*contentInset}
	fit := ScaleToFit(img, inner)
	return geometry.Rect{
		X:      area.X + (area.Width-fit.Width)/2,
		Y:      area.Y + (area.Height-fit.Height)/2,
		Width:  fit.Width,
		Height: fit.Height,
	}
}

// SettingsButtons lays out the settings panel controls.
func SettingsButtons(width int) []Button {
	const left = 15
	var buttons []Button

	y := 62
	down := newButton("-", ActionTransparencyDown, left, y)
	up := newButton("+", ActionTransparencyUp, width-left-down.Bounds.Width, y)
	buttons = append(buttons, down, up)

	y = 110
	for _, b := range []struct {
		label  string
		action Action
	}{
		{"Toggle Window Frame", ActionToggleFrame},
		{"Toggle Fullscreen", ActionToggleFullscreen},
		{"Toggle Always On Top", ActionToggleTopmost},
	} {
		btn := newButton(b.label, b.action, left, y)
		btn.Bounds.Width = width - 2*left
		buttons = append(buttons, btn)
		y += buttonHeight + 4
	}

	closeBtn := newButton("Close Settings", ActionCloseSettings, 0, y+8)
	closeBtn.Bounds.X = (width - closeBtn.Bounds.Width) / 2
	closeBtn.Danger = true
	return append(buttons, closeBtn)
}

// transparencyTrough is the slider track between the -/+ buttons.
func transparencyTrough(width int) geometry.Rect {
	buttons := SettingsButtons(width)
	down, up := buttons[0].Bounds, buttons[1].Bounds
	return geometry.NewRect(down.Right()+8, down.Y+buttonHeight/2-4, up.X-8-(down.Right()+8), 8)
}

var actionNames = map[Action]string{
	ActionNone:             "none",
	ActionClearImage:       "clear-image",
	ActionReloadImage:      "reload-image",
	ActionOpenSettings:     "open-settings",
	ActionTransparencyDown: "transparency-down",
	ActionTransparencyUp:   "transparency-up",
	ActionToggleFrame:      "toggle-frame",
	ActionToggleFullscreen: "toggle-fullscreen",
	ActionToggleTopmost:    "toggle-topmost",
	ActionCloseSettings:    "close-settings",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}
