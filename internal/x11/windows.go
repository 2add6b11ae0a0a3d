package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/imgoverlay/internal/geometry"
)

// WindowOptions configures a new top-level window.
type WindowOptions struct {
	Title       string
	Class       string
	Bounds      geometry.Rect
	Background  uint32
	Borderless  bool
	AlwaysOnTop bool
	// Logger receives failures to set window manager hints. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// windowHint is a best-effort window manager property write.
type windowHint struct {
	name string
	set  func() error
}

// applyHints runs every hint and logs the ones that fail. A missing hint only
// degrades how the window manager treats the window.
func applyHints(log *slog.Logger, win xproto.Window, hints []windowHint) {
	if log == nil {
		log = slog.Default()
	}
	for _, h := range hints {
		if err := h.set(); err != nil {
			log.Debug("failed to set window hint", "window", win, "hint", h.name, "error", err)
		}
	}
}

// CreateWindow creates and maps a top-level window on the root window.
func (c *Connection) CreateWindow(opts WindowOptions) (*xwindow.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	override := uint32(0)
	if opts.Borderless {
		override = 1
	}
	width := max(opts.Bounds.Width, 1)
	height := max(opts.Bounds.Height, 1)

	err = win.CreateChecked(c.Root,
		opts.Bounds.X, opts.Bounds.Y, width, height,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		opts.Background,
		override,
		xproto.EventMaskStructureNotify|xproto.EventMaskExposure|
			xproto.EventMaskKeyPress|xproto.EventMaskButtonPress|
			xproto.EventMaskButtonRelease|xproto.EventMaskPointerMotion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	var hints []windowHint
	if opts.Title != "" {
		// Some WMs only read the ICCCM name.
		hints = append(hints,
			windowHint{"_NET_WM_NAME", func() error { return ewmh.WmNameSet(c.XUtil, win.Id, opts.Title) }},
			windowHint{"WM_NAME", func() error { return icccm.WmNameSet(c.XUtil, win.Id, opts.Title) }},
		)
	}
	if opts.Class != "" {
		hints = append(hints, windowHint{"WM_CLASS", func() error {
			return icccm.WmClassSet(c.XUtil, win.Id, &icccm.WmClass{Instance: opts.Class, Class: opts.Class})
		}})
	}
	hints = append(hints, windowHint{"WM_PROTOCOLS", func() error {
		return icccm.WmProtocolsSet(c.XUtil, win.Id, []string{"WM_DELETE_WINDOW"})
	}})
	if opts.AlwaysOnTop {
		hints = append(hints, windowHint{"_NET_WM_STATE", func() error {
			return ewmh.WmStateSet(c.XUtil, win.Id, []string{"_NET_WM_STATE_ABOVE"})
		}})
	}
	applyHints(opts.Logger, win.Id, hints)

	win.Map()
	c.Sync()
	return win, nil
}

// WindowRect returns a window's geometry in root (global) coordinates.
func (c *Connection) WindowRect(windowID xproto.Window) (geometry.Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to get window geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to translate window coordinates: %w", err)
	}

	return geometry.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// MoveResizeWindow moves and resizes a window and waits for the server to
// apply it.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, r geometry.Rect) error {
	// A maximized window ignores configure requests on most WMs. Failure is
	// fine: the window may not be managed at all.
	_ = c.unmaximizeWindow(windowID)

	xwindow.New(c.XUtil, windowID).MoveResize(r.X, r.Y, max(r.Width, 1), max(r.Height, 1))
	c.Sync()
	return nil
}

// MoveWindow moves a window without changing its size.
func (c *Connection) MoveWindow(windowID xproto.Window, x, y int) error {
	xwindow.New(c.XUtil, windowID).Move(x, y)
	c.Sync()
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetOverrideRedirect switches a mapped window between WM-managed
// (decorated) and unmanaged (borderless). The window has to be remapped for
// the WM to notice; the call returns once the remap round-trip completed.
func (c *Connection) SetOverrideRedirect(windowID xproto.Window, on bool) error {
	rect, err := c.WindowRect(windowID)
	if err != nil {
		return err
	}

	value := uint32(0)
	if on {
		value = 1
	}

	win := xwindow.New(c.XUtil, windowID)
	win.Unmap()
	if err := xproto.ChangeWindowAttributesChecked(
		c.XUtil.Conn(), windowID, xproto.CwOverrideRedirect, []uint32{value},
	).Check(); err != nil {
		win.Map()
		return fmt.Errorf("failed to change override-redirect: %w", err)
	}
	win.Map()
	// Reparenting WMs may place the frame elsewhere; put the client back.
	win.MoveResize(rect.X, rect.Y, max(rect.Width, 1), max(rect.Height, 1))
	c.Sync()
	return nil
}

// OverrideRedirect reports whether the window bypasses the WM.
func (c *Connection) OverrideRedirect(windowID xproto.Window) (bool, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false, fmt.Errorf("failed to get window attributes: %w", err)
	}
	return attrs.OverrideRedirect, nil
}

// SetWindowState adds or removes an EWMH _NET_WM_STATE atom.
func (c *Connection) SetWindowState(windowID xproto.Window, state string, on bool) error {
	action := ewmh.StateRemove
	if on {
		action = ewmh.StateAdd
	}
	if err := ewmh.WmStateReq(c.XUtil, windowID, action, state); err != nil {
		return fmt.Errorf("failed to request %s: %w", state, err)
	}
	c.Sync()
	return nil
}

// SetOpacity sets _NET_WM_WINDOW_OPACITY (0 transparent, 1 opaque).
func (c *Connection) SetOpacity(windowID xproto.Window, opacity float64) error {
	if err := ewmh.WmWindowOpacitySet(c.XUtil, windowID, opacity); err != nil {
		return fmt.Errorf("failed to set opacity: %w", err)
	}
	return nil
}

// RaiseWindow puts a window on top of its siblings.
func (c *Connection) RaiseWindow(windowID xproto.Window) {
	xwindow.New(c.XUtil, windowID).Stack(xproto.StackModeAbove)
	c.Sync()
}

// IconifyWindow minimizes a window via WM_CHANGE_STATE.
func (c *Connection) IconifyWindow(windowID xproto.Window) error {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_CHANGE_STATE")), "WM_CHANGE_STATE").Reply()
	if err != nil {
		return err
	}

	const iconicState = 3
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   reply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{iconicState, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// WindowExists reports whether the server still knows the window.
func (c *Connection) WindowExists(windowID xproto.Window) bool {
	_, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	return err == nil
}
