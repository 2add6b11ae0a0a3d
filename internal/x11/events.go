package x11

import (
	"fmt"
	"image/color"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Pixel converts c to a TrueColor pixel value.
func Pixel(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// OnResize calls f with the new size whenever win is resized.
func (c *Connection) OnResize(win xproto.Window, f func(width, height int)) {
	width, height := -1, -1
	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		w, h := int(ev.Width), int(ev.Height)
		if w == width && h == height {
			return
		}
		width, height = w, h
		f(w, h)
	}).Connect(c.XUtil, win)
}

// OnDeleteRequest calls f when the window manager asks win to close.
func (c *Connection) OnDeleteRequest(win xproto.Window, f func()) error {
	protocols, err := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return fmt.Errorf("failed to intern WM_PROTOCOLS: %w", err)
	}
	deleteWindow, err := xprop.Atm(c.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		return fmt.Errorf("failed to intern WM_DELETE_WINDOW: %w", err)
	}

	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		if ev.Type != protocols || len(ev.Data.Data32) == 0 {
			return
		}
		if xproto.Atom(ev.Data.Data32[0]) == deleteWindow {
			f()
		}
	}).Connect(c.XUtil, win)
	return nil
}

// OnClick calls f with window-relative coordinates when button is released
// over win.
func (c *Connection) OnClick(win xproto.Window, button string, f func(x, y int)) error {
	return mousebind.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		f(int(ev.EventX), int(ev.EventY))
	}).Connect(c.XUtil, win, button, false, false)
}
