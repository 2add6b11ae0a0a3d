package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection, core X resources and the UI loop
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
	Loop  *Loop
}

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Key and mouse binding modules must be initialized before any Connect.
	keybind.Initialize(xu)
	mousebind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
		Loop:  NewLoop(),
	}, nil
}

// EventLoop runs the X11 event loop on the calling goroutine until Quit.
// X callbacks, posted tasks and deferred tasks all run here, one at a time.
func (c *Connection) EventLoop() {
	before, after, quit := xevent.MainPing(c.XUtil)
	c.Loop.Run(before, after, quit)
}

// Quit stops the event loop after the current pass.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Sync blocks until the server has processed every request sent so far.
func (c *Connection) Sync() {
	c.XUtil.Sync()
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
