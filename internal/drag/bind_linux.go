//go:build linux

package drag

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"
)

// Bind feeds button drags on win into the controller. button is an xgbutil
// button string such as "1".
func (c *Controller) Bind(xu *xgbutil.XUtil, win xproto.Window, button string) {
	begin := func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) (bool, xproto.Cursor) {
		c.Press(rootX, rootY)
		return c.phase == Pressed, 0
	}
	step := func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
		c.Move(rootX, rootY)
	}
	end := func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
		if err := c.Release(rootX, rootY); err != nil {
			c.log.Warn("drag release failed", "error", err)
		}
	}
	mousebind.Drag(xu, win, win, button, true, begin, step, end)
}
