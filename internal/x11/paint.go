package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xgraphics"
)

// Painter shows images on a window. Each painted image becomes the window
// background, so the server repaints exposed areas without a round trip.
type Painter struct {
	conn    *Connection
	win     xproto.Window
	current *xgraphics.Image
}

// NewPainter creates a painter for win.
func NewPainter(conn *Connection, win xproto.Window) *Painter {
	return &Painter{conn: conn, win: win}
}

// Paint converts img and makes it the window contents.
func (p *Painter) Paint(img image.Image) error {
	ximg := xgraphics.NewConvert(p.conn.XUtil, img)
	if err := ximg.XSurfaceSet(p.win); err != nil {
		ximg.Destroy()
		return fmt.Errorf("failed to create window surface: %w", err)
	}
	ximg.XDraw()
	ximg.XPaint(p.win)

	if p.current != nil {
		p.current.Destroy()
	}
	p.current = ximg
	return nil
}

// Release frees the last painted image.
func (p *Painter) Release() {
	if p.current != nil {
		p.current.Destroy()
		p.current = nil
	}
}
