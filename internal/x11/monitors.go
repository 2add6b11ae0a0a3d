package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/imgoverlay/internal/geometry"
)

// ErrNoMonitors is returned when RandR reports no active CRTC.
var ErrNoMonitors = errors.New("no monitors found")

// Monitor represents a physical display
type Monitor struct {
	ID      int
	Name    string
	Primary bool
	Bounds  geometry.Rect
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		isPrimary := false
		for _, out := range crtcInfo.Outputs {
			if primary != 0 && out == primary {
				isPrimary = true
			}
		}

		monitors = append(monitors, Monitor{
			ID:      i,
			Name:    outputName,
			Primary: isPrimary,
			Bounds: geometry.Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
		})
	}

	if len(monitors) == 0 {
		return nil, ErrNoMonitors
	}
	return monitors, nil
}

// ScreenBounds returns the size of the X screen. This is the fallback when
// RandR is unavailable and matches what single-screen toolkits report.
func (c *Connection) ScreenBounds() geometry.Rect {
	screen := c.XUtil.Screen()
	return geometry.Rect{
		Width:  int(screen.WidthInPixels),
		Height: int(screen.HeightInPixels),
	}
}

// MonitorFor returns the bounds of the monitor a window should be positioned
// against: the monitor containing the window's center, else the RandR
// primary, else the first monitor, else the whole screen.
func (c *Connection) MonitorFor(windowID xproto.Window) geometry.Rect {
	monitors, err := c.GetMonitors()
	if err != nil {
		return c.ScreenBounds()
	}

	if windowID != 0 {
		if rect, err := c.WindowRect(windowID); err == nil {
			center := rect.Center()
			for _, mon := range monitors {
				if mon.Bounds.Contains(center) {
					return mon.Bounds
				}
			}
		}
	}

	for _, mon := range monitors {
		if mon.Primary {
			return mon.Bounds
		}
	}
	return monitors[0].Bounds
}

// UsableMonitorFor is MonitorFor minus panels and docks.
func (c *Connection) UsableMonitorFor(windowID xproto.Window) geometry.Rect {
	return c.workArea(c.MonitorFor(windowID))
}

// VirtualDesktop returns the bounding box of every active monitor.
func (c *Connection) VirtualDesktop() (geometry.Rect, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return geometry.Rect{}, err
	}
	rects := make([]geometry.Rect, 0, len(monitors))
	for _, mon := range monitors {
		rects = append(rects, mon.Bounds)
	}
	return geometry.Union(rects...), nil
}

// workArea narrows bounds to the EWMH work area (excluding panels and docks)
// when the two intersect.
func (c *Connection) workArea(bounds geometry.Rect) geometry.Rect {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return bounds
	}

	index := 0
	if desktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desktop) < len(areas) {
		index = int(desktop)
	}

	wa := areas[index]
	usable := bounds.Intersect(geometry.Rect{
		X:      int(wa.X),
		Y:      int(wa.Y),
		Width:  int(wa.Width),
		Height: int(wa.Height),
	})
	if usable.Empty() {
		return bounds
	}
	return usable
}
