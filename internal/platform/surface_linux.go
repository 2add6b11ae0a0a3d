//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/imgoverlay/internal/geometry"
	"github.com/1broseidon/imgoverlay/internal/x11"
)

const (
	stateAbove      = "_NET_WM_STATE_ABOVE"
	stateFullscreen = "_NET_WM_STATE_FULLSCREEN"
)

// X11Surface is a top-level X window behind the Surface interface.
//
// Borderless surfaces are override-redirect windows: the WM does not manage
// them, so stacking and fullscreen are done by hand instead of through EWMH
// state requests.
type X11Surface struct {
	conn *x11.Connection
	win  *xwindow.Window

	mode       DecorationMode
	onTop      bool
	fullscreen bool
	restore    geometry.Rect
	closed     bool
}

var _ Surface = (*X11Surface)(nil)

// NewX11Surface creates and maps a window on conn.
func NewX11Surface(conn *x11.Connection, opts x11.WindowOptions) (*X11Surface, error) {
	win, err := conn.CreateWindow(opts)
	if err != nil {
		return nil, err
	}
	mode := Decorated
	if opts.Borderless {
		mode = Borderless
	}
	s := &X11Surface{
		conn:  conn,
		win:   win,
		mode:  mode,
		onTop: opts.AlwaysOnTop,
	}
	if s.onTop && mode == Borderless {
		conn.RaiseWindow(win.Id)
	}
	return s, nil
}

// Window returns the X window id.
func (s *X11Surface) Window() xproto.Window {
	return s.win.Id
}

// XWindow returns the xwindow wrapper, used for painting and event binding.
func (s *X11Surface) XWindow() *xwindow.Window {
	return s.win
}

func (s *X11Surface) Rect() (geometry.Rect, error) {
	if s.closed {
		return geometry.Rect{}, ErrSurfaceClosed
	}
	return s.conn.WindowRect(s.win.Id)
}

func (s *X11Surface) SetPosition(x, y int) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	return s.conn.MoveWindow(s.win.Id, x, y)
}

func (s *X11Surface) SetPositionAndSize(r geometry.Rect) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	return s.conn.MoveResizeWindow(s.win.Id, r)
}

func (s *X11Surface) DecorationMode() DecorationMode {
	return s.mode
}

func (s *X11Surface) SetDecorationMode(mode DecorationMode) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	if mode == s.mode {
		return nil
	}
	if err := s.conn.SetOverrideRedirect(s.win.Id, mode == Borderless); err != nil {
		return fmt.Errorf("failed to switch to %s: %w", mode, err)
	}
	s.mode = mode

	// The WM sees the window as newly mapped and has forgotten its state.
	if s.onTop {
		return s.applyAlwaysOnTop()
	}
	return nil
}

// Bounds returns the usable area of the surface's monitor, or the bounding
// box of all monitors.
func (s *X11Surface) Bounds(multiMonitor bool) (geometry.Rect, error) {
	if s.closed {
		return geometry.Rect{}, ErrSurfaceClosed
	}
	if !multiMonitor {
		return s.conn.UsableMonitorFor(s.win.Id), nil
	}
	desktop, err := s.conn.VirtualDesktop()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("%w: %v", ErrNoVirtualDesktop, err)
	}
	if desktop.Empty() {
		return geometry.Rect{}, ErrNoVirtualDesktop
	}
	return desktop, nil
}

func (s *X11Surface) SetOpacity(opacity float64) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	opacity = min(max(opacity, 0), 1)
	return s.conn.SetOpacity(s.win.Id, opacity)
}

func (s *X11Surface) AlwaysOnTop() bool {
	return s.onTop
}

func (s *X11Surface) SetAlwaysOnTop(on bool) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	s.onTop = on
	return s.applyAlwaysOnTop()
}

func (s *X11Surface) applyAlwaysOnTop() error {
	if s.mode == Borderless {
		if s.onTop {
			s.conn.RaiseWindow(s.win.Id)
		}
		return nil
	}
	return s.conn.SetWindowState(s.win.Id, stateAbove, s.onTop)
}

func (s *X11Surface) Fullscreen() bool {
	return s.fullscreen
}

func (s *X11Surface) SetFullscreen(on bool) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	if on == s.fullscreen {
		return nil
	}

	if s.mode == Decorated {
		if err := s.conn.SetWindowState(s.win.Id, stateFullscreen, on); err != nil {
			return err
		}
		s.fullscreen = on
		return nil
	}

	if on {
		rect, err := s.conn.WindowRect(s.win.Id)
		if err != nil {
			return err
		}
		s.restore = rect
		if err := s.conn.MoveResizeWindow(s.win.Id, s.conn.MonitorFor(s.win.Id)); err != nil {
			return err
		}
		s.conn.RaiseWindow(s.win.Id)
	} else if err := s.conn.MoveResizeWindow(s.win.Id, s.restore); err != nil {
		return err
	}
	s.fullscreen = on
	return nil
}

func (s *X11Surface) Iconify() error {
	if s.closed {
		return ErrSurfaceClosed
	}
	if err := s.conn.IconifyWindow(s.win.Id); err != nil {
		return fmt.Errorf("failed to iconify window: %w", err)
	}
	return nil
}

func (s *X11Surface) Raise() error {
	if s.closed {
		return ErrSurfaceClosed
	}
	s.conn.RaiseWindow(s.win.Id)
	return nil
}

// Close destroys the window. Closing twice is a no-op.
func (s *X11Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.win.Destroy()
	s.conn.Sync()
	return nil
}

func (s *X11Surface) Valid() bool {
	return !s.closed && s.conn.WindowExists(s.win.Id)
}

// Displays returns all active displays, sorted by id.
func (s *X11Surface) Displays() ([]Display, error) {
	monitors, err := s.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:      m.ID,
			Name:    m.Name,
			Primary: m.Primary,
			Bounds:  m.Bounds,
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}
