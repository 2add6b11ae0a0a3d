package platform

import (
	"errors"

	"github.com/1broseidon/imgoverlay/internal/geometry"
)

var (
	// ErrNoVirtualDesktop is returned by Surface.Bounds when the combined
	// multi-monitor bounds cannot be determined.
	ErrNoVirtualDesktop = errors.New("virtual desktop bounds unavailable")
	// ErrSurfaceClosed is returned when operating on a destroyed surface.
	ErrSurfaceClosed = errors.New("surface is closed")
)

// DecorationMode controls whether the window manager frames the surface.
type DecorationMode int

const (
	Decorated DecorationMode = iota
	Borderless
)

// String returns the string representation of the mode
func (m DecorationMode) String() string {
	switch m {
	case Decorated:
		return "decorated"
	case Borderless:
		return "borderless"
	default:
		return "unknown"
	}
}

// Margin is the gap kept between the surface and the desktop edge. Borderless
// surfaces have no frame to protect and may sit almost flush.
func (m DecorationMode) Margin() int {
	if m == Borderless {
		return 1
	}
	return 10
}

// Toggle returns the opposite mode.
func (m DecorationMode) Toggle() DecorationMode {
	if m == Borderless {
		return Decorated
	}
	return Borderless
}

// Display describes a physical display.
type Display struct {
	ID      int
	Name    string
	Primary bool
	Bounds  geometry.Rect
}

// Surface abstracts a movable rectangular top-level window. Mutating calls
// take effect before they return; a following Rect reflects them.
type Surface interface {
	Rect() (geometry.Rect, error)
	SetPosition(x, y int) error
	SetPositionAndSize(r geometry.Rect) error

	DecorationMode() DecorationMode
	SetDecorationMode(mode DecorationMode) error

	// Bounds returns the single-monitor bounds, or the virtual desktop when
	// multiMonitor is set. The latter may fail with ErrNoVirtualDesktop.
	Bounds(multiMonitor bool) (geometry.Rect, error)

	SetOpacity(opacity float64) error

	AlwaysOnTop() bool
	SetAlwaysOnTop(on bool) error
	Fullscreen() bool
	SetFullscreen(on bool) error

	Iconify() error
	Raise() error
	Close() error
	// Valid reports whether the underlying window still exists.
	Valid() bool
}
