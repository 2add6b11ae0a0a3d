package platform

import (
	"log/slog"

	"github.com/1broseidon/imgoverlay/internal/geometry"
)

// BoundsFor picks the rectangle r is positioned against. With multiMonitor
// set it prefers the virtual desktop, falling back to the surface's monitor
// when the virtual desktop is unknown or smaller than r in either dimension.
func BoundsFor(s Surface, r geometry.Rect, multiMonitor bool, log *slog.Logger) (geometry.Rect, error) {
	if multiMonitor {
		desktop, err := s.Bounds(true)
		switch {
		case err != nil:
			logger(log).Debug("virtual desktop unavailable, using monitor bounds", "error", err)
		case r.Width > desktop.Width || r.Height > desktop.Height:
			logger(log).Debug("window exceeds virtual desktop, using monitor bounds",
				"window", r, "desktop", desktop)
		default:
			return desktop, nil
		}
	}
	return s.Bounds(false)
}

func logger(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
