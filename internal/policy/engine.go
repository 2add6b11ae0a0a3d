// Package policy positions a surface: centering, edge snapping, safety
// clamping, decoration and window-state changes, relative placement and
// footprint restoration after content changes.
package policy

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/imgoverlay/internal/geometry"
	"github.com/1broseidon/imgoverlay/internal/platform"
)

// DefaultSnapThreshold is the distance at which edges attract the window.
const DefaultSnapThreshold = 25

// Scheduler runs a task once the current event pass has finished.
type Scheduler interface {
	Defer(f func())
}

// Settings tunes the engine.
type Settings struct {
	MultiMonitor  bool
	SnapThreshold int
}

// Snapshot is the footprint pair recorded around a content-driven resize.
type Snapshot struct {
	Before geometry.Footprint
	After  geometry.Footprint
}

// Engine applies positioning policy to one surface. Use it from the UI
// goroutine only.
type Engine struct {
	surface  platform.Surface
	sched    Scheduler
	settings Settings
	log      *slog.Logger
}

// New creates an engine for surface.
func New(surface platform.Surface, sched Scheduler, settings Settings, log *slog.Logger) *Engine {
	if settings.SnapThreshold <= 0 {
		settings.SnapThreshold = DefaultSnapThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		surface:  surface,
		sched:    sched,
		settings: settings,
		log:      log,
	}
}

// Surface returns the managed surface.
func (e *Engine) Surface() platform.Surface { return e.surface }

// Center sizes the surface and centers it on its monitor.
func (e *Engine) Center(size geometry.Size) error {
	bounds, err := e.surface.Bounds(false)
	if err != nil {
		return fmt.Errorf("center: %w", err)
	}
	r := geometry.Rect{Width: size.Width, Height: size.Height}.Moved(geometry.Center(size, bounds))
	r = geometry.ResolvePosition(r, bounds, e.margin(), 0, true)
	if err := e.surface.SetPositionAndSize(r); err != nil {
		return fmt.Errorf("center: %w", err)
	}
	return nil
}

// SnapIfClose pulls the surface to any edge within threshold. A surface
// away from every edge is left where it is.
func (e *Engine) SnapIfClose(threshold int) error {
	return e.resolve("snap", threshold, false)
}

// EnsureOnScreen clamps the surface back inside the desktop.
func (e *Engine) EnsureOnScreen() error {
	return e.resolve("ensure on screen", 0, true)
}

func (e *Engine) resolve(op string, threshold int, force bool) error {
	rect, err := e.surface.Rect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	bounds, err := e.bounds(rect)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	resolved := geometry.ResolvePosition(rect, bounds, e.margin(), threshold, force)
	if resolved == rect {
		return nil
	}
	e.log.Debug("repositioning surface", "op", op, "from", rect.Origin(), "to", resolved.Origin())
	if err := e.surface.SetPosition(resolved.X, resolved.Y); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ToggleDecorations flips between decorated and borderless and returns the
// new mode. The margin changes with the mode, so a snap pass followed by the
// on-screen clamp is queued for after the window manager has re-laid the
// surface out.
func (e *Engine) ToggleDecorations() (platform.DecorationMode, error) {
	mode := e.surface.DecorationMode().Toggle()
	if err := e.surface.SetDecorationMode(mode); err != nil {
		return e.surface.DecorationMode(), fmt.Errorf("toggle decorations: %w", err)
	}
	e.sched.Defer(func() {
		if err := e.SnapIfClose(e.settings.SnapThreshold); err != nil {
			e.log.Warn("post-toggle snap failed", "error", err)
		}
		if err := e.EnsureOnScreen(); err != nil {
			e.log.Warn("post-toggle clamp failed", "error", err)
		}
	})
	return mode, nil
}

// ToggleFullscreen flips fullscreen and returns the new state.
func (e *Engine) ToggleFullscreen() (bool, error) {
	on := !e.surface.Fullscreen()
	if err := e.surface.SetFullscreen(on); err != nil {
		return !on, fmt.Errorf("toggle fullscreen: %w", err)
	}
	return on, nil
}

// ToggleAlwaysOnTop flips always-on-top and returns the new state.
func (e *Engine) ToggleAlwaysOnTop() (bool, error) {
	on := !e.surface.AlwaysOnTop()
	if err := e.surface.SetAlwaysOnTop(on); err != nil {
		return !on, fmt.Errorf("toggle always on top: %w", err)
	}
	return on, nil
}

// Minimize iconifies the surface. Window managers do not iconify unmanaged
// windows, so a borderless surface is switched to decorated first and stays
// decorated when restored.
func (e *Engine) Minimize() error {
	if e.surface.DecorationMode() == platform.Borderless {
		if err := e.surface.SetDecorationMode(platform.Decorated); err != nil {
			return fmt.Errorf("minimize: %w", err)
		}
	}
	if err := e.surface.Iconify(); err != nil {
		return fmt.Errorf("minimize: %w", err)
	}
	return nil
}

// PositionRelativeTo sizes the surface and places it beside anchor on the
// anchor's monitor.
func (e *Engine) PositionRelativeTo(anchor platform.Surface, size geometry.Size, offset geometry.Point) error {
	anchorRect, err := anchor.Rect()
	if err != nil {
		return fmt.Errorf("position relative: %w", err)
	}
	bounds, err := anchor.Bounds(false)
	if err != nil {
		return fmt.Errorf("position relative: %w", err)
	}
	origin := geometry.RelativePosition(anchorRect, size, bounds, offset, e.margin())
	r := geometry.Rect{Width: size.Width, Height: size.Height}.Moved(origin)
	if err := e.surface.SetPositionAndSize(r); err != nil {
		return fmt.Errorf("position relative: %w", err)
	}
	return nil
}

// ApplyContentSize resizes the surface in place for new content, keeps it
// on screen and returns the footprints before and after.
func (e *Engine) ApplyContentSize(size geometry.Size) (Snapshot, error) {
	before, err := e.surface.Rect()
	if err != nil {
		return Snapshot{}, fmt.Errorf("apply content size: %w", err)
	}
	if err := e.placeOnScreen(before.Resized(size)); err != nil {
		return Snapshot{}, fmt.Errorf("apply content size: %w", err)
	}
	after, err := e.surface.Rect()
	if err != nil {
		return Snapshot{}, fmt.Errorf("apply content size: %w", err)
	}
	return Snapshot{
		Before: geometry.Footprint(before),
		After:  geometry.Footprint(after),
	}, nil
}

// RestoreFootprint shrinks the surface back to target after content is
// removed, undoing any shift the earlier growth forced on it.
func (e *Engine) RestoreFootprint(before, after geometry.Footprint, target geometry.Size) error {
	current, err := e.surface.Rect()
	if err != nil {
		return fmt.Errorf("restore footprint: %w", err)
	}
	origin := geometry.RestoreOrigin(before, after, current.Origin(), target)
	r := geometry.Rect{Width: target.Width, Height: target.Height}.Moved(origin)
	if err := e.placeOnScreen(r); err != nil {
		return fmt.Errorf("restore footprint: %w", err)
	}
	return nil
}

// ResizeOnScreen resizes the surface at its current origin and keeps it on
// screen.
func (e *Engine) ResizeOnScreen(size geometry.Size) error {
	current, err := e.surface.Rect()
	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	if err := e.placeOnScreen(current.Resized(size)); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return nil
}

func (e *Engine) placeOnScreen(r geometry.Rect) error {
	bounds, err := e.bounds(r)
	if err != nil {
		return err
	}
	return e.surface.SetPositionAndSize(geometry.ResolvePosition(r, bounds, e.margin(), 0, true))
}

func (e *Engine) bounds(r geometry.Rect) (geometry.Rect, error) {
	return platform.BoundsFor(e.surface, r, e.settings.MultiMonitor, e.log)
}

func (e *Engine) margin() int {
	return e.surface.DecorationMode().Margin()
}
