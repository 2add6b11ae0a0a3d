// Package drag turns pointer press/move/release into window moves, a
// release-time safety clamp and click notifications.
package drag

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/imgoverlay/internal/geometry"
	"github.com/1broseidon/imgoverlay/internal/platform"
)

// DefaultReleaseThreshold is the snap distance used on release.
const DefaultReleaseThreshold = 25

// Phase is the gesture state.
type Phase int

const (
	Idle Phase = iota
	Pressed
	Dragging
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// State is the per-gesture drag data. AnchorX/AnchorY is the pointer offset
// from the surface origin at press time.
type State struct {
	AnchorX  int
	AnchorY  int
	Dragging bool
}

// Scheduler runs a task once the current event pass has finished.
type Scheduler interface {
	Defer(f func())
}

// Options configures a Controller.
type Options struct {
	// ReleaseThreshold is the snap distance applied on release; zero means
	// DefaultReleaseThreshold.
	ReleaseThreshold int
	MultiMonitor     bool

	// OnClick runs inline when a press is released without any motion. It
	// receives the press point relative to the surface origin.
	OnClick func(at geometry.Point)
	// OnDragEnd runs through the Scheduler after a drag has been released.
	OnDragEnd func()

	Logger *slog.Logger
}

// Controller is the drag state machine for one surface. It must only be used
// from the UI goroutine.
type Controller struct {
	surface platform.Surface
	sched   Scheduler
	opts    Options
	log     *slog.Logger

	phase Phase
	state State
}

// NewController creates a controller for surface.
func NewController(surface platform.Surface, sched Scheduler, opts Options) *Controller {
	if opts.ReleaseThreshold <= 0 {
		opts.ReleaseThreshold = DefaultReleaseThreshold
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		surface: surface,
		sched:   sched,
		opts:    opts,
		log:     log,
	}
}

// Phase returns the current gesture phase.
func (c *Controller) Phase() Phase { return c.phase }

// State returns a copy of the current drag state.
func (c *Controller) State() State { return c.state }

// Press starts a gesture at the global pointer position.
func (c *Controller) Press(px, py int) {
	rect, err := c.surface.Rect()
	if err != nil {
		c.log.Warn("drag press ignored", "error", err)
		c.reset()
		return
	}
	c.state = State{
		AnchorX: px - rect.X,
		AnchorY: py - rect.Y,
	}
	c.phase = Pressed
}

// Move follows the pointer. No snapping is done while moving.
func (c *Controller) Move(px, py int) {
	if c.phase == Idle {
		return
	}
	c.state.Dragging = true
	c.phase = Dragging

	if err := c.surface.SetPosition(px-c.state.AnchorX, py-c.state.AnchorY); err != nil {
		c.log.Debug("drag move failed", "error", err)
	}
}

// Release ends the gesture. A gesture without motion is a click; a drag gets
// the safety clamp and a deferred OnDragEnd.
func (c *Controller) Release(px, py int) error {
	defer c.reset()

	if c.phase == Idle {
		return nil
	}
	if !c.state.Dragging {
		if c.opts.OnClick != nil {
			c.opts.OnClick(geometry.Point{X: c.state.AnchorX, Y: c.state.AnchorY})
		}
		return nil
	}

	err := c.settle()
	if c.opts.OnDragEnd != nil {
		c.sched.Defer(c.opts.OnDragEnd)
	}
	return err
}

func (c *Controller) settle() error {
	rect, err := c.surface.Rect()
	if err != nil {
		return fmt.Errorf("drag release: %w", err)
	}
	bounds, err := platform.BoundsFor(c.surface, rect, c.opts.MultiMonitor, c.log)
	if err != nil {
		return fmt.Errorf("drag release: %w", err)
	}

	margin := c.surface.DecorationMode().Margin()
	resolved := geometry.ResolvePosition(rect, bounds, margin, c.opts.ReleaseThreshold, true)
	if resolved == rect {
		return nil
	}
	c.log.Debug("drag settled", "from", rect.Origin(), "to", resolved.Origin())
	if err := c.surface.SetPosition(resolved.X, resolved.Y); err != nil {
		return fmt.Errorf("drag release: %w", err)
	}
	return nil
}

func (c *Controller) reset() {
	c.phase = Idle
	c.state = State{}
}
