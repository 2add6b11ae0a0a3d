package overlay

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/imgoverlay/internal/config"
	"github.com/1broseidon/imgoverlay/internal/geometry"
	"github.com/1broseidon/imgoverlay/internal/platform"
	"github.com/1broseidon/imgoverlay/internal/policy"
)

// SurfaceFactory creates a window for the settings panel.
type SurfaceFactory func(title string, size geometry.Size) (platform.Surface, Painter, error)

// SettingsOptions configures a SettingsPanel.
type SettingsOptions struct {
	Size   geometry.Size
	Offset int // horizontal gap to the overlay
	Theme  config.Theme
	Policy policy.Settings
	Title  string
}

// SettingsPanel is the secondary window holding the overlay controls. It is
// created on first open and recreated whenever its window has gone away.
type SettingsPanel struct {
	factory SurfaceFactory
	sched   Scheduler
	opts    SettingsOptions
	log     *slog.Logger

	surface platform.Surface
	painter Painter
	engine  *policy.Engine
}

// NewSettingsPanel creates a closed panel.
func NewSettingsPanel(factory SurfaceFactory, sched Scheduler, opts SettingsOptions, log *slog.Logger) *SettingsPanel {
	if log == nil {
		log = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = "Overlay Settings"
	}
	return &SettingsPanel{
		factory: factory,
		sched:   sched,
		opts:    opts,
		log:     log,
	}
}

// Size returns the panel size.
func (p *SettingsPanel) Size() geometry.Size { return p.opts.Size }

// IsOpen reports whether the panel window exists.
func (p *SettingsPanel) IsOpen() bool {
	return p.surface != nil && p.surface.Valid()
}

// Rect returns the panel window geometry.
func (p *SettingsPanel) Rect() (geometry.Rect, error) {
	if p.surface == nil {
		return geometry.Rect{}, platform.ErrSurfaceClosed
	}
	return p.surface.Rect()
}

// Open shows the panel beside anchor. An open panel is raised instead.
func (p *SettingsPanel) Open(anchor platform.Surface, state PanelState) error {
	if p.IsOpen() {
		return p.surface.Raise()
	}
	p.discard()

	surface, painter, err := p.factory(p.opts.Title, p.opts.Size)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	p.surface = surface
	p.painter = painter
	p.engine = policy.New(surface, p.sched, p.opts.Policy, p.log)

	offset := geometry.Point{X: p.opts.Offset}
	if err := p.engine.PositionRelativeTo(anchor, p.opts.Size, offset); err != nil {
		p.log.Warn("settings panel placement failed", "error", err)
	}
	if err := surface.SetAlwaysOnTop(anchor.AlwaysOnTop()); err != nil {
		p.log.Debug("settings panel topmost failed", "error", err)
	}
	return p.Refresh(state)
}

// Refresh repaints an open panel.
func (p *SettingsPanel) Refresh(state PanelState) error {
	if !p.IsOpen() {
		return nil
	}
	return p.painter.Paint(RenderSettings(p.opts.Size, p.opts.Theme, state))
}

// Recover brings the panel back after the overlay's frame was toggled. A
// panel whose window no longer exists is recreated beside anchor; otherwise
// it is raised and, when at is given, moved back there.
func (p *SettingsPanel) Recover(anchor platform.Surface, at *geometry.Rect, state PanelState) error {
	if p.surface == nil {
		return nil
	}
	if !p.surface.Valid() {
		p.log.Info("settings panel lost, recreating")
		p.discard()
		return p.Open(anchor, state)
	}
	if err := p.surface.Raise(); err != nil {
		return err
	}
	if at != nil {
		if err := p.surface.SetPosition(at.X, at.Y); err != nil {
			return err
		}
	}
	return p.Refresh(state)
}

// FollowTopmost gives the panel the overlay's always-on-top state.
func (p *SettingsPanel) FollowTopmost(on bool) error {
	if !p.IsOpen() {
		return nil
	}
	return p.surface.SetAlwaysOnTop(on)
}

// Close destroys the panel window.
func (p *SettingsPanel) Close() error {
	if p.surface == nil {
		return nil
	}
	err := p.surface.Close()
	p.discard()
	return err
}

// Prune forgets a panel whose window no longer exists and reports whether
// it did so.
func (p *SettingsPanel) Prune() bool {
	if p.surface == nil || p.surface.Valid() {
		return false
	}
	p.discard()
	return true
}

// releaser is implemented by painters holding server-side resources.
type releaser interface {
	Release()
}

func (p *SettingsPanel) discard() {
	if r, ok := p.painter.(releaser); ok {
		r.Release()
	}
	p.surface = nil
	p.painter = nil
	p.engine = nil
}
