package overlay

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/1broseidon/imgoverlay/internal/config"
	"github.com/1broseidon/imgoverlay/internal/geometry"
	"github.com/1broseidon/imgoverlay/internal/platform"
	"github.com/1broseidon/imgoverlay/internal/policy"
)

const (
	minTransparency  = 0.5
	maxTransparency  = 1.0
	transparencyStep = 0.05
)

// ClampTransparency limits v to the supported opacity range, rounded to
// hundredths. NaN maps to fully opaque.
func ClampTransparency(v float64) float64 {
	if math.IsNaN(v) {
		return maxTransparency
	}
	return min(max(math.Round(v*100)/100, minTransparency), maxTransparency)
}

// ImageWatcher reports changes to the displayed file. Watch("") stops
// watching.
type ImageWatcher interface {
	Watch(path string) error
	Close() error
}

// Options configures an Overlay.
type Options struct {
	Title        string
	Size         geometry.Size // size of the empty overlay
	Transparency float64
	MaxInset     int           // images are fitted within the monitor minus this
	Padding      geometry.Size // window size beyond the fitted image
	Theme        config.Theme
}

// OptionsFromConfig builds Options from a validated config.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	theme, err := cfg.Theme.Parse()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Title:        cfg.Window.Title,
		Size:         geometry.Size{Width: cfg.Window.Width, Height: cfg.Window.Height},
		Transparency: cfg.Window.Transparency,
		MaxInset:     cfg.Image.MaxInset,
		Padding:      geometry.Size{Width: cfg.Image.PadWidth, Height: cfg.Image.PadHeight},
		Theme:        theme,
	}, nil
}

// Status describes the overlay for the control socket.
type Status struct {
	ImagePath    string
	HasImage     bool
	Decoration   platform.DecorationMode
	AlwaysOnTop  bool
	Fullscreen   bool
	Transparency float64
	SettingsOpen bool
	Rect         geometry.Rect
}

// Overlay is the image window. All methods must run on the UI goroutine.
type Overlay struct {
	engine  *policy.Engine
	surface platform.Surface
	painter Painter
	sched   Scheduler
	opts    Options
	log     *slog.Logger

	img       image.Image
	path      string
	footprint *policy.Snapshot
	opacity   float64
	size      geometry.Size

	renderQueued bool

	settings *SettingsPanel
	watcher  ImageWatcher
	onClose  func()
	closed   bool
}

var _ Renderable = (*Overlay)(nil)

// New creates an overlay on the engine's surface.
func New(engine *policy.Engine, painter Painter, sched Scheduler, opts Options, log *slog.Logger) *Overlay {
	if log == nil {
		log = slog.Default()
	}
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		opts.Size = geometry.Size{Width: config.DefaultWidth, Height: config.DefaultHeight}
	}
	return &Overlay{
		engine:  engine,
		surface: engine.Surface(),
		painter: painter,
		sched:   sched,
		opts:    opts,
		log:     log,
		opacity: ClampTransparency(opts.Transparency),
		size:    opts.Size,
	}
}

// SetSettingsPanel attaches the settings panel.
func (o *Overlay) SetSettingsPanel(p *SettingsPanel) { o.settings = p }

// SetWatcher attaches a watcher that follows the displayed file.
func (o *Overlay) SetWatcher(w ImageWatcher) { o.watcher = w }

// OnClose registers f to run once the overlay has been closed.
func (o *Overlay) OnClose(f func()) { o.onClose = f }

// CreateContent centers the empty overlay, applies its opacity and paints
// the placeholder.
func (o *Overlay) CreateContent() error {
	if err := o.engine.Center(o.opts.Size); err != nil {
		return err
	}
	if err := o.surface.SetOpacity(o.opacity); err != nil {
		o.log.Warn("failed to set opacity", "error", err)
	}
	o.size = o.opts.Size
	return o.render()
}

// LoadImage decodes path, grows the window around it and displays it. The
// window footprint before and after the resize is kept so that ClearImage
// can undo any shift. A decode failure leaves the overlay untouched.
func (o *Overlay) LoadImage(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	img, format, err := DecodeFile(path)
	if err != nil {
		return err
	}

	monitor, err := o.surface.Bounds(false)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	limit := geometry.Size{
		Width:  monitor.Width - o.opts.MaxInset,
		Height: monitor.Height - o.opts.MaxInset,
	}
	b := img.Bounds()
	fit := geometry.FitWithin(geometry.Size{Width: b.Dx(), Height: b.Dy()}, limit)
	window := geometry.Size{
		Width:  fit.Width + o.opts.Padding.Width,
		Height: fit.Height + o.opts.Padding.Height,
	}

	snap, err := o.engine.ApplyContentSize(window)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	o.footprint = &snap
	o.img = img
	o.path = path
	o.size = snap.After.Rect().Size()
	o.log.Info("image loaded", "path", path, "format", format, "width", b.Dx(), "height", b.Dy(), "window", window)

	if o.watcher != nil {
		if err := o.watcher.Watch(path); err != nil {
			o.log.Warn("cannot watch image", "path", path, "error", err)
		}
	}
	return o.render()
}

// ReloadImage decodes the current file again and repaints it at the current
// window size.
func (o *Overlay) ReloadImage() error {
	if o.path == "" {
		return ErrNoImage
	}
	img, _, err := DecodeFile(o.path)
	if err != nil {
		return err
	}
	o.img = img
	o.log.Debug("image reloaded", "path", o.path)
	return o.render()
}

// OnImageChanged reloads the image when path is the file on display.
func (o *Overlay) OnImageChanged(path string) {
	if o.closed || path == "" || path != o.path {
		return
	}
	if err := o.ReloadImage(); err != nil {
		o.log.Warn("reload after change failed", "path", path, "error", err)
	}
}

// ClearImage drops the image and shrinks the window back to its empty size,
// reversing the shift that loading the image caused when one is known.
func (o *Overlay) ClearImage() error {
	o.img = nil
	o.path = ""
	if o.watcher != nil {
		if err := o.watcher.Watch(""); err != nil {
			o.log.Debug("failed to stop watching", "error", err)
		}
	}

	var err error
	if o.footprint != nil {
		err = o.engine.RestoreFootprint(o.footprint.Before, o.footprint.After, o.opts.Size)
	} else {
		err = o.engine.ResizeOnScreen(o.opts.Size)
	}
	o.footprint = nil
	if err != nil {
		return fmt.Errorf("clear image: %w", err)
	}
	o.size = o.opts.Size
	return o.render()
}

// OnResize records a new window size and queues one repaint for the end of
// the event pass, however many resizes arrive in it.
func (o *Overlay) OnResize(size geometry.Size) {
	if size == o.size {
		return
	}
	o.size = size
	if o.renderQueued {
		return
	}
	o.renderQueued = true
	o.sched.Defer(func() {
		o.renderQueued = false
		if o.closed {
			return
		}
		if err := o.render(); err != nil {
			o.log.Warn("repaint failed", "error", err)
		}
	})
}

func (o *Overlay) render() error {
	if err := o.painter.Paint(RenderFrame(o.size, o.opts.Theme, o.img)); err != nil {
		return fmt.Errorf("paint overlay: %w", err)
	}
	return nil
}

// SetTransparency applies v, clamped to [0.5, 1.0], and returns the value
// used.
func (o *Overlay) SetTransparency(v float64) (float64, error) {
	v = ClampTransparency(v)
	if err := o.surface.SetOpacity(v); err != nil {
		return o.opacity, fmt.Errorf("set transparency: %w", err)
	}
	o.opacity = v
	o.refreshSettings()
	return v, nil
}

// Transparency returns the current opacity.
func (o *Overlay) Transparency() float64 { return o.opacity }

// ToggleDecorations flips the window frame. An open settings panel is kept
// where it was and raised, or recreated if the toggle destroyed it.
func (o *Overlay) ToggleDecorations() (platform.DecorationMode, error) {
	var panel *geometry.Rect
	if o.settings != nil && o.settings.IsOpen() {
		if r, err := o.settings.Rect(); err == nil {
			panel = &r
		}
	}

	mode, err := o.engine.ToggleDecorations()
	if err != nil {
		return mode, err
	}
	if o.settings != nil {
		if err := o.settings.Recover(o.surface, panel, o.panelState()); err != nil {
			o.log.Warn("settings panel recovery failed", "error", err)
		}
	}
	return mode, nil
}

func (o *Overlay) ToggleFullscreen() (bool, error) {
	on, err := o.engine.ToggleFullscreen()
	o.refreshSettings()
	return on, err
}

// ToggleAlwaysOnTop flips always-on-top; the settings panel follows.
func (o *Overlay) ToggleAlwaysOnTop() (bool, error) {
	on, err := o.engine.ToggleAlwaysOnTop()
	if err != nil {
		return on, err
	}
	if o.settings != nil {
		if err := o.settings.FollowTopmost(on); err != nil {
			o.log.Warn("settings panel topmost failed", "error", err)
		}
	}
	o.refreshSettings()
	return on, nil
}

func (o *Overlay) Minimize() error {
	return o.engine.Minimize()
}

// OpenSettings shows the settings panel beside the overlay, or raises it if
// it is already open.
func (o *Overlay) OpenSettings() error {
	if o.settings == nil {
		return fmt.Errorf("settings panel unavailable")
	}
	return o.settings.Open(o.surface, o.panelState())
}

func (o *Overlay) CloseSettings() error {
	if o.settings == nil {
		return nil
	}
	return o.settings.Close()
}

func (o *Overlay) panelState() PanelState {
	return PanelState{
		Transparency: o.opacity,
		Decoration:   o.surface.DecorationMode().String(),
		AlwaysOnTop:  o.surface.AlwaysOnTop(),
		Fullscreen:   o.surface.Fullscreen(),
	}
}

func (o *Overlay) refreshSettings() {
	if o.settings == nil {
		return
	}
	if err := o.settings.Refresh(o.panelState()); err != nil {
		o.log.Debug("settings repaint failed", "error", err)
	}
}

// OnClick handles a click at p, relative to the window origin. Toolbar
// buttons run their action; anywhere else raises the window.
func (o *Overlay) OnClick(p geometry.Point) {
	action := Hit(ToolbarButtons(o.size.Width), p)
	if action == ActionNone {
		if err := o.surface.Raise(); err != nil {
			o.log.Debug("raise failed", "error", err)
		}
		return
	}
	o.run(action)
}

// OnSettingsClick handles a click at p inside the settings panel.
func (o *Overlay) OnSettingsClick(p geometry.Point) {
	if o.settings == nil {
		return
	}
	if action := Hit(SettingsButtons(o.settings.Size().Width), p); action != ActionNone {
		o.run(action)
	}
}

// OnDragEnd runs after a drag has settled.
func (o *Overlay) OnDragEnd() {
	if r, err := o.surface.Rect(); err == nil {
		o.log.Debug("overlay moved", "x", r.X, "y", r.Y)
	}
}

func (o *Overlay) run(action Action) {
	var err error
	switch action {
	case ActionClearImage:
		err = o.ClearImage()
	case ActionReloadImage:
		err = o.ReloadImage()
	case ActionOpenSettings:
		err = o.OpenSettings()
	case ActionCloseSettings:
		err = o.CloseSettings()
	case ActionTransparencyDown:
		_, err = o.SetTransparency(o.opacity - transparencyStep)
	case ActionTransparencyUp:
		_, err = o.SetTransparency(o.opacity + transparencyStep)
	case ActionToggleFrame:
		_, err = o.ToggleDecorations()
	case ActionToggleFullscreen:
		_, err = o.ToggleFullscreen()
	case ActionToggleTopmost:
		_, err = o.ToggleAlwaysOnTop()
	}
	if err != nil {
		o.log.Warn("action failed", "action", action, "error", err)
	}
}

// Status reports the current overlay state.
func (o *Overlay) Status() (Status, error) {
	rect, err := o.surface.Rect()
	if err != nil {
		return Status{}, err
	}
	return Status{
		ImagePath:    o.path,
		HasImage:     o.img != nil,
		Decoration:   o.surface.DecorationMode(),
		AlwaysOnTop:  o.surface.AlwaysOnTop(),
		Fullscreen:   o.surface.Fullscreen(),
		Transparency: o.opacity,
		SettingsOpen: o.settings != nil && o.settings.IsOpen(),
		Rect:         rect,
	}, nil
}

// Reconcile corrects drift the event stream does not report: a settings
// panel whose window vanished is forgotten and the overlay is pulled back
// on screen, e.g. after a monitor was unplugged. Fullscreen windows are
// left alone.
func (o *Overlay) Reconcile() error {
	if o.closed {
		return nil
	}
	if o.settings != nil && o.settings.Prune() {
		o.log.Info("settings panel window gone")
	}
	if o.surface.Fullscreen() {
		return nil
	}
	return o.engine.EnsureOnScreen()
}

// Close closes the settings panel and the window, then runs the OnClose
// callback. Closing twice is a no-op.
func (o *Overlay) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true

	if err := o.CloseSettings(); err != nil {
		o.log.Debug("closing settings failed", "error", err)
	}
	if o.watcher != nil {
		if err := o.watcher.Close(); err != nil {
			o.log.Debug("closing watcher failed", "error", err)
		}
	}
	err := o.surface.Close()
	if o.onClose != nil {
		o.onClose()
	}
	return err
}
