//go:build linux

package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/imgoverlay/internal/config"
	"github.com/1broseidon/imgoverlay/internal/drag"
	"github.com/1broseidon/imgoverlay/internal/geometry"
	"github.com/1broseidon/imgoverlay/internal/hotkeys"
	"github.com/1broseidon/imgoverlay/internal/ipc"
	"github.com/1broseidon/imgoverlay/internal/overlay"
	"github.com/1broseidon/imgoverlay/internal/platform"
	"github.com/1broseidon/imgoverlay/internal/policy"
	"github.com/1broseidon/imgoverlay/internal/runtimepath"
	"github.com/1broseidon/imgoverlay/internal/x11"
)

const windowClass = "imgoverlay"

// Run opens the overlay and serves it until it is closed or ctx is done.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ovOpts, err := overlay.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	socketPath := opts.SocketPath
	if socketPath == "" {
		if socketPath, err = runtimepath.SocketPath(); err != nil {
			return err
		}
	}
	if ipc.NewClientAt(socketPath).Ping() == nil {
		return fmt.Errorf("%w (socket %s)", ErrAlreadyRunning, socketPath)
	}

	conn, err := x11.NewConnection()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer conn.Close()

	background := x11.Pixel(ovOpts.Theme.Background)
	surface, err := platform.NewX11Surface(conn, x11.WindowOptions{
		Title:       ovOpts.Title,
		Class:       windowClass,
		Bounds:      geometry.Rect{Width: ovOpts.Size.Width, Height: ovOpts.Size.Height},
		Background:  background,
		Borderless:  cfg.Window.Borderless,
		AlwaysOnTop: cfg.Window.AlwaysOnTop,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	win := surface.Window()

	settings := policy.Settings{
		MultiMonitor:  cfg.Snap.MultiMonitor,
		SnapThreshold: cfg.Snap.Threshold,
	}
	engine := policy.New(surface, conn.Loop, settings, logger)
	painter := x11.NewPainter(conn, win)
	defer painter.Release()
	ov := overlay.New(engine, painter, conn.Loop, ovOpts, logger)
	ov.OnClose(conn.Quit)

	panelFactory := func(title string, size geometry.Size) (platform.Surface, overlay.Painter, error) {
		panel, err := platform.NewX11Surface(conn, x11.WindowOptions{
			Title:      title,
			Class:      windowClass,
			Bounds:     geometry.Rect{Width: size.Width, Height: size.Height},
			Background: background,
			Logger:     logger,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := conn.OnClick(panel.Window(), "1", func(x, y int) {
			ov.OnSettingsClick(geometry.Point{X: x, Y: y})
		}); err != nil {
			logger.Warn("settings panel clicks unavailable", "error", err)
		}
		if err := conn.OnDeleteRequest(panel.Window(), func() {
			if err := ov.CloseSettings(); err != nil {
				logger.Warn("failed to close settings", "error", err)
			}
		}); err != nil {
			logger.Warn("settings panel close handler unavailable", "error", err)
		}
		return panel, x11.NewPainter(conn, panel.Window()), nil
	}
	ov.SetSettingsPanel(overlay.NewSettingsPanel(panelFactory, conn.Loop, overlay.SettingsOptions{
		Size:   geometry.Size{Width: cfg.Settings.Width, Height: cfg.Settings.Height},
		Offset: cfg.Settings.Offset,
		Theme:  ovOpts.Theme,
		Policy: settings,
	}, logger))

	if cfg.WatchImage {
		watcher, err := overlay.NewWatcher(conn.Loop.Post, ov.OnImageChanged, logger)
		if err != nil {
			logger.Warn("image watching disabled", "error", err)
		} else {
			ov.SetWatcher(watcher)
		}
	}

	dragger := drag.NewController(surface, conn.Loop, drag.Options{
		ReleaseThreshold: cfg.Snap.ReleaseThreshold,
		MultiMonitor:     cfg.Snap.MultiMonitor,
		OnClick:          ov.OnClick,
		OnDragEnd:        ov.OnDragEnd,
		Logger:           logger,
	})
	dragger.Bind(conn.XUtil, win, "1")

	conn.OnResize(win, func(width, height int) {
		ov.OnResize(geometry.Size{Width: width, Height: height})
	})
	closeOverlay := func() {
		if err := ov.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
	if err := conn.OnDeleteRequest(win, closeOverlay); err != nil {
		logger.Warn("window close handler unavailable", "error", err)
	}

	keys := hotkeys.NewHandler(conn, win, logger)
	if err := keys.Register(Bindings(cfg.Hotkeys, ov, closeOverlay, logger)); err != nil {
		logger.Warn("some hotkeys could not be registered", "error", err)
	}

	if err := ov.CreateContent(); err != nil {
		return fmt.Errorf("failed to create overlay content: %w", err)
	}
	if opts.ImagePath != "" {
		if err := ov.LoadImage(opts.ImagePath); err != nil {
			logger.Error("failed to load image", "path", opts.ImagePath, "error", err)
		}
	}

	srv := ipc.NewServer(socketPath, NewController(conn.Loop, ov, surface.Displays), logger)
	if err := srv.Start(); err != nil {
		ov.Close()
		return err
	}
	defer srv.Stop()

	rec := NewReconciler(ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   logger,
	}, conn.Loop.Post, ov.Reconcile)
	recCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go rec.Run(recCtx)

	go func() {
		<-recCtx.Done()
		conn.Loop.Post(closeOverlay)
	}()

	logger.Info("overlay running", "window", win, "socket", socketPath)
	conn.EventLoop()
	logger.Info("overlay closed")
	return nil
}

// Bindings maps the configured hotkeys onto overlay actions.
func Bindings(keys config.HotkeyConfig, ov *overlay.Overlay, closeOverlay func(), logger *slog.Logger) []hotkeys.Binding {
	logErr := func(action string, err error) {
		if err != nil {
			logger.Warn("hotkey action failed", "action", action, "error", err)
		}
	}
	return []hotkeys.Binding{
		{Name: "close", Key: keys.Close, Action: closeOverlay},
		{Name: "toggle_frame", Key: keys.ToggleFrame, Action: func() {
			_, err := ov.ToggleDecorations()
			logErr("toggle_frame", err)
		}},
		{Name: "fullscreen", Key: keys.Fullscreen, Action: func() {
			_, err := ov.ToggleFullscreen()
			logErr("fullscreen", err)
		}},
		{Name: "topmost", Key: keys.Topmost, Action: func() {
			_, err := ov.ToggleAlwaysOnTop()
			logErr("topmost", err)
		}},
		{Name: "minimize", Key: keys.Minimize, Action: func() { logErr("minimize", ov.Minimize()) }},
		{Name: "settings", Key: keys.Settings, Action: func() { logErr("settings", ov.OpenSettings()) }},
		{Name: "clear_image", Key: keys.ClearImage, Action: func() { logErr("clear_image", ov.ClearImage()) }},
	}
}
