package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/imgoverlay/internal/config"
	"github.com/1broseidon/imgoverlay/internal/ipc"
)

const (
	ServerName    = "imgoverlay"
	ServerVersion = "0.1.0"
)

// Overlay is the control surface of a running overlay. *ipc.Client
// implements it.
type Overlay interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	LoadImage(path string) error
	ClearImage() error
	ToggleFrame() (*ipc.ToggleData, error)
	ToggleFullscreen() (bool, error)
	ToggleTopmost() (bool, error)
	Minimize() error
	SetTransparency(value float64) (float64, error)
	OpenSettings() error
	CloseSettings() error
	Close() error
	Ping() error
}

var _ Overlay = (*ipc.Client)(nil)

// Server is the MCP server exposing overlay controls as tools. Every tool
// forwards to the overlay's control socket.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	overlay   Overlay

	// Hooks for starting the overlay process (primarily for tests).
	display      *displayResolver
	startFn      func(imagePath string) error
	startTimeout time.Duration
	pollInterval time.Duration
}

// NewServer creates a new MCP server talking to overlay.
func NewServer(cfg *config.Config, overlay Overlay) *Server {
	s := &Server{
		config:       cfg,
		overlay:      overlay,
		display:      newDisplayResolver(),
		startTimeout: 5 * time.Second,
		pollInterval: 100 * time.Millisecond,
	}
	s.startFn = s.launchOverlay

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "start_overlay",
		Description: "Start the image overlay window if it is not already running. Optionally show an image right away. The overlay is launched on the user's X display.",
	}, s.handleStartOverlay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_status",
		Description: "Report the overlay window state: displayed image, position and size, frame mode, always-on-top, fullscreen, transparency and whether the settings panel is open.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the connected monitors and their geometry in desktop coordinates.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "load_image",
		Description: "Display an image file (png, jpeg, gif, bmp, tiff or webp) in the overlay. The window grows to fit the image and stays on screen.",
	}, s.handleLoadImage)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "clear_image",
		Description: "Remove the displayed image and shrink the overlay back to its empty size, undoing any shift the image caused.",
	}, s.handleClearImage)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_frame",
		Description: "Toggle the overlay's window frame (decorated vs. borderless).",
	}, s.handleToggleFrame)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_fullscreen",
		Description: "Toggle fullscreen for the overlay window.",
	}, s.handleToggleFullscreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_topmost",
		Description: "Toggle whether the overlay stays above other windows.",
	}, s.handleToggleTopmost)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_overlay",
		Description: "Minimize the overlay window. A borderless overlay gets its frame back first.",
	}, s.handleMinimize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_transparency",
		Description: "Set the overlay opacity. Values are clamped to 0.5-1.0; the applied value is returned.",
	}, s.handleSetTransparency)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "settings_panel",
		Description: "Open or close the overlay settings panel.",
	}, s.handleSettingsPanel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_overlay",
		Description: "Close the overlay window and stop its process.",
	}, s.handleCloseOverlay)
}

// launchOverlay starts `imgoverlay run` detached from this process.
func (s *Server) launchOverlay(imagePath string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to find executable: %w", err)
	}
	args := []string{"run"}
	if imagePath != "" {
		args = append(args, "--image", imagePath)
	}

	cmd := exec.Command(exe, args...)
	target, err := applyDisplayEnv(cmd, s.display, s.config)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch overlay: %w", err)
	}
	log.Printf("launched overlay pid %d on %s (from %s)", cmd.Process.Pid, target.Display, target.Source)
	go cmd.Wait()
	return nil
}

// waitForOverlay polls until the overlay answers or the timeout passes.
func (s *Server) waitForOverlay(ctx context.Context) error {
	deadline := time.Now().Add(s.startTimeout)
	for {
		err := s.overlay.Ping()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("overlay did not come up within %s: %w", s.startTimeout, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}
