package daemon

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/imgoverlay/internal/config"
)

// ErrAlreadyRunning is returned when another overlay answers on the socket.
var ErrAlreadyRunning = errors.New("an overlay is already running")

// ErrUnsupported is returned by Run on platforms without an X11 backend.
var ErrUnsupported = errors.New("the overlay requires an X11 display (linux only)")

// Options configures Run.
type Options struct {
	Config     *config.Config
	ImagePath  string // shown on start when set
	SocketPath string
	Logger     *slog.Logger
}
