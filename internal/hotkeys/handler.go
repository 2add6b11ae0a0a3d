package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/imgoverlay/internal/x11"
)

// Binding ties a key sequence such as "Escape" or "control-f" to an action.
// An empty Key leaves the action unbound.
type Binding struct {
	Name   string
	Key    string
	Action func()
}

// Handler manages keyboard shortcuts for one window. Keys are only seen
// while the window has input focus.
type Handler struct {
	xu  *xgbutil.XUtil
	win xproto.Window
	log *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler for win.
func NewHandler(conn *x11.Connection, win xproto.Window, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:  conn.XUtil,
		win: win,
		log: log,
	}
}

// Register connects every binding with a key. All bindings are attempted;
// the failures are joined into the returned error.
func (h *Handler) Register(bindings []Binding) error {
	var errs []error
	for _, b := range bindings {
		if b.Key == "" || b.Action == nil {
			continue
		}
		if err := h.RegisterFunc(b.Key, b.Action); err != nil {
			errs = append(errs, fmt.Errorf("hotkey %s (%s): %w", b.Name, b.Key, err))
			continue
		}
		h.log.Debug("hotkey registered", "action", b.Name, "key", b.Key)
	}
	return errors.Join(errs...)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.win, keySequence, false)
}

// Detach removes every key binding on the window.
func (h *Handler) Detach() {
	keybind.Detach(h.xu, h.win)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
