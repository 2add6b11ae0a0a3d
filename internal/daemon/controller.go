package daemon

import (
	"github.com/1broseidon/imgoverlay/internal/ipc"
	"github.com/1broseidon/imgoverlay/internal/overlay"
	"github.com/1broseidon/imgoverlay/internal/platform"
)

// Caller runs f on the UI goroutine and waits for its result.
type Caller interface {
	Call(f func() error) error
}

// DisplayLister reports the physical displays.
type DisplayLister func() ([]platform.Display, error)

// Controller serves control-socket commands by running them against the
// overlay on the UI goroutine.
type Controller struct {
	ui       Caller
	ov       *overlay.Overlay
	displays DisplayLister
}

var _ ipc.Controller = (*Controller)(nil)

// NewController creates a controller for ov.
func NewController(ui Caller, ov *overlay.Overlay, displays DisplayLister) *Controller {
	return &Controller{ui: ui, ov: ov, displays: displays}
}

func (c *Controller) Status() (ipc.StatusData, error) {
	var status ipc.StatusData
	err := c.ui.Call(func() error {
		st, err := c.ov.Status()
		if err != nil {
			return err
		}
		status = ipc.StatusData{
			ImagePath:    st.ImagePath,
			HasImage:     st.HasImage,
			Decoration:   st.Decoration.String(),
			AlwaysOnTop:  st.AlwaysOnTop,
			Fullscreen:   st.Fullscreen,
			Transparency: st.Transparency,
			SettingsOpen: st.SettingsOpen,
			X:            st.Rect.X,
			Y:            st.Rect.Y,
			Width:        st.Rect.Width,
			Height:       st.Rect.Height,
		}
		return nil
	})
	return status, err
}

func (c *Controller) Monitors() ([]ipc.MonitorInfo, error) {
	var monitors []ipc.MonitorInfo
	err := c.ui.Call(func() error {
		displays, err := c.displays()
		if err != nil {
			return err
		}
		monitors = make([]ipc.MonitorInfo, 0, len(displays))
		for _, d := range displays {
			monitors = append(monitors, ipc.MonitorInfo{
				ID:      d.ID,
				Name:    d.Name,
				Primary: d.Primary,
				X:       d.Bounds.X,
				Y:       d.Bounds.Y,
				Width:   d.Bounds.Width,
				Height:  d.Bounds.Height,
			})
		}
		return nil
	})
	return monitors, err
}

func (c *Controller) LoadImage(path string) error {
	return c.ui.Call(func() error { return c.ov.LoadImage(path) })
}

func (c *Controller) ClearImage() error {
	return c.ui.Call(c.ov.ClearImage)
}

func (c *Controller) ToggleFrame() (string, error) {
	var mode platform.DecorationMode
	err := c.ui.Call(func() error {
		var err error
		mode, err = c.ov.ToggleDecorations()
		return err
	})
	return mode.String(), err
}

func (c *Controller) ToggleFullscreen() (bool, error) {
	return c.toggle(c.ov.ToggleFullscreen)
}

func (c *Controller) ToggleTopmost() (bool, error) {
	return c.toggle(c.ov.ToggleAlwaysOnTop)
}

func (c *Controller) toggle(f func() (bool, error)) (bool, error) {
	var on bool
	err := c.ui.Call(func() error {
		var err error
		on, err = f()
		return err
	})
	return on, err
}

func (c *Controller) Minimize() error {
	return c.ui.Call(c.ov.Minimize)
}

func (c *Controller) SetTransparency(value float64) (float64, error) {
	var applied float64
	err := c.ui.Call(func() error {
		var err error
		applied, err = c.ov.SetTransparency(value)
		return err
	})
	return applied, err
}

func (c *Controller) OpenSettings() error {
	return c.ui.Call(c.ov.OpenSettings)
}

func (c *Controller) CloseSettings() error {
	return c.ui.Call(c.ov.CloseSettings)
}

func (c *Controller) Close() error {
	return c.ui.Call(c.ov.Close)
}
