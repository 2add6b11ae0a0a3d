package config

import (
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"
)

// Default window geometry, matching the empty overlay.
const (
	DefaultWidth  = 400
	DefaultHeight = 300
)

// WindowConfig configures the overlay window.
type WindowConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	Title        string  `yaml:"title"`
	Transparency float64 `yaml:"transparency"` // 0.5 - 1.0
	Borderless   bool    `yaml:"borderless"`
	AlwaysOnTop  bool    `yaml:"always_on_top"`
}

// SnapConfig configures edge snapping and drag release.
type SnapConfig struct {
	Threshold        int  `yaml:"threshold"`
	ReleaseThreshold int  `yaml:"release_threshold"`
	MultiMonitor     bool `yaml:"multi_monitor"`
}

// SettingsConfig configures the settings panel.
type SettingsConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Offset int `yaml:"offset"` // gap between the overlay and the panel
}

// ImageConfig configures how images are fitted into the window.
type ImageConfig struct {
	MaxInset  int `yaml:"max_inset"`  // images are fitted within screen size minus this
	PadWidth  int `yaml:"pad_width"`  // extra window width around the image
	PadHeight int `yaml:"pad_height"` // extra window height around the image
}

// HotkeyConfig maps overlay actions to xgbutil key strings. Empty disables
// the binding.
type HotkeyConfig struct {
	Close       string `yaml:"close"`
	ToggleFrame string `yaml:"toggle_frame"`
	Fullscreen  string `yaml:"fullscreen"`
	Topmost     string `yaml:"topmost"`
	Minimize    string `yaml:"minimize"`
	Settings    string `yaml:"settings"`
	ClearImage  string `yaml:"clear_image"`
}

// ThemeConfig holds the overlay colors as #rrggbb strings.
type ThemeConfig struct {
	Background string `yaml:"background"`
	Panel      string `yaml:"panel"`
	Button     string `yaml:"button"`
	Danger     string `yaml:"danger"`
	Foreground string `yaml:"foreground"`
	Trough     string `yaml:"trough"`
}

// Theme is the parsed, read-only color set.
type Theme struct {
	Background color.RGBA
	Panel      color.RGBA
	Button     color.RGBA
	Danger     color.RGBA
	Foreground color.RGBA
	Trough     color.RGBA
}

// Config holds the application configuration.
type Config struct {
	Window     WindowConfig   `yaml:"window"`
	Snap       SnapConfig     `yaml:"snap"`
	Settings   SettingsConfig `yaml:"settings"`
	Image      ImageConfig    `yaml:"image"`
	Hotkeys    HotkeyConfig   `yaml:"hotkeys"`
	Theme      ThemeConfig    `yaml:"theme"`
	WatchImage bool           `yaml:"watch_image"`
	LogLevel   string         `yaml:"log_level"`
	Display    string         `yaml:"display,omitempty"`
	XAuthority string         `yaml:"xauthority,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:        DefaultWidth,
			Height:       DefaultHeight,
			Title:        "Image Overlay",
			Transparency: 0.8,
			Borderless:   false,
			AlwaysOnTop:  true,
		},
		Snap: SnapConfig{
			Threshold:        25,
			ReleaseThreshold: 25,
			MultiMonitor:     true,
		},
		Settings: SettingsConfig{
			Width:  300,
			Height: 250,
			Offset: 10,
		},
		Image: ImageConfig{
			MaxInset:  100,
			PadWidth:  20,
			PadHeight: 50,
		},
		Hotkeys: HotkeyConfig{
			Close:       "Escape",
			ToggleFrame: "f",
			Fullscreen:  "F11",
			Topmost:     "t",
			Minimize:    "m",
			Settings:    "s",
			ClearImage:  "c",
		},
		Theme: ThemeConfig{
			Background: "#2c2c2c",
			Panel:      "#404040",
			Button:     "#4a4a4a",
			Danger:     "#d32f2f",
			Foreground: "#ffffff",
			Trough:     "#404040",
		},
		WatchImage: true,
		LogLevel:   "info",
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return &ValidationError{Path: "window", Err: fmt.Errorf("width and height must be positive")}
	}
	if v := c.Window.Transparency; !(v >= 0.5 && v <= 1.0) {
		return &ValidationError{Path: "window.transparency", Err: fmt.Errorf("transparency must be between 0.5 and 1.0")}
	}
	// The policy and drag constructors read 0 as "use the default".
	if c.Snap.Threshold <= 0 {
		return &ValidationError{Path: "snap.threshold", Err: fmt.Errorf("threshold must be > 0")}
	}
	if c.Snap.ReleaseThreshold <= 0 {
		return &ValidationError{Path: "snap.release_threshold", Err: fmt.Errorf("release_threshold must be > 0")}
	}
	if c.Settings.Width <= 0 || c.Settings.Height <= 0 {
		return &ValidationError{Path: "settings", Err: fmt.Errorf("width and height must be positive")}
	}
	if c.Settings.Offset < 0 {
		return &ValidationError{Path: "settings.offset", Err: fmt.Errorf("offset must be >= 0")}
	}
	if c.Image.MaxInset < 0 || c.Image.PadWidth < 0 || c.Image.PadHeight < 0 {
		return &ValidationError{Path: "image", Err: fmt.Errorf("image values must be >= 0")}
	}
	if _, err := c.Theme.Parse(); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	return nil
}

// Parse converts the configured colors.
func (t ThemeConfig) Parse() (Theme, error) {
	var theme Theme
	fields := []struct {
		path  string
		value string
		out   *color.RGBA
	}{
		{"theme.background", t.Background, &theme.Background},
		{"theme.panel", t.Panel, &theme.Panel},
		{"theme.button", t.Button, &theme.Button},
		{"theme.danger", t.Danger, &theme.Danger},
		{"theme.foreground", t.Foreground, &theme.Foreground},
		{"theme.trough", t.Trough, &theme.Trough},
	}
	for _, f := range fields {
		c, err := parseHexColor(f.value)
		if err != nil {
			return Theme{}, &ValidationError{Path: f.path, Err: err}
		}
		*f.out = c
	}
	return theme, nil
}

func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q must be #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q must be #rrggbb", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// ParseLogLevel maps a config log level to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warning, error")
	}
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
