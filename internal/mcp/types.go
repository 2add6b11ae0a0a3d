package mcp

// StartOverlayInput is the input for the start_overlay tool.
type StartOverlayInput struct {
	Image string `json:"image,omitempty" jsonschema:"Optional image file to show once the overlay is up"`
}

// StartOverlayOutput is the output for the start_overlay tool.
type StartOverlayOutput struct {
	AlreadyRunning bool `json:"already_running"`
}

// StatusInput is the input for the overlay_status tool.
type StatusInput struct{}

// StatusOutput is the output for the overlay_status tool.
type StatusOutput struct {
	ImagePath     string  `json:"image_path,omitempty"`
	HasImage      bool    `json:"has_image"`
	Decoration    string  `json:"decoration"`
	AlwaysOnTop   bool    `json:"always_on_top"`
	Fullscreen    bool    `json:"fullscreen"`
	Transparency  float64 `json:"transparency"`
	SettingsOpen  bool    `json:"settings_open"`
	X             int     `json:"x"`
	Y             int     `json:"y"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// MonitorInfo describes a single monitor.
type MonitorInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Primary bool   `json:"primary"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// LoadImageInput is the input for the load_image tool.
type LoadImageInput struct {
	Path string `json:"path" jsonschema:"required,Absolute path of the image file to display"`
}

// NoInput is the input for tools without parameters.
type NoInput struct{}

// ToggleOutput is the output for the toggle_* tools.
type ToggleOutput struct {
	Enabled    bool   `json:"enabled"`
	Decoration string `json:"decoration,omitempty"`
}

// SetTransparencyInput is the input for the set_transparency tool.
type SetTransparencyInput struct {
	Value float64 `json:"value" jsonschema:"required,Opacity between 0.5 (most transparent) and 1.0 (opaque)"`
}

// SetTransparencyOutput is the output for the set_transparency tool.
type SetTransparencyOutput struct {
	Value float64 `json:"value"`
}

// SettingsPanelInput is the input for the settings_panel tool.
type SettingsPanelInput struct {
	Open bool `json:"open" jsonschema:"true to open (or raise) the panel, false to close it"`
}
