package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus        CommandType = "GET_STATUS"
	CommandGetMonitors      CommandType = "GET_MONITORS"
	CommandLoadImage        CommandType = "LOAD_IMAGE"
	CommandClearImage       CommandType = "CLEAR_IMAGE"
	CommandToggleFrame      CommandType = "TOGGLE_FRAME"
	CommandToggleFullscreen CommandType = "TOGGLE_FULLSCREEN"
	CommandToggleTopmost    CommandType = "TOGGLE_TOPMOST"
	CommandMinimize         CommandType = "MINIMIZE"
	CommandSetTransparency  CommandType = "SET_TRANSPARENCY"
	CommandOpenSettings     CommandType = "OPEN_SETTINGS"
	CommandCloseSettings    CommandType = "CLOSE_SETTINGS"
	CommandClose            CommandType = "CLOSE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
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

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Primary bool   `json:"primary"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

type LoadImagePayload struct {
	Path string `json:"path"`
}

type SetTransparencyPayload struct {
	Value float64 `json:"value"`
}

// ToggleData is returned by the TOGGLE_* commands. Decoration is only set
// for TOGGLE_FRAME.
type ToggleData struct {
	Enabled    bool   `json:"enabled"`
	Decoration string `json:"decoration,omitempty"`
}

type TransparencyData struct {
	Value float64 `json:"value"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
