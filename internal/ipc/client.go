package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/1broseidon/imgoverlay/internal/runtimepath"
)

// Client handles IPC communication with a running overlay
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to overlay: %w (is imgoverlay running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("overlay error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// GetStatus retrieves overlay status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// LoadImage displays the image at path. Relative paths are resolved against
// the caller's working directory, not the overlay's.
func (c *Client) LoadImage(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	return c.call(CommandLoadImage, LoadImagePayload{Path: abs}, nil)
}

func (c *Client) ClearImage() error {
	return c.call(CommandClearImage, nil, nil)
}

// ToggleFrame flips window decorations.
func (c *Client) ToggleFrame() (*ToggleData, error) {
	var data ToggleData
	if err := c.call(CommandToggleFrame, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) ToggleFullscreen() (bool, error) {
	var data ToggleData
	if err := c.call(CommandToggleFullscreen, nil, &data); err != nil {
		return false, err
	}
	return data.Enabled, nil
}

func (c *Client) ToggleTopmost() (bool, error) {
	var data ToggleData
	if err := c.call(CommandToggleTopmost, nil, &data); err != nil {
		return false, err
	}
	return data.Enabled, nil
}

func (c *Client) Minimize() error {
	return c.call(CommandMinimize, nil, nil)
}

// SetTransparency sets the window opacity and returns the applied (clamped)
// value.
func (c *Client) SetTransparency(value float64) (float64, error) {
	var data TransparencyData
	if err := c.call(CommandSetTransparency, SetTransparencyPayload{Value: value}, &data); err != nil {
		return 0, err
	}
	return data.Value, nil
}

func (c *Client) OpenSettings() error {
	return c.call(CommandOpenSettings, nil, nil)
}

func (c *Client) CloseSettings() error {
	return c.call(CommandCloseSettings, nil, nil)
}

// Close asks the overlay to exit.
func (c *Client) Close() error {
	return c.call(CommandClose, nil, nil)
}

// Ping checks if the overlay is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
