package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func textResult(format string, args ...any) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func (s *Server) handleStartOverlay(ctx context.Context, _ *mcpsdk.CallToolRequest, args StartOverlayInput) (*mcpsdk.CallToolResult, StartOverlayOutput, error) {
	image := args.Image
	if image != "" {
		abs, err := filepath.Abs(image)
		if err != nil {
			return nil, StartOverlayOutput{}, fmt.Errorf("invalid image path %q: %w", image, err)
		}
		image = abs
	}

	if s.overlay.Ping() == nil {
		if image != "" {
			if err := s.overlay.LoadImage(image); err != nil {
				return nil, StartOverlayOutput{}, err
			}
		}
		return nil, StartOverlayOutput{AlreadyRunning: true}, nil
	}

	if err := s.startFn(image); err != nil {
		return nil, StartOverlayOutput{}, err
	}
	if err := s.waitForOverlay(ctx); err != nil {
		return nil, StartOverlayOutput{}, err
	}
	return nil, StartOverlayOutput{}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.overlay.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		ImagePath:     st.ImagePath,
		HasImage:      st.HasImage,
		Decoration:    st.Decoration,
		AlwaysOnTop:   st.AlwaysOnTop,
		Fullscreen:    st.Fullscreen,
		Transparency:  st.Transparency,
		SettingsOpen:  st.SettingsOpen,
		X:             st.X,
		Y:             st.Y,
		Width:         st.Width,
		Height:        st.Height,
		UptimeSeconds: st.UptimeSeconds,
	}, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.overlay.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}
	out := ListMonitorsOutput{Monitors: make([]MonitorInfo, 0, len(data.Monitors))}
	for _, m := range data.Monitors {
		out.Monitors = append(out.Monitors, MonitorInfo(m))
	}
	return nil, out, nil
}

func (s *Server) handleLoadImage(_ context.Context, _ *mcpsdk.CallToolRequest, args LoadImageInput) (*mcpsdk.CallToolResult, any, error) {
	if args.Path == "" {
		return nil, nil, fmt.Errorf("path is required")
	}
	if err := s.overlay.LoadImage(args.Path); err != nil {
		return nil, nil, err
	}
	return textResult("Displaying %s", args.Path), nil, nil
}

func (s *Server) handleClearImage(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.overlay.ClearImage(); err != nil {
		return nil, nil, err
	}
	return textResult("Image cleared"), nil, nil
}

func (s *Server) handleToggleFrame(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, ToggleOutput, error) {
	data, err := s.overlay.ToggleFrame()
	if err != nil {
		return nil, ToggleOutput{}, err
	}
	return nil, ToggleOutput{Enabled: data.Enabled, Decoration: data.Decoration}, nil
}

func (s *Server) handleToggleFullscreen(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, ToggleOutput, error) {
	on, err := s.overlay.ToggleFullscreen()
	if err != nil {
		return nil, ToggleOutput{}, err
	}
	return nil, ToggleOutput{Enabled: on}, nil
}

func (s *Server) handleToggleTopmost(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, ToggleOutput, error) {
	on, err := s.overlay.ToggleTopmost()
	if err != nil {
		return nil, ToggleOutput{}, err
	}
	return nil, ToggleOutput{Enabled: on}, nil
}

func (s *Server) handleMinimize(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.overlay.Minimize(); err != nil {
		return nil, nil, err
	}
	return textResult("Overlay minimized"), nil, nil
}

func (s *Server) handleSetTransparency(_ context.Context, _ *mcpsdk.CallToolRequest, args SetTransparencyInput) (*mcpsdk.CallToolResult, SetTransparencyOutput, error) {
	value, err := s.overlay.SetTransparency(args.Value)
	if err != nil {
		return nil, SetTransparencyOutput{}, err
	}
	return nil, SetTransparencyOutput{Value: value}, nil
}

func (s *Server) handleSettingsPanel(_ context.Context, _ *mcpsdk.CallToolRequest, args SettingsPanelInput) (*mcpsdk.CallToolResult, any, error) {
	if args.Open {
		if err := s.overlay.OpenSettings(); err != nil {
			return nil, nil, err
		}
		return textResult("Settings panel open"), nil, nil
	}
	if err := s.overlay.CloseSettings(); err != nil {
		return nil, nil, err
	}
	return textResult("Settings panel closed"), nil, nil
}

func (s *Server) handleCloseOverlay(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.overlay.Close(); err != nil {
		return nil, nil, err
	}
	return textResult("Overlay closed"), nil, nil
}
