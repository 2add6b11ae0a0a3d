package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// Controller carries out overlay commands. Implementations are responsible
// for running them on the UI goroutine; the server calls them from
// connection goroutines.
type Controller interface {
	Status() (StatusData, error)
	Monitors() ([]MonitorInfo, error)
	LoadImage(path string) error
	ClearImage() error
	ToggleFrame() (string, error)
	ToggleFullscreen() (bool, error)
	ToggleTopmost() (bool, error)
	Minimize() error
	SetTransparency(value float64) (float64, error)
	OpenSettings() error
	CloseSettings() error
	Close() error
}

// readTimeout bounds how long a client may take to send its request.
const readTimeout = 5 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	log          *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a server for socketPath. A stale socket file left by a
// previous run is removed.
func NewServer(socketPath string, ctrl Controller, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		log:        log,
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.log.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.log.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(readTimeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.log.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.log.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.log.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.log.Debug("IPC command", "command", req.Command)

	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandLoadImage:
		return s.handleLoadImage(req.Payload)
	case CommandClearImage:
		return okOrError(s.ctrl.ClearImage(), "Failed to clear image")
	case CommandToggleFrame:
		mode, err := s.ctrl.ToggleFrame()
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to toggle frame: %v", err))
		}
		return okWith(ToggleData{Enabled: mode == "decorated", Decoration: mode})
	case CommandToggleFullscreen:
		return s.handleToggle(s.ctrl.ToggleFullscreen, "fullscreen")
	case CommandToggleTopmost:
		return s.handleToggle(s.ctrl.ToggleTopmost, "always on top")
	case CommandMinimize:
		return okOrError(s.ctrl.Minimize(), "Failed to minimize")
	case CommandSetTransparency:
		return s.handleSetTransparency(req.Payload)
	case CommandOpenSettings:
		return okOrError(s.ctrl.OpenSettings(), "Failed to open settings")
	case CommandCloseSettings:
		return okOrError(s.ctrl.CloseSettings(), "Failed to close settings")
	case CommandClose:
		return okOrError(s.ctrl.Close(), "Failed to close")
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	status, err := s.ctrl.Status()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	return okWith(status)
}

func (s *Server) handleGetMonitors() *Response {
	monitors, err := s.ctrl.Monitors()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}
	return okWith(MonitorsData{Monitors: monitors})
}

func (s *Server) handleLoadImage(payload json.RawMessage) *Response {
	var req LoadImagePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid load payload: %v", err))
	}
	if req.Path == "" {
		return NewErrorResponse("path is required")
	}
	return okOrError(s.ctrl.LoadImage(req.Path), "Failed to load image")
}

func (s *Server) handleSetTransparency(payload json.RawMessage) *Response {
	var req SetTransparencyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid transparency payload: %v", err))
	}
	value, err := s.ctrl.SetTransparency(req.Value)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set transparency: %v", err))
	}
	return okWith(TransparencyData{Value: value})
}

func (s *Server) handleToggle(toggle func() (bool, error), what string) *Response {
	on, err := toggle()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to toggle %s: %v", what, err))
	}
	return okWith(ToggleData{Enabled: on})
}

func okWith(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func okOrError(err error, prefix string) *Response {
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("%s: %v", prefix, err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server, waiting for requests in flight
// to be answered.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
