package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/imgoverlay/internal/ipc"
)

// model is the root bubbletea model.
type model struct {
	remote Remote

	status    *ipc.StatusData
	connected bool
	lastError string
	notice    string

	width  int
	height int
}

func newModel(remote Remote) model {
	return model{remote: remote}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(refreshCmd(m.remote), tickCmd())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(refreshCmd(m.remote), tickCmd())

	case statusMsg:
		if msg.err != nil {
			m.connected = false
			m.status = nil
			m.lastError = msg.err.Error()
			return m, nil
		}
		m.connected = true
		m.status = msg.data
		m.lastError = ""
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.lastError = msg.err.Error()
			return m, refreshCmd(m.remote)
		}
		m.lastError = ""
		m.notice = msg.text
		return m, tea.Batch(refreshCmd(m.remote), tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearNoticeMsg{}
		}))

	case clearNoticeMsg:
		m.notice = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := m.remote
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "r":
		return m, refreshCmd(r)
	}

	// Everything below needs a running overlay.
	if !m.connected {
		return m, nil
	}

	switch msg.String() {
	case "f":
		return m, action(func() (string, error) {
			data, err := r.ToggleFrame()
			if err != nil {
				return "", err
			}
			return "frame: " + data.Decoration, nil
		})
	case "F":
		return m, action(func() (string, error) {
			on, err := r.ToggleFullscreen()
			return fmt.Sprintf("fullscreen: %v", on), err
		})
	case "t":
		return m, action(func() (string, error) {
			on, err := r.ToggleTopmost()
			return fmt.Sprintf("always on top: %v", on), err
		})
	case "m":
		return m, action(func() (string, error) { return "minimized", r.Minimize() })
	case "c":
		return m, action(func() (string, error) { return "image cleared", r.ClearImage() })
	case "s":
		if m.status != nil && m.status.SettingsOpen {
			return m, action(func() (string, error) { return "settings closed", r.CloseSettings() })
		}
		return m, action(func() (string, error) { return "settings open", r.OpenSettings() })
	case "+", "=", "right", "l":
		return m, m.nudgeTransparency(transparencyDelta)
	case "-", "left", "h":
		return m, m.nudgeTransparency(-transparencyDelta)
	case "x":
		return m, action(func() (string, error) { return "overlay closed", r.Close() })
	}
	return m, nil
}

func (m model) nudgeTransparency(delta float64) tea.Cmd {
	if m.status == nil {
		return nil
	}
	target := m.status.Transparency + delta
	r := m.remote
	return action(func() (string, error) {
		applied, err := r.SetTransparency(target)
		return fmt.Sprintf("transparency: %.2f", applied), err
	})
}

// View implements tea.Model.
func (m model) View() string {
	return renderView(m)
}
