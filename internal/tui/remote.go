// Package tui is an interactive terminal remote for a running overlay.
package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/imgoverlay/internal/ipc"
)

const (
	refreshInterval   = time.Second
	transparencyDelta = 0.05
)

// Remote is the subset of the overlay control API the TUI drives.
// *ipc.Client implements it.
type Remote interface {
	GetStatus() (*ipc.StatusData, error)
	ClearImage() error
	ToggleFrame() (*ipc.ToggleData, error)
	ToggleFullscreen() (bool, error)
	ToggleTopmost() (bool, error)
	Minimize() error
	SetTransparency(value float64) (float64, error)
	OpenSettings() error
	CloseSettings() error
	Close() error
}

var _ Remote = (*ipc.Client)(nil)

// Run starts the TUI and blocks until the user quits.
func Run(remote Remote) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(newModel(remote), tea.WithAltScreen()).Run()
	return err
}

type statusMsg struct {
	data *ipc.StatusData
	err  error
}

type actionMsg struct {
	text string
	err  error
}

type tickMsg struct{}

type clearNoticeMsg struct{}

func refreshCmd(remote Remote) tea.Cmd {
	return func() tea.Msg {
		data, err := remote.GetStatus()
		return statusMsg{data: data, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// action wraps a remote call so its outcome comes back as an actionMsg.
func action(f func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		text, err := f()
		return actionMsg{text: text, err: err}
	}
}
