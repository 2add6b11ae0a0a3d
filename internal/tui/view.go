package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	troughStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	fillStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
)

const barWidth = 20

func renderStatusBar(connected bool, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		status = dot + " overlay running"
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " overlay not running"
	}
	style := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(status)
}

// transparencyBar draws value (0.5-1.0) as a filled bar.
func transparencyBar(value float64) string {
	filled := int((value - 0.5) / 0.5 * barWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return fillStyle.Render(strings.Repeat("█", filled)) +
		troughStyle.Render(strings.Repeat("░", barWidth-filled)) +
		fmt.Sprintf(" %.2f", value)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func renderView(m model) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("imgoverlay"))
	b.WriteString("\n")
	b.WriteString(renderStatusBar(m.connected, m.width))
	b.WriteString("\n\n")

	if st := m.status; st != nil {
		image := st.ImagePath
		if !st.HasImage {
			image = "(none)"
		}
		rows := []string{
			row("image", image),
			row("geometry", fmt.Sprintf("%dx%d at %d,%d", st.Width, st.Height, st.X, st.Y)),
			row("frame", st.Decoration),
			row("always on top", onOff(st.AlwaysOnTop)),
			row("fullscreen", onOff(st.Fullscreen)),
			row("transparency", transparencyBar(st.Transparency)),
			row("settings panel", onOff(st.SettingsOpen)),
		}
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
		b.WriteString("\n\n")
	}

	if m.lastError != "" {
		b.WriteString(errorStyle.Render(m.lastError))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("f: frame  F: fullscreen  t: topmost  m: minimize  c: clear  s: settings"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("+/-: transparency  x: close overlay  r: refresh  q: quit"))
	return b.String()
}
