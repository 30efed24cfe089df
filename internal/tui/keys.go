package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/rpggio/tracespace/internal/infopanel"
)

type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var (
	panelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1A1A2E"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8888AA")).
			Background(lipgloss.Color("#1A1A2E"))

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Background(lipgloss.Color("#1A1A2E"))

	liveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF88")).
			Background(lipgloss.Color("#1A1A2E"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF4466")).
			Background(lipgloss.Color("#1A1A2E"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFCC00")).
			Background(lipgloss.Color("#1A1A2E"))
)

func statusStyle(s infopanel.State) lipgloss.Style {
	switch s {
	case infopanel.StateActive:
		return liveStyle
	case infopanel.StateError:
		return errorStyle
	default:
		return loadingStyle
	}
}
