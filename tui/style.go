package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleBoard = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleAxis = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleCursor = lipgloss.NewStyle().
			Background(lipgloss.Color("24")).
			Bold(true)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.Color("58")).
			Bold(true)

	styleTarget = lipgloss.NewStyle().
			Background(lipgloss.Color("22"))

	styleFriendly = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	styleEnemy = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	styleTile = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleEvent = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
