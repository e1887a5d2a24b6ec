package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Text styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#0F1014")).
		Background(lipgloss.Color("#5AC8FA")).
		Padding(0, 1)

	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#DEDEDE"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#777777"))

	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E06C75"))

	Selected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0F1014")).
			Background(lipgloss.Color("#98C379"))

	Watched = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98C379"))

	StatusBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC")).
			Padding(0, 2)
)

// Layout helpers
func Header(width int, title string) string {
	return Title.
		Width(width).
		Align(lipgloss.Center).
		Render(title)
}

func ContentBox(width int, content string, padding int) string {
	return lipgloss.NewStyle().
		Width(width).
		Padding(padding).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#555555")).
		Render(content)
}

func CenteredView(width int, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func CenteredText(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(text)
}
