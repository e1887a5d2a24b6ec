package models

import (
	"strings"

	"github.com/tsugi-app/tsugi/internal/ui/tui/keybindings"
	"github.com/tsugi-app/tsugi/internal/ui/tui/styles"
)

// HelpModel renders the keybinding help overlay for the active view
type HelpModel struct {
	width, height int
}

// NewHelpModel creates the help overlay
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Resize updates the model with new terminal dimensions
func (m *HelpModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// helpContext maps a view to the keybinding context shown for it
func helpContext(view View) (string, keybindings.ContextName) {
	switch view {
	case ViewSearch:
		return "Search", keybindings.ContextSearch
	case ViewResults:
		return "Results", keybindings.ContextResults
	case ViewEpisodeSelect:
		return "Episode Selection", keybindings.ContextEpisodeSelect
	default:
		return "", ""
	}
}

func (m *HelpModel) View(activeView View) string {
	var b strings.Builder

	b.WriteString(styles.Header(m.width, "Help"))
	b.WriteString("\n\n")

	var sections []string
	if title, ctx := helpContext(activeView); ctx != "" {
		sections = append(sections, keybindings.GetHelpText(title, keybindings.ContextBindings[ctx]))
	}
	sections = append(sections, keybindings.GetHelpText("Global", keybindings.ContextBindings[keybindings.ContextGlobal]))

	sections = append(sections, "## During Playback\n\n"+
		"* Shift+N or >: jump to the next episode\n"+
		"* Shift+P or <: jump to the previous episode\n")

	b.WriteString(styles.ContentBox(min(m.width-4, 70), strings.Join(sections, "\n"), 1))
	b.WriteString("\n")
	b.WriteString(styles.Subtle.Render("ctrl+h or esc to close"))

	return styles.CenteredView(m.width, m.height, b.String())
}
