package models

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tsugi-app/tsugi/internal/domain"
	"github.com/tsugi-app/tsugi/internal/ui/tui/keybindings"
	"github.com/tsugi-app/tsugi/internal/ui/tui/styles"
	"github.com/tsugi-app/tsugi/internal/ui/tui/util"
)

// ResultsModel shows tracker search results and lets the user pick a show
type ResultsModel struct {
	width, height int
	query         string
	results       []domain.Anime
	cursor        int
	offset        int // first visible row
}

// NewResultsModel creates the results view
func NewResultsModel() *ResultsModel {
	return &ResultsModel{}
}

// Resize updates the model with new terminal dimensions
func (m *ResultsModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// SetResults replaces the result list and resets the cursor
func (m *ResultsModel) SetResults(query string, results []domain.Anime) {
	m.query = query
	m.results = results
	m.cursor = 0
	m.offset = 0
}

// visibleRows is how many result rows fit in the current terminal height
func (m *ResultsModel) visibleRows() int {
	rows := m.height - 6 // header, footer and borders
	if rows < 1 {
		return 1
	}
	return rows
}

func (m *ResultsModel) Init() tea.Cmd {
	return nil
}

func (m *ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keybindings.GetActionByKey(keyMsg, keybindings.ContextResults) {
	case keybindings.ActionMoveUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case keybindings.ActionMoveDown:
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
	case keybindings.ActionPageUp:
		m.cursor -= m.visibleRows()
		if m.cursor < 0 {
			m.cursor = 0
		}
	case keybindings.ActionPageDown:
		m.cursor += m.visibleRows()
		if m.cursor > len(m.results)-1 {
			m.cursor = len(m.results) - 1
		}
	case keybindings.ActionMoveTop:
		m.cursor = 0
	case keybindings.ActionMoveBottom:
		m.cursor = len(m.results) - 1
	case keybindings.ActionSelectShow:
		if m.cursor >= 0 && m.cursor < len(m.results) {
			selected := m.results[m.cursor]
			return m, func() tea.Msg {
				return ShowSelectedMsg{Anime: selected}
			}
		}
	}

	m.scrollToCursor()
	return m, nil
}

// scrollToCursor keeps the cursor inside the visible window
func (m *ResultsModel) scrollToCursor() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *ResultsModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Header(m.width, fmt.Sprintf("Results for \"%s\"", m.query)))
	b.WriteString("\n")

	if len(m.results) == 0 {
		b.WriteString(styles.CenteredText(m.width, "No results.  Press / to search again."))
		return b.String()
	}

	rows := m.visibleRows()
	end := m.offset + rows
	if end > len(m.results) {
		end = len(m.results)
	}

	titleWidth := m.width - 30
	if titleWidth < 20 {
		titleWidth = 20
	}

	for i := m.offset; i < end; i++ {
		anime := m.results[i]
		line := fmt.Sprintf(" %s  %s", util.TruncateString(anime.Title.Preferred(), titleWidth), resultMeta(anime))
		if i == m.cursor {
			line = styles.Selected.Render(">" + line[1:])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render(fmt.Sprintf("%d/%d  •  enter: select  •  /: new search  •  esc: back", m.cursor+1, len(m.results))))

	return b.String()
}

// resultMeta renders the short metadata column for one result row
func resultMeta(anime domain.Anime) string {
	episodes := "?"
	if anime.Episodes > 0 {
		episodes = fmt.Sprintf("%d", anime.Episodes)
	}

	meta := fmt.Sprintf("%s • %s eps", anime.Format, episodes)
	if anime.SeasonYear > 0 {
		meta = fmt.Sprintf("%d • %s", anime.SeasonYear, meta)
	}
	return styles.Subtle.Render(meta)
}
