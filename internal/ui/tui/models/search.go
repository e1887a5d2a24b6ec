package models

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tsugi-app/tsugi/internal/domain"
	"github.com/tsugi-app/tsugi/internal/log"
	"github.com/tsugi-app/tsugi/internal/ui/tui/keybindings"
	"github.com/tsugi-app/tsugi/internal/ui/tui/styles"
)

// SearchModel is the title search view, the entry point of the application
type SearchModel struct {
	width, height int
	input         textinput.Model
	searching     bool
	errMsg        string
	repo          domain.MediaRepository
}

// NewSearchModel creates the search view
func NewSearchModel(repo domain.MediaRepository) *SearchModel {
	input := textinput.New()
	input.Placeholder = "Anime title..."
	input.CharLimit = 120
	input.Width = 40
	input.Focus()

	return &SearchModel{
		input: input,
		repo:  repo,
	}
}

func (m *SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Resize updates the model with new terminal dimensions
func (m *SearchModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// Reset clears the input so a fresh search starts empty
func (m *SearchModel) Reset() {
	m.input.SetValue("")
	m.searching = false
	m.errMsg = ""
	m.input.Focus()
}

func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if keybindings.GetActionByKey(msg, keybindings.ContextSearch) == keybindings.ActionSubmitSearch {
			query := strings.TrimSpace(m.input.Value())
			if query == "" || m.searching {
				return m, nil
			}
			m.searching = true
			m.errMsg = ""
			return m, m.searchCmd(query)
		}

	case SearchErrorMsg:
		m.searching = false
		m.errMsg = msg.Error.Error()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// searchCmd runs the tracker search in the background
func (m *SearchModel) searchCmd(query string) tea.Cmd {
	return func() tea.Msg {
		log.Info("Searching for anime", "query", query)
		results, err := m.repo.SearchAnime(context.Background(), query, domain.SortPopularity)
		if err != nil {
			return SearchErrorMsg{Error: err}
		}
		return SearchResultsMsg{Query: query, Results: results}
	}
}

func (m *SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Header(m.width, "Tsugi - Anime Search"))
	b.WriteString("\n\n")

	content := "Enter a title to search for:\n\n" + m.input.View() + "\n"
	if m.searching {
		content += "\n" + styles.Subtle.Render("Searching...")
	}
	if m.errMsg != "" {
		content += "\n" + styles.Error.Render("Search failed: "+m.errMsg)
	}
	content += "\n" + styles.Subtle.Render("enter: search • ctrl+h: help • ctrl+c: quit")

	b.WriteString(styles.ContentBox(min(m.width-4, 60), content, 1))

	return styles.CenteredView(m.width, m.height, b.String())
}
