package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tsugi-app/tsugi/internal/domain"
	"github.com/tsugi-app/tsugi/internal/ui/tui/keybindings"
	"github.com/tsugi-app/tsugi/internal/ui/tui/styles"
	"github.com/tsugi-app/tsugi/internal/ui/tui/util"
)

// EpisodeSelectModel lets the user pick which episode of a show to play
type EpisodeSelectModel struct {
	width, height int
	anime         domain.Anime
	progress      int // tracker progress, 0 when unknown or untracked
	cursor        int // zero-based episode index
	offset        int

	jumpMode  bool
	jumpInput textinput.Model
}

// NewEpisodeSelectModel creates the episode selection view
func NewEpisodeSelectModel() *EpisodeSelectModel {
	input := textinput.New()
	input.Placeholder = "Episode number"
	input.CharLimit = 5
	input.Width = 16

	return &EpisodeSelectModel{jumpInput: input}
}

// Resize updates the model with new terminal dimensions
func (m *EpisodeSelectModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// SetAnime loads a show into the view, placing the cursor on the next
// unwatched episode
func (m *EpisodeSelectModel) SetAnime(anime domain.Anime) {
	m.anime = anime
	m.progress = 0
	m.cursor = 0
	m.offset = 0
	m.jumpMode = false
	m.jumpInput.SetValue("")
}

// SetProgress updates the tracker progress and moves the cursor onto the
// next unwatched episode
func (m *EpisodeSelectModel) SetProgress(progress int) {
	m.progress = progress
	next := progress // zero-based index of episode progress+1
	if count := m.episodeCount(); next >= count {
		next = count - 1
	}
	if next < 0 {
		next = 0
	}
	m.cursor = next
	m.scrollToCursor()
}

// episodeCount falls back to one past the known progress when the tracker
// does not know the total, so an airing show is still navigable
func (m *EpisodeSelectModel) episodeCount() int {
	if m.anime.Episodes > 0 {
		return m.anime.Episodes
	}
	return m.progress + 1
}

func (m *EpisodeSelectModel) visibleRows() int {
	rows := m.height - 8
	if rows < 1 {
		return 1
	}
	return rows
}

func (m *EpisodeSelectModel) Init() tea.Cmd {
	return nil
}

func (m *EpisodeSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressLoadedMsg:
		if msg.MediaID == m.anime.ID {
			m.SetProgress(msg.Progress)
		}
		return m, nil

	case tea.KeyMsg:
		if m.jumpMode {
			return m.updateJumpMode(msg)
		}
		return m.updateListMode(msg)
	}

	return m, nil
}

// updateJumpMode handles keys while the episode number input is active
func (m *EpisodeSelectModel) updateJumpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.jumpMode = false
		m.jumpInput.SetValue("")
		return m, nil
	case "enter":
		episode, err := strconv.Atoi(strings.TrimSpace(m.jumpInput.Value()))
		m.jumpMode = false
		m.jumpInput.SetValue("")
		if err != nil || episode < 1 || episode > m.episodeCount() {
			return m, nil
		}
		m.cursor = episode - 1
		m.scrollToCursor()
		return m, playEpisodeCmd(episode)
	}

	var cmd tea.Cmd
	m.jumpInput, cmd = m.jumpInput.Update(msg)
	return m, cmd
}

// updateListMode handles keys for the episode list itself
func (m *EpisodeSelectModel) updateListMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := m.episodeCount()

	switch keybindings.GetActionByKey(msg, keybindings.ContextEpisodeSelect) {
	case keybindings.ActionMoveUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case keybindings.ActionMoveDown:
		if m.cursor < count-1 {
			m.cursor++
		}
	case keybindings.ActionPageUp:
		m.cursor -= m.visibleRows()
		if m.cursor < 0 {
			m.cursor = 0
		}
	case keybindings.ActionPageDown:
		m.cursor += m.visibleRows()
		if m.cursor > count-1 {
			m.cursor = count - 1
		}
	case keybindings.ActionMoveTop:
		m.cursor = 0
	case keybindings.ActionMoveBottom:
		m.cursor = count - 1
	case keybindings.ActionPlayEpisode:
		return m, playEpisodeCmd(m.cursor + 1)
	case keybindings.ActionPlayNextUnseen:
		next := m.progress + 1
		if next > count {
			next = count
		}
		return m, playEpisodeCmd(next)
	case keybindings.ActionJumpToEpisode:
		m.jumpMode = true
		m.jumpInput.Focus()
		return m, textinput.Blink
	}

	m.scrollToCursor()
	return m, nil
}

func playEpisodeCmd(episode int) tea.Cmd {
	return func() tea.Msg {
		return PlayEpisodeMsg{Episode: episode}
	}
}

func (m *EpisodeSelectModel) scrollToCursor() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *EpisodeSelectModel) View() string {
	var b strings.Builder

	title := util.TruncateString(m.anime.Title.Preferred(), m.width-10)
	b.WriteString(styles.Header(m.width, title))
	b.WriteString("\n")

	if m.progress > 0 {
		b.WriteString(styles.StatusBar.Render(fmt.Sprintf("Watched up to episode %d", m.progress)))
	} else {
		b.WriteString(styles.StatusBar.Render("No watch history for this show"))
	}
	b.WriteString("\n\n")

	count := m.episodeCount()
	rows := m.visibleRows()
	end := m.offset + rows
	if end > count {
		end = count
	}

	for i := m.offset; i < end; i++ {
		episode := i + 1
		label := fmt.Sprintf("  Episode %d", episode)
		if episode <= m.progress {
			label = styles.Watched.Render(label + "  ✓")
		}
		if i == m.cursor {
			label = styles.Selected.Render(fmt.Sprintf("> Episode %d", episode))
		}
		b.WriteString(label)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.jumpMode {
		b.WriteString(styles.StatusBar.Render("Jump to episode: " + m.jumpInput.View()))
	} else {
		b.WriteString(styles.StatusBar.Render("enter: play  •  n: next unwatched  •  /: jump  •  esc: back"))
	}

	return b.String()
}
