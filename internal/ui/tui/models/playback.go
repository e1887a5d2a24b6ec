package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tsugi-app/tsugi/internal/service"
	"github.com/tsugi-app/tsugi/internal/ui/tui/styles"
	"github.com/tsugi-app/tsugi/internal/ui/tui/util"
)

// PlaybackModel shows playback status while the external player is running
// and the session summary once it closes
type PlaybackModel struct {
	width, height int
	title         string
	episode       int
	playing       bool
	spinner       spinner.Model
	result        *service.StreamResult
	errMsg        string
}

// NewPlaybackModel creates the playback status view
func NewPlaybackModel() *PlaybackModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5AC8FA"))

	return &PlaybackModel{spinner: s}
}

// Resize updates the model with new terminal dimensions
func (m *PlaybackModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// Start puts the view into its in-flight state for a new session
func (m *PlaybackModel) Start(title string, episode int) tea.Cmd {
	m.title = title
	m.episode = episode
	m.playing = true
	m.result = nil
	m.errMsg = ""
	return m.spinner.Tick
}

func (m *PlaybackModel) Init() tea.Cmd {
	return nil
}

func (m *PlaybackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.playing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case PlaybackFinishedMsg:
		m.playing = false
		m.result = msg.Result
		return m, nil

	case PlaybackErrorMsg:
		m.playing = false
		m.errMsg = msg.Error.Error()
		return m, nil
	}

	return m, nil
}

func (m *PlaybackModel) View() string {
	var b strings.Builder

	title := util.TruncateString(m.title, m.width-10)
	b.WriteString(styles.Header(m.width, title))
	b.WriteString("\n\n")

	switch {
	case m.playing:
		content := fmt.Sprintf("%s Playing episode %d in mpv\n\n", m.spinner.View(), m.episode) +
			styles.Subtle.Render("Shift+N: next episode  •  Shift+P: previous episode\nClose the player window to return here")
		b.WriteString(styles.ContentBox(min(m.width-4, 64), content, 1))

	case m.errMsg != "":
		content := styles.Error.Render("Playback failed") + "\n\n" + m.errMsg + "\n\n" +
			styles.Subtle.Render("esc: back")
		b.WriteString(styles.ContentBox(min(m.width-4, 64), content, 1))

	case m.result != nil:
		content := fmt.Sprintf("Finished on episode %d (%.0f%% watched)\n", m.result.Episode, m.result.WatchedPercent)
		if m.result.Completed {
			if m.result.Synced {
				content += styles.Watched.Render("Episode marked as watched and synced") + "\n"
			} else {
				content += styles.Watched.Render("Episode marked as watched locally") + "\n"
			}
		}
		content += "\n" + styles.Subtle.Render("esc: back to episodes")
		b.WriteString(styles.ContentBox(min(m.width-4, 64), content, 1))
	}

	return styles.CenteredView(m.width, m.height, b.String())
}
