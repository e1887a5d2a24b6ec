package models

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsugi-app/tsugi/internal/domain"
	"github.com/tsugi-app/tsugi/internal/service"
)

// Every view model must satisfy tea.Model so AppModel can delegate to it
var (
	_ tea.Model = (*SearchModel)(nil)
	_ tea.Model = (*ResultsModel)(nil)
	_ tea.Model = (*EpisodeSelectModel)(nil)
	_ tea.Model = (*PlaybackModel)(nil)
)

func TestResultsModelCursorMovement(t *testing.T) {
	m := NewResultsModel()
	m.Resize(80, 24)
	m.SetResults("test", []domain.Anime{
		{ID: 1, Title: domain.AnimeTitle{Romaji: "Show One"}},
		{ID: 2, Title: domain.AnimeTitle{Romaji: "Show Two"}},
	})

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = model.(*ResultsModel)
	assert.Equal(t, 1, m.cursor)

	// Cursor cannot run past the last result
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = model.(*ResultsModel)
	assert.Equal(t, 1, m.cursor)
}

func TestResultsModelSelectEmitsShowSelected(t *testing.T) {
	m := NewResultsModel()
	m.Resize(80, 24)
	m.SetResults("test", []domain.Anime{
		{ID: 42, Title: domain.AnimeTitle{Romaji: "Picked Show"}},
	})

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.IsType(t, &ResultsModel{}, model)
	require.NotNil(t, cmd)

	msg := cmd()
	selected, ok := msg.(ShowSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, 42, selected.Anime.ID)
}

func TestPlaybackModelLifecycle(t *testing.T) {
	m := NewPlaybackModel()
	m.Resize(80, 24)

	cmd := m.Start("Test Show", 3)
	require.NotNil(t, cmd)
	assert.True(t, m.playing)

	model, _ := m.Update(PlaybackFinishedMsg{
		Result: &service.StreamResult{Episode: 3, WatchedPercent: 92, Completed: true},
	})
	m = model.(*PlaybackModel)
	assert.False(t, m.playing)
	require.NotNil(t, m.result)
	assert.Equal(t, 3, m.result.Episode)
}

func TestPlaybackModelRecordsError(t *testing.T) {
	m := NewPlaybackModel()
	m.Start("Test Show", 1)

	model, _ := m.Update(PlaybackErrorMsg{Error: errors.New("no playable source")})
	m = model.(*PlaybackModel)
	assert.False(t, m.playing)
	assert.Equal(t, "no playable source", m.errMsg)
}

func TestEpisodeSelectProgressLoadMovesCursor(t *testing.T) {
	m := NewEpisodeSelectModel()
	m.Resize(80, 24)
	m.SetAnime(domain.Anime{ID: 7, Episodes: 12, Title: domain.AnimeTitle{Romaji: "Test Show"}})

	model, _ := m.Update(ProgressLoadedMsg{MediaID: 7, Progress: 4})
	m = model.(*EpisodeSelectModel)
	// Cursor lands on the next unwatched episode (zero-based index)
	assert.Equal(t, 4, m.cursor)

	// Progress for a different show is ignored
	model, _ = m.Update(ProgressLoadedMsg{MediaID: 99, Progress: 10})
	m = model.(*EpisodeSelectModel)
	assert.Equal(t, 4, m.cursor)
}
