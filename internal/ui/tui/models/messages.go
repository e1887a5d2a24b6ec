package models

import (
	"github.com/tsugi-app/tsugi/internal/domain"
	"github.com/tsugi-app/tsugi/internal/service"
)

// SearchResultsMsg is sent when a title search completes
type SearchResultsMsg struct {
	Query   string
	Results []domain.Anime
}

// SearchErrorMsg is sent when a title search fails
type SearchErrorMsg struct {
	Error error
}

// ShowSelectedMsg is sent when a show is picked from the results list
type ShowSelectedMsg struct {
	Anime domain.Anime
}

// ProgressLoadedMsg carries the tracker progress for the selected show
type ProgressLoadedMsg struct {
	MediaID  int
	Progress int
}

// PlayEpisodeMsg requests playback of a specific episode
type PlayEpisodeMsg struct {
	Episode int
}

// PlaybackFinishedMsg is sent when the player closes
type PlaybackFinishedMsg struct {
	Result *service.StreamResult
}

// PlaybackErrorMsg is sent when playback could not be started
type PlaybackErrorMsg struct {
	Error error
}
