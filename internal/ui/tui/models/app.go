package models

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tsugi-app/tsugi/internal/auth"
	"github.com/tsugi-app/tsugi/internal/config"
	"github.com/tsugi-app/tsugi/internal/domain"
	"github.com/tsugi-app/tsugi/internal/log"
	"github.com/tsugi-app/tsugi/internal/player"
	"github.com/tsugi-app/tsugi/internal/provider/allanime"
	"github.com/tsugi-app/tsugi/internal/registry"
	"github.com/tsugi-app/tsugi/internal/repository/anilist"
	"github.com/tsugi-app/tsugi/internal/service"
)

// AppModel is the main application model that coordinates all child models.  It is the high level wrapper.
type AppModel struct {
	config        *config.Config
	activeView    View  // Track the current active 'main view'
	activeModal   Modal // Track the current active 'modal overlay' if any
	width, height int

	// Models used for various views
	searchModel        *SearchModel
	resultsModel       *ResultsModel
	episodeSelectModel *EpisodeSelectModel
	playbackModel      *PlaybackModel
	helpModel          *HelpModel

	// Services used for fetching and playing
	repo  domain.MediaRepository // may be nil when AniList is unreachable
	watch *service.WatchService

	selected domain.Anime
	playing  bool
}

// NewAppModel creates a new instance of the main application model
func NewAppModel(cfg *config.Config) AppModel {
	// AniList search works without a token; a token adds progress sync
	var repo domain.MediaRepository
	client, err := anilist.NewClient(context.Background(), auth.ResolveToken(cfg))
	if err != nil {
		log.Warn("AniList unavailable, search and progress sync disabled", "error", err)
	} else {
		repo = anilist.NewMediaRepository(client)
		if client.Authenticated() {
			log.Info("Authenticated with AniList", "user", client.User().Name)
		}
	}

	reg, err := registry.Load()
	if err != nil {
		log.Warn("Watch registry unavailable, local progress disabled", "error", err)
	}

	provider := allanime.NewClient(cfg.Stream.TranslationType)

	return AppModel{
		config:             cfg,
		activeView:         ViewSearch,
		activeModal:        ModalNone,
		searchModel:        NewSearchModel(repo),
		resultsModel:       NewResultsModel(),
		episodeSelectModel: NewEpisodeSelectModel(),
		playbackModel:      NewPlaybackModel(),
		helpModel:          NewHelpModel(),
		repo:               repo,
		watch:              service.NewWatchService(cfg, provider, repo, reg),
	}
}

func (m AppModel) Init() tea.Cmd {
	log.Info("Initialising Tsugi TUI")

	cmds := []tea.Cmd{m.searchModel.Init()}
	if m.repo != nil {
		// Push progress recorded while offline, in the background
		cmds = append(cmds, m.syncDirtyCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the models as appropriate
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			log.Info("Quit command received.  Shutting down...")
			return m, tea.Quit
		case "ctrl+h":
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
			} else {
				m.activeModal = ModalHelp
			}
			return m, nil
		case "esc":
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
				return m, nil
			}
			return m.goBack()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Propagate new window size to all views so they can render correctly
		m.searchModel.Resize(msg.Width, msg.Height)
		m.resultsModel.Resize(msg.Width, msg.Height)
		m.episodeSelectModel.Resize(msg.Width, msg.Height)
		m.playbackModel.Resize(msg.Width, msg.Height)
		m.helpModel.Resize(msg.Width, msg.Height)

	case SearchResultsMsg:
		log.Info("Search completed", "query", msg.Query, "results", len(msg.Results))
		m.resultsModel.SetResults(msg.Query, msg.Results)
		m.activeView = ViewResults
		return m, nil

	case ShowSelectedMsg:
		log.Info("Show selected", "id", msg.Anime.ID, "title", msg.Anime.Title.Preferred())
		m.selected = msg.Anime
		m.episodeSelectModel.SetAnime(msg.Anime)
		m.activeView = ViewEpisodeSelect
		if m.repo != nil {
			return m, m.loadProgressCmd(msg.Anime.ID)
		}
		return m, nil

	case PlayEpisodeMsg:
		if m.playing {
			return m, nil
		}
		m.playing = true
		m.activeView = ViewPlayback
		log.Info("Starting playback", "title", m.selected.Title.Preferred(), "episode", msg.Episode)
		return m, tea.Batch(
			m.playbackModel.Start(m.selected.Title.Preferred(), msg.Episode),
			m.streamCmd(m.selected, msg.Episode),
		)

	case PlaybackFinishedMsg:
		m.playing = false
		log.Info("Playback session finished", "episode", msg.Result.Episode, "watched_percent", msg.Result.WatchedPercent)
		model, _ := m.playbackModel.Update(msg)
		m.playbackModel = model.(*PlaybackModel)
		// Refresh progress so the episode list reflects what was just watched
		if m.repo != nil {
			return m, m.loadProgressCmd(m.selected.ID)
		}
		return m, nil

	case PlaybackErrorMsg:
		m.playing = false
		log.Error("Playback failed", "error", msg.Error)
		model, _ := m.playbackModel.Update(msg)
		m.playbackModel = model.(*PlaybackModel)
		return m, nil

	case ProgressLoadedMsg:
		model, _ := m.episodeSelectModel.Update(msg)
		m.episodeSelectModel = model.(*EpisodeSelectModel)
		return m, nil
	}

	// The help modal swallows everything except the global keys handled above
	if m.activeModal != ModalNone {
		return m, nil
	}

	// Delegate message processing to the active view
	switch m.activeView {
	case ViewSearch:
		model, cmd := m.searchModel.Update(msg)
		m.searchModel = model.(*SearchModel)
		return m, cmd
	case ViewResults:
		model, cmd := m.resultsModel.Update(msg)
		m.resultsModel = model.(*ResultsModel)
		return m, cmd
	case ViewEpisodeSelect:
		model, cmd := m.episodeSelectModel.Update(msg)
		m.episodeSelectModel = model.(*EpisodeSelectModel)
		return m, cmd
	case ViewPlayback:
		model, cmd := m.playbackModel.Update(msg)
		m.playbackModel = model.(*PlaybackModel)
		return m, cmd
	}

	return m, nil
}

// goBack steps one view backwards in the search -> results -> episodes ->
// playback flow
func (m AppModel) goBack() (tea.Model, tea.Cmd) {
	switch m.activeView {
	case ViewResults:
		m.searchModel.Reset()
		m.activeView = ViewSearch
	case ViewEpisodeSelect:
		m.activeView = ViewResults
	case ViewPlayback:
		if !m.playing {
			m.activeView = ViewEpisodeSelect
		}
	}
	return m, nil
}

func (m AppModel) View() string {
	// If there is an active modal it takes precedence
	if m.activeModal == ModalHelp {
		return m.helpModel.View(m.activeView)
	}

	switch m.activeView {
	case ViewSearch:
		return m.searchModel.View()
	case ViewResults:
		return m.resultsModel.View()
	case ViewEpisodeSelect:
		return m.episodeSelectModel.View()
	case ViewPlayback:
		return m.playbackModel.View()
	default:
		return "Unknown view\nPress ctrl+c to quit."
	}
}

// loadProgressCmd fetches tracker progress for a show in the background
func (m AppModel) loadProgressCmd(mediaID int) tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		progress, err := repo.GetProgress(context.Background(), mediaID)
		if err != nil {
			log.Warn("Could not load watch progress", "media_id", mediaID, "error", err)
			return ProgressLoadedMsg{MediaID: mediaID, Progress: 0}
		}
		return ProgressLoadedMsg{MediaID: mediaID, Progress: progress}
	}
}

// streamCmd runs a full watch session.  It blocks until the player closes,
// which is fine inside a tea command.
func (m AppModel) streamCmd(anime domain.Anime, episode int) tea.Cmd {
	watch := m.watch
	return func() tea.Msg {
		ctx := context.Background()

		show, err := watch.FindShow(ctx, anime.Title.Preferred())
		if err != nil {
			return PlaybackErrorMsg{Error: err}
		}

		result, err := watch.Stream(ctx, service.StreamParams{
			Show:    *show,
			Title:   anime.Title.Preferred(),
			Episode: episode,
			MediaID: anime.ID,
		})
		if err != nil {
			var spawnErr *player.SpawnError
			if errors.As(err, &spawnErr) {
				return PlaybackErrorMsg{Error: spawnErr}
			}
			return PlaybackErrorMsg{Error: err}
		}

		return PlaybackFinishedMsg{Result: result}
	}
}

// syncDirtyCmd pushes offline progress to the tracker in the background
func (m AppModel) syncDirtyCmd() tea.Cmd {
	watch := m.watch
	return func() tea.Msg {
		if count, err := watch.SyncDirty(context.Background()); err != nil {
			log.Warn("Offline progress sync failed", "error", err)
		} else if count > 0 {
			log.Info("Synced offline progress", "entries", count)
		}
		return nil
	}
}
