// Package service wires the provider, player, registry and tracker together
// into the watch workflow the UI drives.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"github.com/tsugi-app/tsugi/internal/config"
	"github.com/tsugi-app/tsugi/internal/domain"
	"github.com/tsugi-app/tsugi/internal/log"
	"github.com/tsugi-app/tsugi/internal/player"
	"github.com/tsugi-app/tsugi/internal/provider/allanime"
	"github.com/tsugi-app/tsugi/internal/registry"
)

// ErrNoPlayableSource means every candidate source for an episode failed to
// yield a usable stream link.
var ErrNoPlayableSource = errors.New("no playable source found")

// ErrShowNotFound means the provider search returned nothing usable for a
// title.
var ErrShowNotFound = errors.New("show not found on provider")

// WatchService runs complete watch sessions: stream resolution, playback with
// in-player episode navigation, and progress recording afterwards.
type WatchService struct {
	cfg        *config.Config
	provider   *allanime.Client
	repo       domain.MediaRepository // nil when not authenticated
	registry   *registry.Registry     // nil disables local tracking
	controller *player.Controller
}

// NewWatchService creates a watch service.  repo and reg may be nil; the
// corresponding progress recording is skipped.
func NewWatchService(cfg *config.Config, provider *allanime.Client, repo domain.MediaRepository, reg *registry.Registry) *WatchService {
	return &WatchService{
		cfg:        cfg,
		provider:   provider,
		repo:       repo,
		registry:   reg,
		controller: player.NewController(cfg),
	}
}

// FindShow locates the provider listing that best matches a title.  Provider
// names rarely match tracker titles exactly, so the results are fuzzy-ranked
// and the closest one wins.
func (s *WatchService) FindShow(ctx context.Context, title string) (*allanime.Show, error) {
	shows, err := s.provider.SearchShows(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(shows) == 0 {
		return nil, ErrShowNotFound
	}

	names := lo.Map(shows, func(show allanime.Show, _ int) string {
		return show.Name
	})

	best := 0
	bestDistance := -1
	for _, rank := range fuzzy.RankFindNormalizedFold(title, names) {
		if bestDistance == -1 || rank.Distance < bestDistance {
			bestDistance = rank.Distance
			best = rank.OriginalIndex
		}
	}

	log.Debug("Matched provider show", "query", title, "matched", shows[best].Name)
	return &shows[best], nil
}

// StreamParams describes one watch session.
type StreamParams struct {
	Show    allanime.Show
	Title   string // display title; Show.Name is used when empty
	Episode int
	MediaID int // AniList media ID, zero when the show is not tracked
}

// StreamResult reports what happened during a watch session.
type StreamResult struct {
	// Episode is the episode that was loaded when the player closed.  It can
	// differ from the requested one when the viewer navigated in-player.
	Episode int
	// WatchedPercent is the furthest playback position reached in that
	// episode.
	WatchedPercent float64
	// Completed reports whether the episode counts as watched.
	Completed bool
	// Synced reports whether progress reached the remote tracker.
	Synced bool
}

// Stream plays an episode and everything the viewer navigates to from it,
// then records progress for the episode playback ended on.
func (s *WatchService) Stream(ctx context.Context, params StreamParams) (*StreamResult, error) {
	title := params.Title
	if title == "" {
		title = params.Show.Name
	}

	resolve := func(ctx context.Context, episode int) (*player.PlayOptions, error) {
		return s.resolveEpisode(ctx, params.Show, title, episode)
	}

	opts, err := resolve(ctx, params.Episode)
	if err != nil {
		return nil, err
	}

	nav := newEpisodeNavigator(resolve, params.Episode, params.Show.EpisodeCount(s.cfg.Stream.TranslationType))

	percent, err := s.controller.Play(ctx, *opts, nav)
	if err != nil {
		return nil, err
	}

	result := &StreamResult{
		Episode:        nav.Episode(),
		WatchedPercent: percent,
		Completed:      percent >= float64(s.cfg.Stream.EpisodeCompleteAt),
	}

	if result.Completed {
		result.Synced = s.recordProgress(ctx, params, title, result.Episode)
	}

	return result, nil
}

// resolveEpisode turns an episode number into playable options, trying
// candidate sources in priority order until one extracts cleanly.
func (s *WatchService) resolveEpisode(ctx context.Context, show allanime.Show, title string, episode int) (*player.PlayOptions, error) {
	sources, err := s.provider.EpisodeSources(ctx, show.ID, strconv.Itoa(episode))
	if err != nil {
		return nil, err
	}

	candidates := orderCandidates(sources, s.cfg.Stream.SourcePriority)
	if len(candidates) == 0 {
		return nil, ErrNoPlayableSource
	}

	for _, src := range candidates {
		opts, err := s.provider.Extract(ctx, src.URL, s.cfg.Stream.Quality)
		if err != nil {
			log.Warn("Source extraction failed, trying next candidate", "source", src.Name, "episode", episode, "error", err)
			continue
		}

		opts.Title = fmt.Sprintf("%s - Episode %d", title, episode)
		log.Info("Resolved episode stream", "source", src.Name, "episode", episode)
		return opts, nil
	}

	return nil, fmt.Errorf("episode %d: %w", episode, ErrNoPlayableSource)
}

// recordProgress writes the watched episode to the local registry and, when
// authenticated, to AniList.  Recording failures are logged rather than
// surfaced: the viewer already watched the episode, losing the bookkeeping
// must not look like a playback failure.  Returns whether the remote tracker
// was updated.
func (s *WatchService) recordProgress(ctx context.Context, params StreamParams, title string, episode int) bool {
	synced := false

	if s.repo != nil && params.MediaID != 0 {
		current, err := s.repo.GetProgress(ctx, params.MediaID)
		switch {
		case err != nil:
			log.Warn("Could not read tracker progress", "media_id", params.MediaID, "error", err)
		case episode <= current:
			// Rewatching an earlier episode never winds progress backwards
			log.Debug("Tracker progress already at or past episode", "episode", episode, "progress", current)
			synced = true
		default:
			if err := s.repo.SaveProgress(ctx, params.MediaID, episode, domain.StatusCurrent); err != nil {
				log.Warn("Failed to update tracker progress", "media_id", params.MediaID, "error", err)
			} else {
				log.Info("Updated tracker progress", "media_id", params.MediaID, "episode", episode)
				synced = true
			}
		}
	}

	if s.registry != nil {
		entry := registry.Entry{
			ID:       params.MediaID,
			Title:    title,
			Status:   string(domain.StatusCurrent),
			Progress: episode,
			Dirty:    params.MediaID != 0 && !synced,
		}
		if existing, ok := s.registry.Get(params.MediaID); ok && existing.Progress > episode {
			entry.Progress = existing.Progress
		}
		if err := s.registry.Put(entry); err != nil {
			log.Warn("Failed to write watch registry", "error", err)
		}
	}

	return synced
}

// SyncDirty pushes locally recorded progress that never reached the tracker,
// typically after the viewer authenticates or comes back online.  It returns
// the number of entries synced.
func (s *WatchService) SyncDirty(ctx context.Context) (int, error) {
	if s.repo == nil || s.registry == nil {
		return 0, nil
	}

	synced := 0
	for _, entry := range s.registry.DirtyEntries() {
		if entry.ID == 0 {
			continue
		}

		current, err := s.repo.GetProgress(ctx, entry.ID)
		if err != nil {
			return synced, err
		}

		if entry.Progress > current {
			if err := s.repo.SaveProgress(ctx, entry.ID, entry.Progress, domain.MediaStatus(entry.Status)); err != nil {
				return synced, err
			}
		}

		if err := s.registry.MarkSynced(entry.ID); err != nil {
			return synced, err
		}
		synced++
	}

	return synced, nil
}
