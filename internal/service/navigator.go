package service

import (
	"context"
	"errors"
	"sync"

	"github.com/tsugi-app/tsugi/internal/log"
	"github.com/tsugi-app/tsugi/internal/player"
	"github.com/tsugi-app/tsugi/internal/provider/allanime"
)

// episodeResolver resolves a playable stream for one episode number.
type episodeResolver func(ctx context.Context, episode int) (*player.PlayOptions, error)

// episodeNavigator holds the episode cursor for one playback session and
// resolves in-player navigation requests against it.  The cursor only moves
// when the target episode actually resolved, so a failed fetch never strands
// the cursor on an episode that is not playing.
type episodeNavigator struct {
	resolve      episodeResolver
	episodeCount int // zero when unknown

	mu      sync.Mutex
	episode int
}

func newEpisodeNavigator(resolve episodeResolver, startEpisode, episodeCount int) *episodeNavigator {
	return &episodeNavigator{
		resolve:      resolve,
		episodeCount: episodeCount,
		episode:      startEpisode,
	}
}

// Resolve maps a navigation action to the adjacent episode's stream.  Both
// boundaries report "no episode" rather than an error: stepping before the
// first or past the last episode is an everyday occurrence, not a failure.
func (n *episodeNavigator) Resolve(ctx context.Context, action player.NavigationAction) (*player.PlayOptions, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	target := n.episode + 1
	if action == player.ActionPrevious {
		target = n.episode - 1
	}

	if target < 1 {
		return nil, nil
	}
	if n.episodeCount > 0 && target > n.episodeCount {
		return nil, nil
	}

	opts, err := n.resolve(ctx, target)
	if err != nil {
		if errors.Is(err, allanime.ErrEpisodeNotFound) {
			// The provider listing can lag behind reality near the end of
			// an airing season
			log.Debug("Adjacent episode not available yet", "episode", target)
			return nil, nil
		}
		return nil, err
	}

	n.episode = target
	return opts, nil
}

// Episode returns the episode the cursor currently points at.
func (n *episodeNavigator) Episode() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.episode
}
