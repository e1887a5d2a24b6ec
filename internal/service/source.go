package service

import (
	"github.com/samber/lo"

	"github.com/tsugi-app/tsugi/internal/provider/allanime"
)

// SelectSource picks the highest-priority source available for an episode.
// Priority names match exactly, including case, because providers publish
// near-duplicate names ("Luf-mp4" and "Luf-Mp4") that behave differently.
// The second return is false when none of the preferred names is available.
func SelectSource(sources []allanime.Source, priority []string) (allanime.Source, bool) {
	for _, name := range priority {
		for _, src := range sources {
			if src.Name == name {
				return src, true
			}
		}
	}
	return allanime.Source{}, false
}

// orderCandidates arranges sources into extraction order: preferred names
// first, in priority order, then everything else in the order the provider
// returned it.  Playback should not fail outright just because a provider
// added a source name nobody has heard of yet.
func orderCandidates(sources []allanime.Source, priority []string) []allanime.Source {
	ordered := make([]allanime.Source, 0, len(sources))
	remaining := sources

	for {
		src, ok := SelectSource(remaining, priority)
		if !ok {
			break
		}
		ordered = append(ordered, src)
		remaining = lo.Filter(remaining, func(s allanime.Source, _ int) bool {
			return s.Name != src.Name
		})
	}

	return append(ordered, remaining...)
}
