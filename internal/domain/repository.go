package domain

import "context"

// MediaStatus represents which AniList list an anime is in
type MediaStatus string

const (
	StatusCurrent   MediaStatus = "CURRENT"
	StatusPlanning  MediaStatus = "PLANNING"
	StatusCompleted MediaStatus = "COMPLETED"
	StatusDropped   MediaStatus = "DROPPED"
	StatusPaused    MediaStatus = "PAUSED"
	StatusRepeating MediaStatus = "REPEATING"
)

// MediaSort values accepted by the AniList search query
const (
	SortPopularity = "POPULARITY_DESC"
	SortTrending   = "TRENDING_DESC"
)

// MediaRepository defines the interface for anime metadata access
type MediaRepository interface {
	// SearchAnime searches AniList for anime matching the query
	SearchAnime(ctx context.Context, query string, sort string) ([]Anime, error)

	// GetProgress returns the viewer's episode progress for a media entry,
	// or 0 when the entry is not on any of their lists
	GetProgress(ctx context.Context, mediaID int) (int, error)

	// SaveProgress updates the viewer's episode progress and list status
	SaveProgress(ctx context.Context, mediaID, progress int, status MediaStatus) error
}
