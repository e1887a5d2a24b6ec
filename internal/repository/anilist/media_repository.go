package anilist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/tsugi-app/tsugi/internal/domain"
	"github.com/tsugi-app/tsugi/internal/log"
)

// MediaRepository implements domain.MediaRepository against the AniList API.
type MediaRepository struct {
	client *Client
}

// NewMediaRepository creates a repository backed by an AniList client.
func NewMediaRepository(client *Client) *MediaRepository {
	return &MediaRepository{client: client}
}

const searchQuery = `
    query ($search: String, $perPage: Int, $sort: [MediaSort]) {
        Page(perPage: $perPage, page: 1) {
            media(search: $search, sort: $sort, type: ANIME) {
                id
                title {
                    romaji
                    english
                    native
                }
                episodes
                status
                format
                seasonYear
                averageScore
                description
                genres
                synonyms
            }
        }
    }
`

// mediaEntry mirrors the wire shape of one media node in the search response
type mediaEntry struct {
	ID    int `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	Episodes     int      `json:"episodes"`
	Status       string   `json:"status"`
	Format       string   `json:"format"`
	SeasonYear   int      `json:"seasonYear"`
	AverageScore int      `json:"averageScore"`
	Description  string   `json:"description"`
	Genres       []string `json:"genres"`
	Synonyms     []string `json:"synonyms"`
}

// SearchAnime searches AniList for anime matching the query.  An empty query
// with a sort of TRENDING_DESC or POPULARITY_DESC returns the corresponding
// chart instead.
func (r *MediaRepository) SearchAnime(ctx context.Context, query string, sort string) ([]domain.Anime, error) {
	variables := map[string]interface{}{
		"perPage": 20,
		"sort":    []string{sort},
	}
	if strings.TrimSpace(query) != "" {
		variables["search"] = query
	}

	var response struct {
		Page struct {
			Media []mediaEntry `json:"media"`
		} `json:"Page"`
	}

	if err := r.client.Query(ctx, searchQuery, variables, &response); err != nil {
		return nil, fmt.Errorf("error searching AniList: %w", err)
	}

	log.Debug("AniList search complete", "query", query, "results", len(response.Page.Media))

	return lo.Map(response.Page.Media, func(m mediaEntry, _ int) domain.Anime {
		return domain.Anime{
			ID: m.ID,
			Title: domain.AnimeTitle{
				Romaji:  m.Title.Romaji,
				English: m.Title.English,
				Native:  m.Title.Native,
			},
			Episodes:     m.Episodes,
			Status:       m.Status,
			Format:       m.Format,
			SeasonYear:   m.SeasonYear,
			AverageScore: m.AverageScore,
			Description:  m.Description,
			Genres:       m.Genres,
			Synonyms:     m.Synonyms,
		}
	}), nil
}

// GetProgress returns the viewer's episode progress for a media entry.  An
// entry missing from every list is reported as progress 0, which AniList
// signals with a "not found" error payload.
func (r *MediaRepository) GetProgress(ctx context.Context, mediaID int) (int, error) {
	if !r.client.Authenticated() {
		return 0, errors.New("not authenticated with AniList")
	}

	query := `
        query ($mediaId: Int, $userId: Int) {
            MediaList(mediaId: $mediaId, userId: $userId) {
                progress
            }
        }
    `

	var response struct {
		MediaList struct {
			Progress int `json:"progress"`
		} `json:"MediaList"`
	}

	err := r.client.Query(ctx, query, map[string]interface{}{
		"mediaId": mediaID,
		"userId":  r.client.User().ID,
	}, &response)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return 0, nil
		}
		return 0, fmt.Errorf("error fetching media list entry: %w", err)
	}

	return response.MediaList.Progress, nil
}

// SaveProgress updates the viewer's episode progress and list status for a
// media entry.
func (r *MediaRepository) SaveProgress(ctx context.Context, mediaID, progress int, status domain.MediaStatus) error {
	if !r.client.Authenticated() {
		return errors.New("not authenticated with AniList")
	}

	mutation := `
        mutation ($mediaId: Int, $progress: Int, $status: MediaListStatus) {
            SaveMediaListEntry(mediaId: $mediaId, progress: $progress, status: $status) {
                id
                progress
                status
            }
        }
    `

	var response struct {
		SaveMediaListEntry struct {
			ID       int    `json:"id"`
			Progress int    `json:"progress"`
			Status   string `json:"status"`
		} `json:"SaveMediaListEntry"`
	}

	err := r.client.Query(ctx, mutation, map[string]interface{}{
		"mediaId":  mediaID,
		"progress": progress,
		"status":   string(status),
	}, &response)
	if err != nil {
		return fmt.Errorf("error saving media list entry: %w", err)
	}

	log.Info("Updated AniList progress",
		"media_id", mediaID,
		"progress", response.SaveMediaListEntry.Progress,
		"status", response.SaveMediaListEntry.Status)

	return nil
}
