// Package allanime is the streaming-source resolver.  It talks to the
// AllAnime GraphQL API to find shows and per-episode source candidates, and
// knows how to turn an obfuscated source reference into a playable stream.
package allanime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"

	"github.com/tsugi-app/tsugi/internal/log"
)

const (
	graphqlURL = "https://api.allanime.day/api"
	refererURL = "https://allanime.to/"
	userAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrEpisodeNotFound is returned when the API reports no episode at the
// requested number.  Callers distinguish it from transport failures.
var ErrEpisodeNotFound = errors.New("episode not found")

// Client is responsible for communicating with the AllAnime API.
type Client struct {
	client          *graphql.Client
	httpClient      *http.Client
	translationType string
}

// NewClient creates a new AllAnime client for the given translation type
// ("sub" or "dub").
func NewClient(translationType string) *Client {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Client{
		client:          graphql.NewClient(graphqlURL, graphql.WithHTTPClient(httpClient)),
		httpClient:      httpClient,
		translationType: translationType,
	}
}

// Show represents one search hit on AllAnime.
type Show struct {
	ID                string `json:"_id"`
	Name              string `json:"name"`
	AvailableEpisodes struct {
		Sub int `json:"sub"`
		Dub int `json:"dub"`
		Raw int `json:"raw"`
	} `json:"availableEpisodes"`
}

// EpisodeCount returns the number of episodes available for the client's
// translation type.
func (s Show) EpisodeCount(translationType string) int {
	if translationType == "dub" {
		return s.AvailableEpisodes.Dub
	}
	return s.AvailableEpisodes.Sub
}

// Source is one candidate way to play an episode: a name used for priority
// matching and an opaque reference that Extract can resolve.
type Source struct {
	Name string `json:"sourceName"`
	URL  string `json:"sourceUrl"`
}

// SearchShows searches AllAnime for shows matching the query.
func (c *Client) SearchShows(ctx context.Context, query string) ([]Show, error) {
	req := graphql.NewRequest(`
		query ($search: SearchInput, $limit: Int, $page: Int, $translationType: VaildTranslationTypeEnumType, $countryOrigin: VaildCountryOriginEnumType) {
			shows(
				search: $search
				limit: $limit
				page: $page
				translationType: $translationType
				countryOrigin: $countryOrigin
			) {
				edges {
					_id
					name
					availableEpisodes
				}
			}
		}
	`)

	req.Var("search", map[string]interface{}{
		"allowAdult":   false,
		"allowUnknown": false,
		"query":        query,
	})
	req.Var("limit", 40)
	req.Var("page", 1)
	req.Var("translationType", c.translationType)
	req.Var("countryOrigin", "ALL")

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", refererURL)

	var response struct {
		Shows struct {
			Edges []Show `json:"edges"`
		} `json:"shows"`
	}

	if err := c.client.Run(ctx, req, &response); err != nil {
		return nil, fmt.Errorf("error searching shows: %w", err)
	}

	log.Debug("AllAnime search complete", "query", query, "results", len(response.Shows.Edges))

	return response.Shows.Edges, nil
}

// EpisodeSources fetches the candidate sources for a specific episode.
// Returns ErrEpisodeNotFound when the API has no such episode.
func (c *Client) EpisodeSources(ctx context.Context, showID, episode string) ([]Source, error) {
	req := graphql.NewRequest(`
		query ($showId: String!, $translationType: VaildTranslationTypeEnumType!, $episodeString: String!) {
			episode(
				showId: $showId
				translationType: $translationType
				episodeString: $episodeString
			) {
				episodeString
				sourceUrls
			}
		}
	`)

	req.Var("showId", showID)
	req.Var("translationType", c.translationType)
	req.Var("episodeString", episode)

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", refererURL)

	var response struct {
		Episode *struct {
			EpisodeString string   `json:"episodeString"`
			SourceUrls    []Source `json:"sourceUrls"`
		} `json:"episode"`
	}

	if err := c.client.Run(ctx, req, &response); err != nil {
		// The API answers a missing episode with a null node, which machinebox
		// surfaces as a graphql error in some deployments.  Either way this is
		// "no such episode", not a transport failure.
		if isNullEpisodeError(err) {
			return nil, ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("error fetching episode sources: %w", err)
	}

	if response.Episode == nil {
		log.Debug("AllAnime returned no episode node", "show_id", showID, "episode", episode)
		return nil, ErrEpisodeNotFound
	}

	log.Debug("Episode sources retrieved", "show_id", showID, "episode", episode, "count", len(response.Episode.SourceUrls))
	return response.Episode.SourceUrls, nil
}

// isNullEpisodeError detects the API's "episode does not exist" answer, which
// arrives as a null episode node or a not-found error message.
func isNullEpisodeError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "null")
}
