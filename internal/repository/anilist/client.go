package anilist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/machinebox/graphql"

	"github.com/tsugi-app/tsugi/internal/domain"
	"github.com/tsugi-app/tsugi/internal/log"
)

const graphqlURL = "https://graphql.anilist.co"

// Client is the generic AniList client for making queries against the AniList
// GraphQL API.  The auth token is optional: search works anonymously, while
// list queries and mutations require a logged-in viewer.
type Client struct {
	client    *graphql.Client
	authToken string
	user      *domain.User
}

// NewClient creates an AniList client.  When a token is supplied the viewer
// profile is fetched immediately, which doubles as token validation.
func NewClient(ctx context.Context, authToken string) (*Client, error) {
	c := &Client{
		client:    graphql.NewClient(graphqlURL),
		authToken: authToken,
	}

	if authToken != "" {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		user, err := c.fetchViewer(ctx)
		if err != nil {
			return nil, err
		}
		c.user = user
	}

	return c, nil
}

// User returns the authenticated viewer, or nil for anonymous clients.
func (c *Client) User() *domain.User {
	return c.user
}

// Authenticated reports whether the client carries a validated token.
func (c *Client) Authenticated() bool {
	return c.user != nil
}

// Query runs a GraphQL query with the client's auth header attached.
func (c *Client) Query(ctx context.Context, query string, variables map[string]interface{}, result interface{}) error {
	req := graphql.NewRequest(query)

	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	for key, value := range variables {
		req.Var(key, value)
	}

	return c.client.Run(ctx, req, result)
}

// NetworkError marks failures reaching AniList, as opposed to the API
// rejecting the request.
type NetworkError struct {
	Err error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e NetworkError) Unwrap() error {
	return e.Err
}

func (c *Client) fetchViewer(ctx context.Context) (*domain.User, error) {
	query := `
        query {
            Viewer {
                id
                name
            }
        }
    `

	var response struct {
		Viewer struct {
			ID   int
			Name string
		}
	}

	if err := c.Query(ctx, query, nil, &response); err != nil {
		var netErr *url.Error
		if errors.As(err, &netErr) && (netErr.Timeout() ||
			strings.Contains(err.Error(), "connection refused") ||
			strings.Contains(err.Error(), "no such host") ||
			strings.Contains(err.Error(), "i/o timeout")) {
			return nil, NetworkError{Err: err}
		}
		return nil, fmt.Errorf("failed to fetch viewer profile: %w", err)
	}

	if response.Viewer.ID == 0 {
		return nil, fmt.Errorf("invalid or unauthorized token")
	}

	log.Info("Fetched AniList viewer", "id", response.Viewer.ID, "name", response.Viewer.Name)

	return &domain.User{
		ID:   response.Viewer.ID,
		Name: response.Viewer.Name,
	}, nil
}
