package allanime

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tsugi-app/tsugi/internal/log"
	"github.com/tsugi-app/tsugi/internal/player"
)

const (
	streamHost    = "https://allanime.day"
	streamReferer = "https://allanime.day/"

	// Source references starting with "--" are hex strings XOR'd with this key
	obfuscationKey = 0x38
)

// streamLink is one playable link in the clock.json answer
type streamLink struct {
	Link       string `json:"link"`
	Resolution string `json:"resolutionStr"`
}

// Extract resolves an opaque source reference into playable options.  The
// reference may be an obfuscated payload or a plain path; either way it points
// at a "clock" endpoint whose .json variant lists the actual stream links.
func (c *Client) Extract(ctx context.Context, sourceURL string, quality string) (*player.PlayOptions, error) {
	clean := sourceURL
	if stripped, ok := strings.CutPrefix(sourceURL, "--"); ok {
		decoded, err := deobfuscateSourceURL(stripped)
		if err != nil {
			return nil, fmt.Errorf("failed to decode source reference: %w", err)
		}
		clean = decoded
	}

	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}

	clockURL := streamHost + strings.Replace(clean, "clock", "clock.json", 1)
	log.Debug("Resolving stream links", "url", clockURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, clockURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", streamReferer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stream links: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stream link endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		Links []streamLink `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse stream links: %w", err)
	}

	link, err := pickLink(payload.Links, quality)
	if err != nil {
		return nil, err
	}

	return &player.PlayOptions{
		URL: link.Link,
		Headers: []player.Header{
			{Key: "User-Agent", Value: userAgent},
			{Key: "Referer", Value: streamReferer},
		},
	}, nil
}

// deobfuscateSourceURL decodes a hex payload by XOR-ing every byte with the
// fixed key.
func deobfuscateSourceURL(hexPayload string) (string, error) {
	raw, err := hex.DecodeString(hexPayload)
	if err != nil {
		return "", fmt.Errorf("invalid hex payload: %w", err)
	}

	decoded := make([]byte, len(raw))
	for i, b := range raw {
		decoded[i] = b ^ obfuscationKey
	}

	return string(decoded), nil
}

// pickLink selects the link matching the preferred quality, falling back to
// the last entry which the API orders lowest-to-highest.
func pickLink(links []streamLink, quality string) (streamLink, error) {
	if len(links) == 0 {
		return streamLink{}, fmt.Errorf("no stream links found")
	}

	for _, link := range links {
		if link.Resolution == quality || link.Resolution == quality+"p" {
			return link, nil
		}
	}

	return links[len(links)-1], nil
}
