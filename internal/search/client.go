// Package search queries the YouTube Data API v3 for video candidates.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// requestTimeout bounds every API call; a slow search service must not
// hold an interaction open indefinitely.
const requestTimeout = 15 * time.Second

// Candidate is a single search result the user may pick for download.
// It lives only for one interaction turn — the video ID travels inside
// the selection callback token, so nothing is persisted.
type Candidate struct {
	VideoID     string
	Title       string
	SourceLabel string // channel title on YouTube
}

// UnavailableError reports a failed call to the search service. Status
// and Body are diagnostics for the log; user-facing text must stay
// generic.
type UnavailableError struct {
	Status int
	Body   string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("youtube search unavailable: %v", e.Err)
	}
	return fmt.Sprintf("youtube search unavailable: status %d: %s", e.Status, e.Body)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err is a search-service failure (as
// opposed to an empty result set, which is success).
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// Client talks to the YouTube Data API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New creates a search client. baseURL overrides the Google endpoint
// when non-empty (used by tests).
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search runs one search call and maps at most limit video results,
// preserving the API's relevance order. An empty slice is a successful
// "no results" outcome, not an error.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	params := url.Values{
		"part":       {"snippet"},
		"q":          {query},
		"type":       {"video"},
		"maxResults": {fmt.Sprintf("%d", limit)},
		"key":        {c.apiKey},
	}

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		out = append(out, Candidate{
			VideoID:     item.ID.VideoID,
			Title:       item.Snippet.Title,
			SourceLabel: item.Snippet.ChannelTitle,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type videosResponse struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// VideoTitle fetches the authoritative title for a video ID from the
// detail endpoint. Callers treat any failure as "use the ID instead" —
// this lookup is best-effort enrichment.
func (c *Client) VideoTitle(ctx context.Context, videoID string) (string, error) {
	params := url.Values{
		"part": {"snippet"},
		"id":   {videoID},
		"key":  {c.apiKey},
	}

	var resp videosResponse
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("video %s not found", videoID)
	}
	return resp.Items[0].Snippet.Title, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UnavailableError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &UnavailableError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
