// Package genius looks up reference lyrics through the Genius search API and
// scrapes the matched song page.
package genius

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"lyricsync/internal/lyrics"
)

const (
	providerName         = "genius"
	defaultBaseURL       = "https://api.genius.com"
	defaultUserAgent     = "lyricsync/dev"
	defaultHTTPTimeout   = 15 * time.Second
	defaultMinConfidence = 0.35
)

// Config describes the Genius client configuration.
type Config struct {
	Token             string
	BaseURL           string
	UserAgent         string
	MinConfidence     float64
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client implements lyrics.Provider against Genius.
type Client struct {
	token         string
	userAgent     string
	minConfidence float64
	baseURL       *url.URL
	http          *http.Client
	limiter       *rate.Limiter

	mu sync.Mutex

	// pending holds search hits whose song page was rate limited, so a retry
	// of the same query repeats only the page fetch.
	pending map[string][]lyrics.Candidate
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("genius: access token is required")
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("genius: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	minConfidence := cfg.MinConfidence
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}
	return &Client{
		token:         token,
		userAgent:     userAgent,
		minConfidence: minConfidence,
		baseURL:       baseURL,
		http:          client,
		limiter:       lyrics.NewLimiter(cfg.RequestsPerSecond),
		pending:       make(map[string][]lyrics.Candidate),
	}, nil
}

// Name implements lyrics.Provider.
func (c *Client) Name() string { return providerName }

// Lookup searches Genius for song, picks the best-scoring hit, and returns
// the cleaned lyrics from its page.
func (c *Client) Lookup(ctx context.Context, song lyrics.SongID) (lyrics.Result, error) {
	if c == nil {
		return lyrics.Result{}, errors.New("genius: client is nil")
	}
	query := song.Query()
	candidates, ok := c.takePending(query)
	if !ok {
		var err error
		candidates, err = c.Search(ctx, query)
		if err != nil {
			return lyrics.Result{}, err
		}
	}
	if len(candidates) == 0 {
		return lyrics.Result{}, lyrics.Decline(providerName, "no search results for %q", query)
	}
	best, score := lyrics.BestCandidate(song, candidates)
	if score < c.minConfidence {
		return lyrics.Result{}, lyrics.Decline(providerName, "best match %q scored %.2f below %.2f", candidates[best].Title, score, c.minConfidence)
	}
	text, err := c.FetchLyrics(ctx, candidates[best].URL)
	if err != nil {
		if errors.Is(err, lyrics.ErrRateLimited) {
			c.keepPending(query, candidates)
		}
		return lyrics.Result{}, err
	}
	text = lyrics.StripTitleHeader(text, candidates[best].Title)
	if text == "" {
		return lyrics.Result{}, lyrics.Decline(providerName, "song page %s has no lyrics", candidates[best].URL)
	}
	return lyrics.Result{Text: text, Source: providerName}, nil
}

// Search queries the Genius search endpoint and returns song hits in API order.
func (c *Client) Search(ctx context.Context, query string) ([]lyrics.Candidate, error) {
	endpoint := c.baseURL.JoinPath("search")
	endpoint.RawQuery = url.Values{"q": {query}}.Encode()

	resp, err := c.get(ctx, endpoint.String(), "application/json", true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, lyrics.StatusError(providerName, "search", resp)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, lyrics.Decline(providerName, "decode search response: %v", err)
	}

	candidates := make([]lyrics.Candidate, 0, len(payload.Response.Hits))
	for _, hit := range payload.Response.Hits {
		if hit.Type != "" && hit.Type != "song" {
			continue
		}
		if hit.Result.URL == "" {
			continue
		}
		candidates = append(candidates, lyrics.Candidate{
			Title:  hit.Result.Title,
			Artist: hit.Result.PrimaryArtist.Name,
			URL:    hit.Result.URL,
		})
	}
	return candidates, nil
}

// FetchLyrics downloads a Genius song page and extracts its lyric containers.
func (c *Client) FetchLyrics(ctx context.Context, pageURL string) (string, error) {
	resp, err := c.get(ctx, pageURL, "text/html", false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", lyrics.StatusError(providerName, "song page", resp)
	}
	doc, err := html.Parse(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", lyrics.Decline(providerName, "parse song page: %v", err)
	}
	return ExtractLyrics(doc), nil
}

// ExtractLyrics collects text from every data-lyrics-container element,
// skipping nodes Genius marks as excluded from selection.
func ExtractLyrics(doc *html.Node) string {
	containers := lyrics.FindAll(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		value, ok := lyrics.Attr(n, "data-lyrics-container")
		return ok && value == "true"
	})
	skip := func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		value, ok := lyrics.Attr(n, "data-exclude-from-selection")
		return ok && value == "true"
	}
	parts := make([]string, 0, len(containers))
	for _, container := range containers {
		parts = append(parts, lyrics.NodeText(container, skip))
	}
	return lyrics.CleanText(strings.Join(parts, "\n"))
}

func (c *Client) takePending(query string) ([]lyrics.Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	candidates, ok := c.pending[query]
	delete(c.pending, query)
	return candidates, ok
}

func (c *Client) keepPending(query string, candidates []lyrics.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[query] = candidates
}

func (c *Client) get(ctx context.Context, target, accept string, authorize bool) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("genius: wait for rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("genius: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	if authorize {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, lyrics.Decline(providerName, "request failed: %v", err)
	}
	return resp, nil
}

type searchResponse struct {
	Response struct {
		Hits []struct {
			Type   string `json:"type"`
			Result struct {
				Title         string `json:"title"`
				URL           string `json:"url"`
				PrimaryArtist struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}
