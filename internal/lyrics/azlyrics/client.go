// Package azlyrics fetches reference lyrics from AZLyrics using its
// deterministic /lyrics/<artist>/<title>.html page layout.
package azlyrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"lyricsync/internal/lyrics"
)

const (
	providerName       = "azlyrics"
	defaultBaseURL     = "https://www.azlyrics.com"
	defaultUserAgent   = "Mozilla/5.0 (X11; Linux x86_64) lyricsync/dev"
	defaultHTTPTimeout = 15 * time.Second
	usageMarker        = "usage of azlyrics.com content"
)

// Config describes the AZLyrics client configuration.
type Config struct {
	BaseURL           string
	UserAgent         string
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client implements lyrics.Provider against AZLyrics.
type Client struct {
	userAgent string
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("azlyrics: parse base url: %w", err)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		userAgent: userAgent,
		baseURL:   baseURL,
		http:      client,
		limiter:   lyrics.NewLimiter(cfg.RequestsPerSecond),
	}, nil
}

// Name implements lyrics.Provider.
func (c *Client) Name() string { return providerName }

// PageURL returns the lyrics page for song. Artist and title are lowercased
// and reduced to ASCII letters and digits; a leading "the" is dropped from
// the artist.
func (c *Client) PageURL(song lyrics.SongID) (string, error) {
	artist := strings.ToLower(strings.TrimSpace(song.Artist))
	artist = slug(strings.TrimPrefix(artist, "the "))
	title := slug(song.Title)
	if artist == "" || title == "" {
		return "", lyrics.Decline(providerName, "artist and title required, got %q", song.String())
	}
	return c.baseURL.JoinPath("lyrics", artist, title+".html").String(), nil
}

// Lookup implements lyrics.Provider.
func (c *Client) Lookup(ctx context.Context, song lyrics.SongID) (lyrics.Result, error) {
	if c == nil {
		return lyrics.Result{}, errors.New("azlyrics: client is nil")
	}
	pageURL, err := c.PageURL(song)
	if err != nil {
		return lyrics.Result{}, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return lyrics.Result{}, fmt.Errorf("azlyrics: wait for rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return lyrics.Result{}, fmt.Errorf("azlyrics: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return lyrics.Result{}, lyrics.Decline(providerName, "request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return lyrics.Result{}, lyrics.StatusError(providerName, "lyrics page", resp)
	}
	doc, err := html.Parse(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return lyrics.Result{}, lyrics.Decline(providerName, "parse lyrics page: %v", err)
	}
	text := ExtractLyrics(doc)
	if text == "" {
		return lyrics.Result{}, lyrics.Decline(providerName, "no lyrics on %s", pageURL)
	}
	return lyrics.Result{Text: text, Source: providerName}, nil
}

// ExtractLyrics returns the text of the element that holds the usage-notice
// comment, which on AZLyrics pages is the lyrics block.
func ExtractLyrics(doc *html.Node) string {
	comments := lyrics.FindAll(doc, func(n *html.Node) bool {
		return n.Type == html.CommentNode && strings.Contains(strings.ToLower(n.Data), usageMarker)
	})
	for _, comment := range comments {
		if comment.Parent == nil {
			continue
		}
		if text := lyrics.CleanText(lyrics.NodeText(comment.Parent, nil)); text != "" {
			return text
		}
	}
	return ""
}

func slug(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
