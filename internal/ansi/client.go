// Package ansi is the client for the animesub.info subtitle catalog. It
// drives the streaming page scrapers over HTTP, ranks records with the
// fitness scorer and runs the session-bound download pipeline.
package ansi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/alvarorichard/Goansi/internal/config"
	"github.com/alvarorichard/Goansi/internal/models"
	"github.com/alvarorichard/Goansi/internal/util"
)

// Client talks to the subtitle site. It is safe for concurrent use by
// independent callers; the session tokens captured while parsing search
// pages are cached on the client so later downloads can reuse them.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	sem        *semaphore.Weighted

	mu       sync.Mutex
	sessions map[int]models.SessionData
}

// Option adjusts a Client at construction time.
type Option func(*Client)

// WithBaseURL points the client at a different origin, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the shared pooled HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithUserAgent sets the User-Agent header for every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithMaxConcurrentDownloads bounds concurrent downloads across goroutines
// sharing this client. The slot is taken before the download POST and given
// back when the handle closes.
func WithMaxConcurrentDownloads(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.sem = semaphore.NewWeighted(n)
		} else {
			c.sem = nil
		}
	}
}

// NewClient builds a client from the given configuration; nil means the
// defaults.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Client{
		httpClient: util.NewClientWithTimeout(cfg.Site.Timeout()),
		baseURL:    cfg.Site.BaseURL,
		userAgent:  cfg.Site.UserAgent,
		sessions:   make(map[int]models.SessionData),
	}
	if cfg.Download.Concurrency > 0 {
		c.sem = semaphore.NewWeighted(int64(cfg.Download.Concurrency))
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// get issues one GET and verifies the status. The caller owns the body.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", rawURL)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}
	return resp, nil
}

// absURL resolves a site-relative reference (as the catalog returns them)
// against the configured origin.
func (c *Client) absURL(ref string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.Wrapf(err, "parsing base URL %q", c.baseURL)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrapf(err, "parsing URL %q", ref)
	}
	return base.ResolveReference(u).String(), nil
}

// pageURL appends the page number to a search reference, keeping whichever
// endpoint and parameters it already carries.
func (c *Client) pageURL(ref string, page int) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrapf(err, "parsing search URL %q", ref)
	}
	q := u.Query()
	q.Set("strona", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return c.absURL(u.String())
}

func (c *Client) rememberSessions(sessions map[int]models.SessionData) {
	if len(sessions) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, s := range sessions {
		c.sessions[id] = s
	}
}

func (c *Client) session(id int) (models.SessionData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	return s, ok
}
