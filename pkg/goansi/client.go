// Package goansi is the public client for the animesub.info subtitle
// catalog. It re-exports the supported surface of the internal packages so
// the library can be embedded in other Go projects.
package goansi

import (
	"context"
	"time"

	"github.com/alvarorichard/Goansi/internal/ansi"
	"github.com/alvarorichard/Goansi/internal/config"
	"github.com/alvarorichard/Goansi/internal/models"
)

// Re-exported domain types. They are aliases, so values flow between the
// facade and the internal packages without conversion.
type (
	Subtitles         = models.Subtitles
	SubtitlesRating   = models.SubtitlesRating
	ExtractedSubtitle = models.ExtractedSubtitle
	SortBy            = models.SortBy
	TitleType         = models.TitleType
	SearchOptions     = ansi.SearchOptions
	DownloadHandle    = ansi.DownloadHandle
	SecurityError     = ansi.SecurityError
	SessionDataError  = ansi.SessionDataError
)

const (
	SortByFitness   = models.SortByFitness
	SortByAddedDate = models.SortByAddedDate
	SortByDownloads = models.SortByDownloads
	SortByRating    = models.SortByRating

	TitleTypeOriginal = models.TitleTypeOriginal
	TitleTypeEnglish  = models.TitleTypeEnglish
	TitleTypePolish   = models.TitleTypePolish
	TitleTypeJapanese = models.TitleTypeJapanese
)

// ErrEmptyArchive is returned by DownloadAndExtract for archives with no
// entries.
var ErrEmptyArchive = ansi.ErrEmptyArchive

// Option adjusts a Client at construction time.
type Option func(*settings)

type settings struct {
	baseURL       string
	userAgent     string
	timeout       time.Duration
	maxConcurrent int
}

// WithBaseURL points the client at a different origin.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

// WithUserAgent sets the User-Agent header for every request.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithMaxConcurrentDownloads bounds concurrent downloads on this client.
func WithMaxConcurrentDownloads(n int) Option {
	return func(s *settings) { s.maxConcurrent = n }
}

// Client is the main entry point for catalog searches and downloads. It is
// safe for concurrent use.
type Client struct {
	site *ansi.Client
}

// NewClient builds a client with the default site configuration, adjusted
// by the given options.
func NewClient(opts ...Option) *Client {
	cfg := config.Default()
	s := settings{}
	for _, o := range opts {
		o(&s)
	}
	if s.baseURL != "" {
		cfg.Site.BaseURL = s.baseURL
	}
	if s.userAgent != "" {
		cfg.Site.UserAgent = s.userAgent
	}
	if s.timeout > 0 {
		cfg.Site.TimeoutSeconds = int(s.timeout / time.Second)
	}
	if s.maxConcurrent > 0 {
		cfg.Download.Concurrency = s.maxConcurrent
	}
	return &Client{site: ansi.NewClient(cfg)}
}

// Search collects every record matching the query, honoring the options'
// sort order, title column and page cap.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]Subtitles, error) {
	return c.site.SearchAll(ctx, query, opts)
}

// SearchStream yields records as their rows are parsed; yield returning
// false abandons the stream.
func (c *Client) SearchStream(ctx context.Context, query string, opts SearchOptions, yield func(Subtitles) bool) error {
	return c.site.Search(ctx, query, opts, yield)
}

// FindBest returns the highest-fitness record for a video file name, or
// nil when nothing matched.
func (c *Client) FindBest(ctx context.Context, filename string) (*Subtitles, error) {
	return c.site.FindBest(ctx, filename)
}

// Download opens the archive download for a subtitle id. The caller must
// close the handle.
func (c *Client) Download(ctx context.Context, id int) (*DownloadHandle, error) {
	return c.site.Download(ctx, id)
}

// DownloadAndExtract downloads the archive for id and extracts the member
// that best matches the video file name.
func (c *Client) DownloadAndExtract(ctx context.Context, filename string, id int) (ExtractedSubtitle, error) {
	return c.site.DownloadAndExtract(ctx, filename, id)
}
