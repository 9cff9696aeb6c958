package ansi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/alvarorichard/Goansi/internal/models"
	"github.com/alvarorichard/Goansi/internal/scraper"
	"github.com/alvarorichard/Goansi/internal/util"
)

// SearchOptions tune one search stream. Zero values mean the site defaults:
// fitness ordering, original-title matching, no page cap.
type SearchOptions struct {
	SortBy    models.SortBy
	TitleType models.TitleType
	PageLimit int
}

// Search streams every record matching the query, in (page, row) order.
// Records are yielded as soon as their row is parsed; yield returning false
// abandons the stream without error. A transport failure on a later page is
// returned after the earlier pages' records were already yielded.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions, yield func(models.Subtitles) bool) error {
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = models.SortByFitness
	}
	titleType := opts.TitleType
	if titleType == "" {
		titleType = models.TitleTypeOriginal
	}
	q := url.Values{}
	q.Set("szukane", query)
	q.Set("pTitle", string(titleType))
	q.Set("pSortuj", string(sortBy))
	return c.searchPages(ctx, "szukaj.php?"+q.Encode(), opts.PageLimit, yield)
}

// SearchAll collects a search stream into a slice.
func (c *Client) SearchAll(ctx context.Context, query string, opts SearchOptions) ([]models.Subtitles, error) {
	var results []models.Subtitles
	err := c.Search(ctx, query, opts, func(s models.Subtitles) bool {
		results = append(results, s)
		return true
	})
	return results, err
}

// searchPages walks a paginated search reference, feeding each page through
// the results parser and yielding records as they appear.
func (c *Client) searchPages(ctx context.Context, ref string, pageLimit int, yield func(models.Subtitles) bool) error {
	for page := 1; ; page++ {
		total, stopped, err := c.fetchSearchPage(ctx, ref, page, yield)
		if err != nil {
			return err
		}
		if stopped || total <= page {
			return nil
		}
		if pageLimit > 0 && page >= pageLimit {
			return nil
		}
	}
}

// fetchSearchPage fetches and parses one page. It reports the pager's page
// total and whether the yield callback abandoned the stream. Session tokens
// for every parsed row are remembered on the client together with the
// page's cookie.
func (c *Client) fetchSearchPage(ctx context.Context, ref string, page int, yield func(models.Subtitles) bool) (total int, stopped bool, err error) {
	pageURL, err := c.pageURL(ref, page)
	if err != nil {
		return 0, false, err
	}
	util.Debugf("fetching search page %d: %s", page, pageURL)
	timer := util.StartTimer(fmt.Sprintf("search page %d", page))
	defer timer.StopAndLog()

	resp, err := c.get(ctx, pageURL)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	parser := scraper.NewResultsParser(ansiCookie(resp))
	reader := scraper.NewDecodingReader(resp.Body)

	buf := make([]byte, 8<<10)
	emitted := 0
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			parser.Feed(buf[:n])
			for _, sub := range parser.Subtitles()[emitted:] {
				emitted++
				if !yield(sub) {
					stopped = true
					break
				}
			}
			if stopped {
				break
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return 0, false, errors.Wrapf(readErr, "GET %s", pageURL)
		}
	}

	parser.Finish()
	c.rememberSessions(parser.Sessions())
	return parser.PageCount(), stopped, nil
}

// ansiCookie pulls the per-page session cookie out of the response.
func ansiCookie(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "ansi_sciagnij" {
			return cookie.Value
		}
	}
	return ""
}
