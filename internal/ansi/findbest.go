package ansi

import (
	"context"
	"io"
	"net/url"

	"github.com/pkg/errors"

	"github.com/alvarorichard/Goansi/internal/filename"
	"github.com/alvarorichard/Goansi/internal/fitness"
	"github.com/alvarorichard/Goansi/internal/models"
	"github.com/alvarorichard/Goansi/internal/scraper"
	"github.com/alvarorichard/Goansi/internal/text"
	"github.com/alvarorichard/Goansi/internal/util"
)

// FindBest decomposes a video file name, resolves its title through the
// alphabetical catalog and returns the highest-fitness record from the
// resulting search. A nil record with nil error means nothing matched.
func (c *Client) FindBest(ctx context.Context, name string) (*models.Subtitles, error) {
	d, err := filename.Decompose(name)
	if err != nil {
		return nil, err
	}
	return c.FindBestDecomposed(ctx, d)
}

// FindBestDecomposed is FindBest for an already-decomposed name.
func (c *Client) FindBestDecomposed(ctx context.Context, d filename.Decomposed) (*models.Subtitles, error) {
	title := d.First(filename.AttrAnimeTitle)
	normalized := text.Normalize(title)
	if normalized == "" {
		return nil, &filename.DecomposeError{Name: title}
	}

	searchRef, err := c.resolveCatalog(ctx, normalized[:1], title,
		d.First(filename.AttrAnimeSeason), d.First(filename.AttrAnimeYear))
	if err != nil {
		return nil, err
	}
	if searchRef == "" {
		util.Debugf("catalog has no entry for %q", title)
		return nil, nil
	}

	searchRef, err = withFitnessSort(searchRef)
	if err != nil {
		return nil, err
	}

	var best *models.Subtitles
	bestScore := 0
	err = c.searchPages(ctx, searchRef, 0, func(sub models.Subtitles) bool {
		if score := fitness.Score(sub, d); score > bestScore {
			bestScore = score
			copied := sub
			best = &copied
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if best != nil {
		util.Debugf("best record %d with score %d", best.ID, bestScore)
	}
	return best, nil
}

// resolveCatalog streams the catalog page for a letter into the catalog
// parser and returns the matched entry's search URL, or "". The page is
// abandoned as soon as an exact match latches.
func (c *Client) resolveCatalog(ctx context.Context, letter, title, season, year string) (string, error) {
	catalogURL, err := c.absURL("katalog.php?S=" + url.QueryEscape(letter))
	if err != nil {
		return "", err
	}
	timer := util.StartTimer("catalog page " + letter)
	defer timer.StopAndLog()
	resp, err := c.get(ctx, catalogURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	parser := scraper.NewCatalogParser(title, season, year)
	reader := scraper.NewDecodingReader(resp.Body)

	buf := make([]byte, 8<<10)
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			parser.Feed(buf[:n])
			if parser.Result() != "" {
				break
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", errors.Wrapf(readErr, "GET %s", catalogURL)
		}
	}
	return parser.Finish(), nil
}

// withFitnessSort forces fitness ordering on a catalog-provided search URL
// while keeping its endpoint and pTitle untouched.
func withFitnessSort(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("pSortuj", string(models.SortByFitness))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
