package ansi

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/alvarorichard/Goansi/internal/models"
	"github.com/alvarorichard/Goansi/internal/scraper"
	"github.com/alvarorichard/Goansi/internal/util"
)

// htmlSniffLen is how far into the body the anti-bot check looks for an
// HTML document before trusting the response to be an archive.
const htmlSniffLen = 512

// DownloadHandle streams one subtitle archive. It reads the response body
// lazily; Close releases the HTTP response and the client's concurrency
// slot and is safe to call more than once.
type DownloadHandle struct {
	Filename      string
	ContentLength int64

	body    io.Reader
	closer  io.Closer
	release func()
	once    sync.Once
}

func (h *DownloadHandle) Read(p []byte) (int, error) {
	return h.body.Read(p)
}

func (h *DownloadHandle) Close() error {
	var err error
	h.once.Do(func() {
		if h.closer != nil {
			err = h.closer.Close()
		}
		if h.release != nil {
			h.release()
		}
	})
	return err
}

// Download authorizes and opens the archive download for a subtitle id.
//
// The pipeline resolves a session capability first: tokens captured by
// earlier searches on this client are reused, otherwise one id-keyed search
// recaptures the row. The POST carries the row's sh token and the cookie of
// the page that delivered it; an HTML response means the site rejected the
// pair.
func (c *Client) Download(ctx context.Context, id int) (*DownloadHandle, error) {
	sess, ok := c.session(id)
	if !ok {
		var err error
		sess, err = c.searchByID(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	if !sess.Valid() {
		return nil, &SessionDataError{SubtitleID: id}
	}

	release := func() {}
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return nil, errors.Wrap(err, "waiting for a download slot")
		}
		release = func() { c.sem.Release(1) }
	}

	handle, err := c.postDownload(ctx, id, sess)
	if err != nil {
		release()
		return nil, err
	}
	handle.release = release

	// The capability is single-use as far as we are concerned.
	c.mu.Lock()
	delete(c.sessions, id)
	c.mu.Unlock()

	return handle, nil
}

// searchByID recaptures a row's session tokens through the site's id-keyed
// search.
func (c *Client) searchByID(ctx context.Context, id int) (models.SessionData, error) {
	opts := SearchOptions{TitleType: models.TitleTypeID, PageLimit: 1}
	err := c.Search(ctx, strconv.Itoa(id), opts, func(models.Subtitles) bool { return true })
	if err != nil {
		return models.SessionData{}, err
	}
	sess, _ := c.session(id)
	return sess, nil
}

func (c *Client) postDownload(ctx context.Context, id int, sess models.SessionData) (*DownloadHandle, error) {
	downloadURL, err := c.absURL("sciagnij.php")
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("id", strconv.Itoa(id))
	form.Set("sh", sess.SH)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, downloadURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrapf(err, "POST %s", downloadURL)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Cookie", "ansi_sciagnij="+sess.Cookie)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "POST %s", downloadURL)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Errorf("POST %s: unexpected status %s", downloadURL, resp.Status)
	}

	body := bufio.NewReader(resp.Body)
	if isHTMLResponse(resp, body) {
		reason := rejectionReason(body)
		_ = resp.Body.Close()
		return nil, &SecurityError{SubtitleID: id, SH: sess.SH, Cookie: sess.Cookie, Reason: reason}
	}

	return &DownloadHandle{
		Filename:      attachmentFilename(resp.Header.Get("Content-Disposition")),
		ContentLength: resp.ContentLength,
		body:          body,
		closer:        resp.Body,
	}, nil
}

// isHTMLResponse sniffs the anti-bot rejection page: either the declared
// content type or a body starting with an <html tag after whitespace.
func isHTMLResponse(resp *http.Response, body *bufio.Reader) bool {
	if ct := resp.Header.Get("Content-Type"); strings.Contains(strings.ToLower(ct), "text/html") {
		return true
	}
	peeked, _ := body.Peek(htmlSniffLen)
	trimmed := bytes.TrimLeft(peeked, " \t\r\n")
	return len(trimmed) >= 5 && strings.EqualFold(string(trimmed[:5]), "<html")
}

// rejectionReason digs the human-readable message out of the rejection
// page, best effort. The page is tiny and complete, so a DOM parse is fine
// here.
func rejectionReason(body io.Reader) string {
	doc, err := goquery.NewDocumentFromReader(scraper.NewDecodingReader(io.LimitReader(body, 64<<10)))
	if err != nil {
		return ""
	}
	for _, sel := range []string{"p", "title", "body"} {
		if msg := strings.TrimSpace(doc.Find(sel).First().Text()); msg != "" {
			if len(msg) > 200 {
				msg = msg[:200]
			}
			return strings.Join(strings.Fields(msg), " ")
		}
	}
	return ""
}

// attachmentFilename pulls the file name out of a Content-Disposition
// header, accepting both the quoted and the bare form. Empty when absent.
func attachmentFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := params["filename"]; name != "" {
			return util.SanitizeFilename(name)
		}
	}
	// Tolerate the malformed headers the site occasionally emits.
	const key = "filename="
	idx := strings.Index(strings.ToLower(disposition), key)
	if idx < 0 {
		return ""
	}
	name := strings.TrimSpace(disposition[idx+len(key):])
	name = strings.Trim(name, `"`)
	if semi := strings.IndexByte(name, ';'); semi >= 0 {
		name = name[:semi]
	}
	if name == "" {
		return ""
	}
	return util.SanitizeFilename(name)
}
