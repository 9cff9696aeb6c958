package scraper

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/alvarorichard/Goansi/internal/models"
)

// Row layout of a search-results page: every record renders as one
// <table class="KNap"> region. Inside it the KNapT cell carries the three
// titles separated by " / ", labelled cells carry the episode, format,
// size, date, author, adder and the two counters, KOpis cells carry the
// description, three rating bars carry their percent in the img title, and
// the download form holds hidden id and sh inputs.
const (
	rowClass         = "KNap"
	titleCellClass   = "KNapT"
	descCellClass    = "KOpis"
	movieMarker      = "Film"
	labelEpisode     = "Odcinek"
	labelFormat      = "Format"
	labelSize        = "Rozmiar"
	labelDate        = "Data"
	labelAuthor      = "Autor"
	labelAddedBy     = "Dodał"
	labelComments    = "Komentarze"
	labelDownloads   = "Pobrań"
	pageQueryKey     = "strona"
	sessionCookieKey = "ansi_sciagnij"
)

// The site renders dates in two forms depending on the page vintage.
var dateLayouts = []string{"2006-01-02", "02.01.2006"}

// ResultsParser stream-parses one search-results page into subtitle
// records. Records grow monotonically in page order as chunks are fed;
// missing or malformed cells degrade to zero values, never to an abort.
type ResultsParser struct {
	stream *tokenStream
	cookie string

	subs     []models.Subtitles
	sessions map[int]string

	pageCount int
	finished  bool

	inRow    bool
	tableDep int
	row      rowState
}

type rowState struct {
	inCell    bool
	cellClass string
	cellBuf   strings.Builder

	title   string
	desc    []string
	labels  map[string]string
	ratings []int
	id      int
	sh      string
}

// NewResultsParser builds a parser for one page. cookie is the page's
// ansi_sciagnij response cookie; rows parsed from this page are only
// downloadable together with it.
func NewResultsParser(cookie string) *ResultsParser {
	p := &ResultsParser{cookie: cookie, sessions: make(map[int]string)}
	p.stream = newTokenStream(p.sink)
	return p
}

// Feed pushes one chunk of decoded page text.
func (p *ResultsParser) Feed(chunk []byte) {
	if !p.finished {
		p.stream.Feed(chunk)
	}
}

// Finish ends the feed. A page that produced rows but no pager counts as a
// single page; the "no results" shape stays at zero pages.
func (p *ResultsParser) Finish() {
	if p.finished {
		return
	}
	p.stream.Close()
	p.finished = true
	if p.pageCount == 0 && len(p.subs) > 0 {
		p.pageCount = 1
	}
}

// Subtitles returns the records parsed so far, in page order.
func (p *ResultsParser) Subtitles() []models.Subtitles {
	return p.subs
}

// PageCount returns the page total the pager reported. Only meaningful
// after Finish.
func (p *ResultsParser) PageCount() int {
	return p.pageCount
}

// SessionFor returns the download capability captured from the row with the
// given id. Rows without an sh token report false: they are not
// downloadable from this page.
func (p *ResultsParser) SessionFor(id int) (models.SessionData, bool) {
	sh, ok := p.sessions[id]
	if !ok {
		return models.SessionData{}, false
	}
	return models.SessionData{SH: sh, Cookie: p.cookie}, true
}

// Sessions returns every (id, sh+cookie) capability captured on this page.
func (p *ResultsParser) Sessions() map[int]models.SessionData {
	out := make(map[int]models.SessionData, len(p.sessions))
	for id, sh := range p.sessions {
		out[id] = models.SessionData{SH: sh, Cookie: p.cookie}
	}
	return out
}

func (p *ResultsParser) sink(tok html.Token) {
	switch tok.Type {
	case html.StartTagToken, html.SelfClosingTagToken:
		p.startTag(tok)
	case html.TextToken:
		if p.inRow && p.row.inCell {
			p.row.cellBuf.WriteString(tok.Data)
		}
	case html.EndTagToken:
		p.endTag(tok)
	}
}

func (p *ResultsParser) startTag(tok html.Token) {
	switch tok.Data {
	case "table":
		if p.inRow {
			p.tableDep++
			return
		}
		if hasClass(tok, rowClass) {
			p.inRow = true
			p.tableDep = 0
			p.row = rowState{labels: make(map[string]string)}
		}
	case "td":
		if p.inRow {
			p.row.inCell = true
			p.row.cellClass = attr(tok, "class")
			p.row.cellBuf.Reset()
		}
	case "br":
		if p.inRow && p.row.inCell {
			p.row.cellBuf.WriteString("\n")
		}
	case "img":
		if p.inRow {
			if pct, ok := ratingPercent(attr(tok, "title")); ok && len(p.row.ratings) < 3 {
				p.row.ratings = append(p.row.ratings, pct)
			}
		}
	case "input":
		if p.inRow && attr(tok, "type") == "hidden" {
			switch attr(tok, "name") {
			case "id":
				p.row.id, _ = strconv.Atoi(strings.TrimSpace(attr(tok, "value")))
			case "sh":
				p.row.sh = strings.TrimSpace(attr(tok, "value"))
			}
		}
	case "a":
		if href := attr(tok, "href"); href != "" {
			p.notePagerLink(href)
		}
	}
}

func (p *ResultsParser) endTag(tok html.Token) {
	switch tok.Data {
	case "td":
		if p.inRow && p.row.inCell {
			p.row.inCell = false
			p.classifyCell()
		}
	case "table":
		if !p.inRow {
			return
		}
		if p.tableDep > 0 {
			p.tableDep--
			return
		}
		p.inRow = false
		p.finishRow()
	}
}

// classifyCell routes a completed cell by its class, falling back to the
// "Label: value" convention for the plain cells.
func (p *ResultsParser) classifyCell() {
	txt := strings.TrimSpace(p.row.cellBuf.String())
	switch {
	case classContains(p.row.cellClass, titleCellClass):
		if p.row.title == "" {
			p.row.title = txt
		}
	case classContains(p.row.cellClass, descCellClass):
		p.row.desc = append(p.row.desc, strings.Trim(txt, "\n"))
	default:
		if label, value, ok := strings.Cut(txt, ":"); ok {
			p.row.labels[strings.TrimSpace(label)] = strings.TrimSpace(value)
		}
	}
}

// finishRow turns the assembled row into a record. Rows without a positive
// id are dropped; rows without an sh token are kept but not downloadable.
func (p *ResultsParser) finishRow() {
	r := &p.row
	if r.id <= 0 {
		return
	}

	sub := models.Subtitles{
		ID:          r.id,
		Format:      r.labels[labelFormat],
		Size:        r.labels[labelSize],
		Author:      r.labels[labelAuthor],
		AddedBy:     r.labels[labelAddedBy],
		Description: strings.Join(r.desc, "\n"),
	}
	sub.OriginalTitle, sub.EnglishTitle, sub.AltTitle = splitTitles(r.title)
	sub.Episode, sub.ToEpisode = parseEpisodeRange(r.labels[labelEpisode])
	sub.Date = parseDate(r.labels[labelDate])
	sub.CommentCount = parseCount(r.labels[labelComments])
	sub.Downloads = parseCount(r.labels[labelDownloads])
	if len(r.ratings) == 3 {
		sub.Rating = models.SubtitlesRating{Bad: r.ratings[0], Average: r.ratings[1], VeryGood: r.ratings[2]}
	}

	p.subs = append(p.subs, sub)
	if r.sh != "" {
		p.sessions[r.id] = r.sh
	}
}

// notePagerLink keeps the highest page number any pager link targets.
func (p *ResultsParser) notePagerLink(href string) {
	idx := strings.Index(href, "?")
	if idx < 0 {
		return
	}
	q, err := url.ParseQuery(href[idx+1:])
	if err != nil {
		return
	}
	if n, err := strconv.Atoi(q.Get(pageQueryKey)); err == nil && n > p.pageCount {
		p.pageCount = n
	}
}

// splitTitles splits the title cell into its original / english / alternate
// parts. Missing parts stay empty.
func splitTitles(s string) (original, english, alt string) {
	parts := strings.Split(s, " / ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], parts[1], ""
	default:
		return parts[0], parts[1], strings.Join(parts[2:], " / ")
	}
}

// parseEpisodeRange decodes the episode cell: "N" is a single episode,
// "N-M" an inclusive pack, the movie marker (or anything unreadable) a
// movie.
func parseEpisodeRange(s string) (from, to int) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, movieMarker) {
		return 0, 0
	}
	lo, hi, isRange := strings.Cut(s, "-")
	from, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || from < 0 {
		return 0, 0
	}
	to = from
	if isRange {
		if n, err := strconv.Atoi(strings.TrimSpace(hi)); err == nil && n > from {
			to = n
		}
	}
	return from, to
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ratingPercent extracts the percent from a rating bar title such as
// "bardzo dobre: 87%".
func ratingPercent(title string) (int, bool) {
	title = strings.TrimSpace(title)
	if !strings.HasSuffix(title, "%") {
		return 0, false
	}
	rest := strings.TrimSuffix(title, "%")
	if idx := strings.LastIndexAny(rest, ": "); idx >= 0 {
		rest = rest[idx+1:]
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}

func classContains(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}
