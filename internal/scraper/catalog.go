package scraper

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/alvarorichard/Goansi/internal/text"
)

var romanForms = []string{"", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}

// CatalogParser finds the search URL for a wanted title on an alphabetical
// catalog page. Catalog entries are links to the search endpoint; the link
// text carries the primary title and the tooltip carries comma-separated
// alternate titles. An exact normalized match latches as soon as its row is
// parsed, so the caller may abandon the rest of the page; the fuzzy
// fallback is only decided at end of feed.
type CatalogParser struct {
	stream   *tokenStream
	variants []string

	result string
	exact  bool

	bestRatio float64
	bestHref  string

	inLink  bool
	href    string
	tooltip string
	textBuf strings.Builder

	finished bool
}

// NewCatalogParser builds a parser for one catalog page. season and year
// are optional hints; when season is given the seasoned title forms replace
// the bare title, so "Yuru Camp" with season 3 resolves to the catalog's
// "Yuru Camp Season 3" entry even though the bare entry sorts first.
func NewCatalogParser(title, season, year string) *CatalogParser {
	p := &CatalogParser{variants: catalogVariants(title, season, year)}
	p.stream = newTokenStream(p.sink)
	return p
}

// Feed pushes one chunk of decoded page text.
func (p *CatalogParser) Feed(chunk []byte) {
	if !p.finished {
		p.stream.Feed(chunk)
	}
}

// Result returns the latched exact-match search URL, or "" while none is
// known. Once non-empty the value never changes.
func (p *CatalogParser) Result() string {
	if p.exact {
		return p.result
	}
	return ""
}

// Finish ends the feed and returns the final result: the exact match if one
// latched, otherwise the best fuzzy candidate at or above the similarity
// threshold, otherwise "".
func (p *CatalogParser) Finish() string {
	if !p.finished {
		p.stream.Close()
		p.finished = true
		if !p.exact && p.bestHref != "" {
			p.result = p.bestHref
		}
	}
	return p.result
}

func (p *CatalogParser) sink(tok html.Token) {
	switch tok.Type {
	case html.StartTagToken:
		if tok.Data == "a" {
			if href := attr(tok, "href"); strings.Contains(href, "szukaj") {
				p.inLink = true
				p.href = href
				p.tooltip = attr(tok, "title")
				p.textBuf.Reset()
			}
		}
	case html.TextToken:
		if p.inLink {
			p.textBuf.WriteString(tok.Data)
		}
	case html.EndTagToken:
		if tok.Data == "a" && p.inLink {
			p.inLink = false
			p.evaluate()
		}
	}
}

// evaluate scores one finished catalog entry against the variant set.
func (p *CatalogParser) evaluate() {
	if p.exact {
		return
	}
	candidates := []string{text.Normalize(p.textBuf.String())}
	for _, alt := range strings.Split(p.tooltip, ",") {
		if n := text.Normalize(alt); n != "" {
			candidates = append(candidates, n)
		}
	}
	for _, v := range p.variants {
		for _, cand := range candidates {
			if cand == "" {
				continue
			}
			if v == cand {
				p.exact = true
				p.result = p.href
				return
			}
			if r := text.Ratio(v, cand); r >= text.SimilarityThreshold && r > p.bestRatio {
				p.bestRatio = r
				p.bestHref = p.href
			}
		}
	}
}

// catalogVariants builds the normalized candidate-title set for a query.
func catalogVariants(title, season, year string) []string {
	var raw []string
	if season != "" {
		for _, f := range seasonForms(season) {
			raw = append(raw, title+" "+f)
		}
	} else {
		raw = append(raw, title)
	}
	if year != "" {
		raw = append(raw, title+" ("+year+")")
	}

	seen := make(map[string]bool, len(raw))
	variants := make([]string, 0, len(raw))
	for _, r := range raw {
		n := text.Normalize(r)
		if n != "" && !seen[n] {
			seen[n] = true
			variants = append(variants, n)
		}
	}
	return variants
}

// seasonForms expands a season hint into the forms catalogs use. Numeric
// hints get the full set; free-text hints are used as given.
func seasonForms(season string) []string {
	n, err := strconv.Atoi(strings.TrimSpace(season))
	if err != nil || n <= 0 {
		return []string{season}
	}
	forms := []string{
		strconv.Itoa(n),
		"Season " + strconv.Itoa(n),
		"S" + strconv.Itoa(n),
		ordinal(n) + " Season",
	}
	if n < len(romanForms) {
		forms = append(forms, romanForms[n])
	}
	return forms
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 10 {
	case 1:
		suffix = "st"
	case 2:
		suffix = "nd"
	case 3:
		suffix = "rd"
	}
	if n%100 >= 11 && n%100 <= 13 {
		suffix = "th"
	}
	return strconv.Itoa(n) + suffix
}
