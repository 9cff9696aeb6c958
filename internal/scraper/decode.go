package scraper

import (
	"io"

	"golang.org/x/text/encoding/charmap"
)

// NewDecodingReader wraps a response body so reads yield UTF-8. The site
// serves every page in ISO-8859-2; decoding must happen before any string
// comparison, so the drivers decode the raw body before feeding a parser.
func NewDecodingReader(r io.Reader) io.Reader {
	return charmap.ISO8859_2.NewDecoder().Reader(r)
}
