package ansi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// testRow renders one search-results row in the site's markup. The fixture
// stays ASCII so it survives the Latin-2 decoding step untouched.
type testRow struct {
	id      int
	sh      string
	title   string
	episode string
	date    string
	desc    string
}

func (r testRow) render() string {
	var b strings.Builder
	b.WriteString(`<table class="KNap"><tr><td class="KNapT">`)
	b.WriteString(r.title)
	b.WriteString("</td></tr><tr>")
	fmt.Fprintf(&b, "<td>Odcinek: %s</td>", r.episode)
	if r.date != "" {
		fmt.Fprintf(&b, "<td>Data: %s</td>", r.date)
	}
	b.WriteString("</tr>")
	if r.desc != "" {
		fmt.Fprintf(&b, `<tr><td class="KOpis">%s</td></tr>`, r.desc)
	}
	b.WriteString(`<tr><td>`)
	fmt.Fprintf(&b, `<input type="hidden" name="id" value="%d">`, r.id)
	if r.sh != "" {
		fmt.Fprintf(&b, `<input type="hidden" name="sh" value="%s">`, r.sh)
	}
	b.WriteString(`</td></tr></table>`)
	return b.String()
}

func searchPageHTML(rows []testRow, pages int) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, r := range rows {
		b.WriteString(r.render())
	}
	for i := 2; i <= pages; i++ {
		fmt.Fprintf(&b, `<a href="szukaj.php?szukane=x&strona=%d">%d</a>`, i, i)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("strona"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(nil, WithBaseURL(srv.URL))
}
