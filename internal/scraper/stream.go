// Package scraper parses the catalog and search-result pages of the
// subtitle site. The markup is legacy, hand-written and not well formed, so
// both parsers run on a tolerant tag-event stream instead of a DOM tree and
// can be fed the page in arbitrary chunks.
package scraper

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// tokenStream drives an html.Tokenizer in push mode. The tokenizer runs on
// its own goroutine behind a rendezvous reader; Feed hands it one chunk and
// returns only after every token that chunk completed has reached the sink
// and the tokenizer is blocked waiting for more input. Parsing is therefore
// deterministic for any split of the document into chunks.
type tokenStream struct {
	sink   func(html.Token)
	dataCh chan []byte
	reqCh  chan struct{}
	tokCh  chan html.Token
	hungry bool
	done   bool
}

func newTokenStream(sink func(html.Token)) *tokenStream {
	s := &tokenStream{
		sink:   sink,
		dataCh: make(chan []byte),
		reqCh:  make(chan struct{}),
		tokCh:  make(chan html.Token),
	}
	go s.run()
	return s
}

func (s *tokenStream) run() {
	z := html.NewTokenizer(&rendezvousReader{stream: s})
	for {
		if z.Next() == html.ErrorToken {
			close(s.tokCh)
			return
		}
		s.tokCh <- z.Token()
	}
}

// Feed pushes one chunk of decoded HTML into the tokenizer.
func (s *tokenStream) Feed(chunk []byte) {
	if s.done || len(chunk) == 0 {
		return
	}
	pending := chunk
	for {
		if s.hungry {
			if pending == nil {
				return
			}
			s.hungry = false
			s.dataCh <- pending
			pending = nil
			continue
		}
		select {
		case tok, ok := <-s.tokCh:
			if !ok {
				s.done = true
				return
			}
			s.sink(tok)
		case <-s.reqCh:
			s.hungry = true
		}
	}
}

// Close signals end of input and drains the remaining tokens. It is safe to
// call after an abandoned feed and more than once.
func (s *tokenStream) Close() {
	if s.done {
		return
	}
	closed := false
	for {
		if s.hungry && !closed {
			s.hungry = false
			close(s.dataCh)
			closed = true
			continue
		}
		select {
		case tok, ok := <-s.tokCh:
			if !ok {
				s.done = true
				return
			}
			s.sink(tok)
		case <-s.reqCh:
			s.hungry = true
		}
	}
}

// rendezvousReader feeds the tokenizer goroutine. Every read first posts a
// request, then blocks until Feed delivers a chunk; a closed data channel
// means end of input.
type rendezvousReader struct {
	stream *tokenStream
	buf    []byte
	eof    bool
}

func (r *rendezvousReader) Read(p []byte) (int, error) {
	if r.eof {
		return 0, io.EOF
	}
	if len(r.buf) == 0 {
		r.stream.reqCh <- struct{}{}
		b, ok := <-r.stream.dataCh
		if !ok || len(b) == 0 {
			r.eof = true
			return 0, io.EOF
		}
		r.buf = b
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// attr returns the value of the named attribute, or "".
func attr(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// hasClass reports whether the token's class attribute contains the given
// class name.
func hasClass(tok html.Token, class string) bool {
	for _, c := range strings.Fields(attr(tok, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
