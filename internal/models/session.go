package models

// SessionData pairs the per-row download token with the cookie of the page
// that delivered the row. The pair is a short-lived capability: it only
// authorizes downloading that row's archive and expires with the cookie.
type SessionData struct {
	SH     string `json:"sh"`
	Cookie string `json:"cookie"`
}

// Valid reports whether both halves of the capability are present.
func (s SessionData) Valid() bool {
	return s.SH != "" && s.Cookie != ""
}

// ExtractedSubtitle is one member extracted from a downloaded archive.
type ExtractedSubtitle struct {
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
}
