package ansi

import (
	"errors"
	"fmt"
)

// ErrEmptyArchive reports a downloaded archive with no extractable entries.
var ErrEmptyArchive = errors.New("empty archive")

// SessionDataError means no (sh, cookie) pair could be captured for a
// subtitle id, so the download cannot be authorized. The id may not exist,
// or its search row carried no token.
type SessionDataError struct {
	SubtitleID int
}

func (e *SessionDataError) Error() string {
	return fmt.Sprintf("could not obtain session data for subtitle %d", e.SubtitleID)
}

// SecurityError means the download endpoint answered with an HTML page
// instead of an archive: the site rejected the session tokens. Tokens
// expire together with the cookie of the search page that delivered them.
type SecurityError struct {
	SubtitleID int
	SH         string
	Cookie     string
	Reason     string
}

func (e *SecurityError) Error() string {
	msg := fmt.Sprintf("security error downloading subtitle %d: session tokens may be invalid (sh=%q, cookie=%q)",
		e.SubtitleID, e.SH, e.Cookie)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
