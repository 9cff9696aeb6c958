// Package models contains subtitle-catalog data structures
package models

import (
	"fmt"
	"time"
)

// SubtitlesRating is the vote distribution of a subtitle record. The three
// buckets are percentages; they sum to 100, or to 0 when nobody voted yet.
type SubtitlesRating struct {
	Bad      int `json:"bad"`
	Average  int `json:"average"`
	VeryGood int `json:"very_good"`
}

// HasVotes reports whether anyone rated the record.
func (r SubtitlesRating) HasVotes() bool {
	return r.Bad+r.Average+r.VeryGood > 0
}

// Subtitles is one record parsed from a search-results row. Records are
// immutable snapshots; the parser fills what the row carries and leaves the
// rest as zero values.
type Subtitles struct {
	ID            int             `json:"id"`
	Episode       int             `json:"episode"`
	ToEpisode     int             `json:"to_episode"`
	OriginalTitle string          `json:"original_title"`
	EnglishTitle  string          `json:"english_title"`
	AltTitle      string          `json:"alt_title"`
	Date          time.Time       `json:"date"`
	Format        string          `json:"format"`
	Author        string          `json:"author"`
	AddedBy       string          `json:"added_by"`
	Size          string          `json:"size"`
	Description   string          `json:"description"`
	CommentCount  int             `json:"comment_count"`
	Downloads     int             `json:"downloads"`
	Rating        SubtitlesRating `json:"rating"`
}

// IsMovie reports whether the record covers a movie rather than episodes.
// The site renders such rows with a movie marker instead of a number.
func (s *Subtitles) IsMovie() bool {
	return s.Episode == 0
}

// IsPack reports whether the record covers an inclusive episode range.
func (s *Subtitles) IsPack() bool {
	return s.ToEpisode > s.Episode
}

// CoversEpisode reports whether episode e falls inside the record's range.
func (s *Subtitles) CoversEpisode(e int) bool {
	return s.Episode <= e && e <= s.ToEpisode
}

// Titles returns the three title variants in site order. Empty variants are
// included so callers can keep positional meaning.
func (s *Subtitles) Titles() [3]string {
	return [3]string{s.OriginalTitle, s.EnglishTitle, s.AltTitle}
}

// EpisodeLabel renders the episode range the way the site does.
func (s *Subtitles) EpisodeLabel() string {
	switch {
	case s.IsMovie():
		return "Film"
	case s.IsPack():
		return fmt.Sprintf("%d-%d", s.Episode, s.ToEpisode)
	default:
		return fmt.Sprintf("%d", s.Episode)
	}
}
