package models

import "github.com/pkg/errors"

// SortBy selects the result ordering of a search. The values are the literal
// pSortuj keys the site expects.
type SortBy string

const (
	SortByFitness   SortBy = "traf"
	SortByAddedDate SortBy = "datad"
	SortByDownloads SortBy = "pobrn"
	SortByRating    SortBy = "ocen"
)

// TitleType selects which title column a search query matches. The values are
// the literal pTitle keys the site expects. TitleTypeID is the id-keyed
// lookup used to re-resolve download tokens for a known record.
type TitleType string

const (
	TitleTypeOriginal TitleType = "org"
	TitleTypeEnglish  TitleType = "en"
	TitleTypePolish   TitleType = "pl"
	TitleTypeJapanese TitleType = "jp"
	TitleTypeID       TitleType = "id"
)

// ParseSortBy maps a user-supplied sort key onto a SortBy. Unknown keys are
// an error, not a silent fallback.
func ParseSortBy(s string) (SortBy, error) {
	switch v := SortBy(s); v {
	case SortByFitness, SortByAddedDate, SortByDownloads, SortByRating:
		return v, nil
	}
	return "", errors.Errorf("invalid sort key %q: want traf, datad, pobrn or ocen", s)
}

// ParseTitleType maps a user-supplied title key onto a TitleType.
func ParseTitleType(s string) (TitleType, error) {
	switch v := TitleType(s); v {
	case TitleTypeOriginal, TitleTypeEnglish, TitleTypePolish, TitleTypeJapanese, TitleTypeID:
		return v, nil
	}
	return "", errors.Errorf("invalid title type %q: want org, en, pl or jp", s)
}
