// Package filename decomposes video release names into the attribute set the
// fitness scorer consumes.
package filename

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/moistari/rls"
)

// Attribute is one key of the fixed attribute set.
type Attribute string

const (
	AttrAnimeTitle      Attribute = "anime_title"
	AttrEpisodeNumber   Attribute = "episode_number"
	AttrAnimeYear       Attribute = "anime_year"
	AttrAnimeSeason     Attribute = "anime_season"
	AttrAnimeType       Attribute = "anime_type"
	AttrVideoTerm       Attribute = "video_term"
	AttrVideoResolution Attribute = "video_resolution"
	AttrAudioTerm       Attribute = "audio_term"
	AttrFileChecksum    Attribute = "file_checksum"
	AttrFileName        Attribute = "file_name"
	AttrReleaseGroup    Attribute = "release_group"
	AttrSource          Attribute = "source"
)

// Decomposed maps attributes to their values in file-name order. Single
// values are one-element lists. An absent attribute means the name carried
// no such component.
type Decomposed map[Attribute][]string

// First returns the first value of an attribute, or "" when absent.
func (d Decomposed) First(a Attribute) string {
	if vs := d[a]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Has reports whether the attribute was recognized in the name.
func (d Decomposed) Has(a Attribute) bool {
	return len(d[a]) > 0
}

func (d Decomposed) add(a Attribute, vs ...string) {
	for _, v := range vs {
		v = strings.TrimSpace(v)
		if v != "" {
			d[a] = append(d[a], v)
		}
	}
}

// DecomposeError reports a file name that could not be analyzed into usable
// attributes.
type DecomposeError struct {
	Name string
}

func (e *DecomposeError) Error() string {
	return fmt.Sprintf("could not analyze file name %q", e.Name)
}

var (
	leadingGroup  = regexp.MustCompile(`^\[([^\]\[]+)\]`)
	dashEpisode   = regexp.MustCompile(`[\s_]-[\s_]*(\d{1,4})(?:[\s_]*[-~][\s_]*(\d{1,4}))?\b`)
	crcChecksum   = regexp.MustCompile(`[\[(]([0-9A-Fa-f]{8})[\])]`)
	resolutionPat = regexp.MustCompile(`\b(\d{3,4}p|\d{3,4}[xX]\d{3,4})\b`)
	yearPat       = regexp.MustCompile(`\b(19\d\d|20\d\d)\b`)
	seasonPat     = regexp.MustCompile(`(?i)\b(?:S(\d{1,2})|(\d{1,2})(?:st|nd|rd|th) Season|Season[\s_]*(\d{1,2}))\b`)
	typePat       = regexp.MustCompile(`(?i)\b(OVA|ONA|OAV|Movie|Gekijouban|Special|Specials|TV)\b`)
	titleCut      = regexp.MustCompile(`[\s_]-[\s_]*\d`)
	extPat        = regexp.MustCompile(`\.[A-Za-z0-9]{2,5}$`)
	bracketed     = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
)

// Decompose analyzes a video file name. The release parser does the heavy
// lifting; anime naming conventions that predate scene rules are covered by
// fallback patterns so bracket-group fansub names decompose the same way.
func Decompose(name string) (Decomposed, error) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	stem := extPat.ReplaceAllString(base, "")

	d := Decomposed{}
	d.add(AttrFileName, stem)

	r := rls.ParseString(base)

	if t := strings.TrimSpace(r.Title); t != "" {
		d.add(AttrAnimeTitle, t)
	}
	if r.Episode > 0 {
		d.add(AttrEpisodeNumber, strconv.Itoa(r.Episode))
	}
	if r.Series > 0 {
		d.add(AttrAnimeSeason, strconv.Itoa(r.Series))
	}
	if r.Year > 0 {
		d.add(AttrAnimeYear, strconv.Itoa(r.Year))
	}
	if r.Resolution != "" {
		d.add(AttrVideoResolution, r.Resolution)
	}
	if r.Source != "" {
		d.add(AttrSource, r.Source)
	}
	d.add(AttrVideoTerm, r.Codec...)
	d.add(AttrAudioTerm, r.Audio...)
	if r.Sum != "" {
		d.add(AttrFileChecksum, r.Sum)
	}
	// Anime fansub groups land in Site ([Group] prefix); scene groups in Group.
	switch {
	case r.Site != "":
		d.add(AttrReleaseGroup, r.Site)
	case r.Group != "":
		d.add(AttrReleaseGroup, r.Group)
	}

	applyFallbacks(d, base, stem)

	if !d.Has(AttrAnimeTitle) {
		return nil, &DecomposeError{Name: name}
	}
	return d, nil
}

// applyFallbacks fills attributes the release parser left empty using the
// older bracketed fansub conventions.
func applyFallbacks(d Decomposed, base, stem string) {
	if !d.Has(AttrReleaseGroup) {
		if m := leadingGroup.FindStringSubmatch(base); m != nil {
			d.add(AttrReleaseGroup, m[1])
		}
	}
	if !d.Has(AttrEpisodeNumber) {
		if m := dashEpisode.FindStringSubmatch(stem); m != nil {
			d.add(AttrEpisodeNumber, strings.TrimLeft(m[1], "0"))
			if m[2] != "" {
				d.add(AttrEpisodeNumber, strings.TrimLeft(m[2], "0"))
			}
		}
	}
	if !d.Has(AttrFileChecksum) {
		if m := crcChecksum.FindStringSubmatch(base); m != nil {
			d.add(AttrFileChecksum, m[1])
		}
	}
	if !d.Has(AttrVideoResolution) {
		if m := resolutionPat.FindStringSubmatch(base); m != nil {
			d.add(AttrVideoResolution, m[1])
		}
	}
	if !d.Has(AttrAnimeSeason) {
		if m := seasonPat.FindStringSubmatch(stem); m != nil {
			for _, g := range m[1:] {
				if g != "" {
					d.add(AttrAnimeSeason, strings.TrimLeft(g, "0"))
					break
				}
			}
		}
	}
	if !d.Has(AttrAnimeType) {
		if m := typePat.FindStringSubmatch(stem); m != nil {
			d.add(AttrAnimeType, m[1])
		}
	}
	if !d.Has(AttrAnimeTitle) {
		if t := fallbackTitle(stem); t != "" {
			d.add(AttrAnimeTitle, t)
		}
	}
	if !d.Has(AttrAnimeYear) {
		// Years inside brackets are release metadata the parser may skip.
		if m := yearPat.FindStringSubmatch(stem); m != nil {
			d.add(AttrAnimeYear, m[1])
		}
	}
}

// fallbackTitle recovers a title from bracket-heavy names: bracketed
// segments go, the name is cut at the episode marker, and trailing season,
// resolution or year tokens are trimmed.
func fallbackTitle(stem string) string {
	s := stem
	s = leadingGroup.ReplaceAllString(s, "")
	s = bracketed.ReplaceAllString(s, " ")
	if loc := titleCut.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = seasonPat.ReplaceAllString(s, " ")
	s = resolutionPat.ReplaceAllString(s, " ")
	s = yearPat.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -.")
}
