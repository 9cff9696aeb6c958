// Package fitness ranks subtitle records against decomposed video file
// names. The score is a bit-packed composite: the title similarity percent
// sits in the high bits, so a better title always beats any combination of
// lower-tier matches, followed by the checksum/file/source count, the
// release-group bit and the year/season/type/video/audio count.
package fitness

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/alvarorichard/Goansi/internal/filename"
	"github.com/alvarorichard/Goansi/internal/models"
	"github.com/alvarorichard/Goansi/internal/text"
)

var extSuffix = regexp.MustCompile(`\.[A-Za-z0-9]{2,5}$`)

var tier2Attrs = []filename.Attribute{
	filename.AttrFileChecksum,
	filename.AttrFileName,
	filename.AttrSource,
}

var tier4Attrs = []filename.Attribute{
	filename.AttrAnimeSeason,
	filename.AttrAnimeType,
	filename.AttrVideoTerm,
	filename.AttrVideoResolution,
	filename.AttrAudioTerm,
}

// Score computes the fitness of a subtitle record for a decomposed file
// name. Zero means the record is unusable: episode outside the record's
// range, a movie record against an episode file (or the reverse), or no
// title variant within the similarity threshold.
func Score(rec models.Subtitles, d filename.Decomposed) int {
	if !episodeMatches(rec, d) {
		return 0
	}
	wanted := text.Normalize(d.First(filename.AttrAnimeTitle))
	if wanted == "" {
		return 0
	}
	best := bestTitleRatio(rec, wanted)
	if best < text.SimilarityThreshold {
		return 0
	}
	t := int(math.Round(best * 100))

	haystack := text.Normalize(strings.Join([]string{
		rec.OriginalTitle, rec.EnglishTitle, rec.AltTitle, rec.Description,
	}, " "))

	c := 0
	for _, attr := range tier2Attrs {
		vals := d[attr]
		if attr == filename.AttrFileName {
			vals = stripExtensions(vals)
		}
		if matchAny(haystack, vals) {
			c++
		}
	}

	b := 0
	if matchAny(haystack, d[filename.AttrReleaseGroup]) {
		b = 1
	}

	a := 0
	if yearMatches(rec, haystack, d[filename.AttrAnimeYear]) {
		a++
	}
	for _, attr := range tier4Attrs {
		if matchAny(haystack, d[attr]) {
			a++
		}
	}
	if a > 6 {
		a = 6
	}

	return ((t + 1) << 8) | (c << 5) | (b << 4) | a
}

// ScoreName decomposes a raw file name first, then scores it.
func ScoreName(rec models.Subtitles, name string) (int, error) {
	d, err := filename.Decompose(name)
	if err != nil {
		return 0, err
	}
	return Score(rec, d), nil
}

// TitleScore recovers the title similarity percent from a packed score.
func TitleScore(score int) int {
	return (score >> 8) - 1
}

// episodeMatches enforces the episode hard filter: episode records require
// an episode number inside their range, movie records require none.
func episodeMatches(rec models.Subtitles, d filename.Decomposed) bool {
	if rec.IsMovie() {
		return !d.Has(filename.AttrEpisodeNumber)
	}
	e, err := strconv.Atoi(strings.TrimSpace(d.First(filename.AttrEpisodeNumber)))
	if err != nil {
		return false
	}
	return rec.CoversEpisode(e)
}

// bestTitleRatio returns the best similarity between the wanted normalized
// title and the record's three title variants.
func bestTitleRatio(rec models.Subtitles, wanted string) float64 {
	best := 0.0
	for _, t := range rec.Titles() {
		if t == "" {
			continue
		}
		if r := text.Ratio(text.Normalize(t), wanted); r > best {
			best = r
		}
	}
	return best
}

// matchAny reports whether any value, normalized, appears in the normalized
// concatenation of the record's titles and description.
func matchAny(haystack string, vals []string) bool {
	for _, v := range vals {
		if nv := text.Normalize(v); nv != "" && strings.Contains(haystack, nv) {
			return true
		}
	}
	return false
}

// yearMatches additionally accepts the record's publication year, so a
// record dated 2019 matches anime_year "2019" even when the text never
// mentions it.
func yearMatches(rec models.Subtitles, haystack string, years []string) bool {
	if matchAny(haystack, years) {
		return true
	}
	for _, y := range years {
		if n, err := strconv.Atoi(strings.TrimSpace(y)); err == nil && !rec.Date.IsZero() && n == rec.Date.Year() {
			return true
		}
	}
	return false
}

func stripExtensions(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = extSuffix.ReplaceAllString(v, "")
	}
	return out
}
