package fitness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvarorichard/Goansi/internal/filename"
	"github.com/alvarorichard/Goansi/internal/models"
)

func testRecord(mod func(*models.Subtitles)) models.Subtitles {
	rec := models.Subtitles{
		ID:            1,
		Episode:       1,
		ToEpisode:     1,
		OriginalTitle: "Kimetsu no Yaiba",
		EnglishTitle:  "Demon Slayer",
		AltTitle:      "Pogromca demonow",
		Date:          time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if mod != nil {
		mod(&rec)
	}
	return rec
}

func decomposed(kv map[filename.Attribute][]string) filename.Decomposed {
	d := filename.Decomposed{}
	for k, v := range kv {
		d[k] = v
	}
	return d
}

func tier2(score int) int { return (score >> 5) & 0b111 }
func tier3(score int) int { return (score >> 4) & 0b1 }
func tier4(score int) int { return score & 0b1111 }

func TestScoreHardFilters(t *testing.T) {
	tests := []struct {
		name string
		rec  models.Subtitles
		d    filename.Decomposed
	}{
		{
			name: "episode mismatch",
			rec:  testRecord(func(r *models.Subtitles) { r.Episode, r.ToEpisode = 5, 5 }),
			d: decomposed(map[filename.Attribute][]string{
				filename.AttrAnimeTitle:    {"Kimetsu no Yaiba"},
				filename.AttrEpisodeNumber: {"3"},
			}),
		},
		{
			name: "episode below range",
			rec:  testRecord(func(r *models.Subtitles) { r.Episode, r.ToEpisode = 10, 15 }),
			d: decomposed(map[filename.Attribute][]string{
				filename.AttrAnimeTitle:    {"Kimetsu no Yaiba"},
				filename.AttrEpisodeNumber: {"9"},
			}),
		},
		{
			name: "episode above range",
			rec:  testRecord(func(r *models.Subtitles) { r.Episode, r.ToEpisode = 10, 15 }),
			d: decomposed(map[filename.Attribute][]string{
				filename.AttrAnimeTitle:    {"Kimetsu no Yaiba"},
				filename.AttrEpisodeNumber: {"16"},
			}),
		},
		{
			name: "title below threshold",
			rec:  testRecord(nil),
			d: decomposed(map[filename.Attribute][]string{
				filename.AttrAnimeTitle:    {"Attack on Titan"},
				filename.AttrEpisodeNumber: {"1"},
			}),
		},
		{
			name: "empty wanted title",
			rec:  testRecord(nil),
			d: decomposed(map[filename.Attribute][]string{
				filename.AttrEpisodeNumber: {"1"},
			}),
		},
		{
			name: "episode record against movie file",
			rec:  testRecord(nil),
			d: decomposed(map[filename.Attribute][]string{
				filename.AttrAnimeTitle: {"Kimetsu no Yaiba"},
			}),
		},
		{
			name: "movie record against episode file",
			rec:  testRecord(func(r *models.Subtitles) { r.Episode, r.ToEpisode = 0, 0 }),
			d: decomposed(map[filename.Attribute][]string{
				filename.AttrAnimeTitle:    {"Kimetsu no Yaiba"},
				filename.AttrEpisodeNumber: {"1"},
			}),
		},
		{
			name: "unreadable episode number",
			rec:  testRecord(nil),
			d: decomposed(map[filename.Attribute][]string{
				filename.AttrAnimeTitle:    {"Kimetsu no Yaiba"},
				filename.AttrEpisodeNumber: {"not_a_number"},
			}),
		},
		{
			name: "all titles empty",
			rec: testRecord(func(r *models.Subtitles) {
				r.OriginalTitle, r.EnglishTitle, r.AltTitle = "", "", ""
			}),
			d: decomposed(map[filename.Attribute][]string{
				filename.AttrAnimeTitle:    {"Kimetsu no Yaiba"},
				filename.AttrEpisodeNumber: {"1"},
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Zero(t, Score(tt.rec, tt.d))
		})
	}
}

func TestScoreMovieMatchesMovie(t *testing.T) {
	rec := testRecord(func(r *models.Subtitles) { r.Episode, r.ToEpisode = 0, 0 })
	d := decomposed(map[filename.Attribute][]string{
		filename.AttrAnimeTitle: {"Kimetsu no Yaiba"},
	})
	assert.Positive(t, Score(rec, d))
}

func TestScoreTitleMatching(t *testing.T) {
	base := map[filename.Attribute][]string{
		filename.AttrEpisodeNumber: {"1"},
	}

	t.Run("exact original title scores 100", func(t *testing.T) {
		d := decomposed(base)
		d[filename.AttrAnimeTitle] = []string{"Kimetsu no Yaiba"}
		assert.Equal(t, 100, TitleScore(Score(testRecord(nil), d)))
	})

	t.Run("exact english title scores 100", func(t *testing.T) {
		d := decomposed(base)
		d[filename.AttrAnimeTitle] = []string{"Demon Slayer"}
		assert.Equal(t, 100, TitleScore(Score(testRecord(nil), d)))
	})

	t.Run("exact alternate title scores 100", func(t *testing.T) {
		d := decomposed(base)
		d[filename.AttrAnimeTitle] = []string{"Pogromca demonow"}
		assert.Equal(t, 100, TitleScore(Score(testRecord(nil), d)))
	})

	t.Run("best variant wins", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) {
			r.OriginalTitle = "Completely Different Title"
			r.AltTitle = "Another Different Title"
		})
		d := decomposed(base)
		d[filename.AttrAnimeTitle] = []string{"Demon Slayer"}
		assert.Equal(t, 100, TitleScore(Score(rec, d)))
	})

	t.Run("partial match lands between threshold and 100", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) {
			r.OriginalTitle = "Kimetsu no Yaiba Season 2"
			r.EnglishTitle, r.AltTitle = "", ""
		})
		d := decomposed(base)
		d[filename.AttrAnimeTitle] = []string{"Kimetsu no Yaiba"}
		ts := TitleScore(Score(rec, d))
		assert.GreaterOrEqual(t, ts, 60)
		assert.Less(t, ts, 100)
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		d := decomposed(base)
		d[filename.AttrAnimeTitle] = []string{"KIMETSU NO YAIBA"}
		assert.Equal(t, 100, TitleScore(Score(testRecord(nil), d)))
	})
}

func TestScoreChecksumFileSourceTier(t *testing.T) {
	base := map[filename.Attribute][]string{
		filename.AttrAnimeTitle:    {"Kimetsu no Yaiba"},
		filename.AttrEpisodeNumber: {"1"},
	}

	t.Run("no matches", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) { r.Description = "Generic description" })
		d := decomposed(base)
		d[filename.AttrFileChecksum] = []string{"ABCD1234"}
		d[filename.AttrFileName] = []string{"some_file.mkv"}
		d[filename.AttrSource] = []string{"BluRay"}
		assert.Equal(t, 0, tier2(Score(rec, d)))
	})

	t.Run("checksum match counts one", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) { r.Description = "File checksum: ABCD1234" })
		d := decomposed(base)
		d[filename.AttrFileChecksum] = []string{"ABCD1234"}
		assert.Equal(t, 1, tier2(Score(rec, d)))
	})

	t.Run("file name matches without its extension", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) { r.Description = "For file: anime_episode_01" })
		d := decomposed(base)
		d[filename.AttrFileName] = []string{"anime_episode_01.mkv"}
		assert.Equal(t, 1, tier2(Score(rec, d)))
	})

	t.Run("source match counts one", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) { r.Description = "Source: BluRay" })
		d := decomposed(base)
		d[filename.AttrSource] = []string{"BluRay"}
		assert.Equal(t, 1, tier2(Score(rec, d)))
	})

	t.Run("all three count three", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) { r.Description = "BluRay my_anime_file ABCD1234" })
		d := decomposed(base)
		d[filename.AttrFileChecksum] = []string{"ABCD1234"}
		d[filename.AttrFileName] = []string{"my_anime_file.mkv"}
		d[filename.AttrSource] = []string{"BluRay"}
		assert.Equal(t, 3, tier2(Score(rec, d)))
	})

	t.Run("any checksum in the list matches", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) { r.Description = "ABCD1234" })
		d := decomposed(base)
		d[filename.AttrFileChecksum] = []string{"FFFF0000", "ABCD1234", "12345678"}
		assert.Equal(t, 1, tier2(Score(rec, d)))
	})
}

func TestScoreReleaseGroupBit(t *testing.T) {
	base := map[filename.Attribute][]string{
		filename.AttrAnimeTitle:    {"Kimetsu no Yaiba"},
		filename.AttrEpisodeNumber: {"1"},
	}

	t.Run("no match", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) { r.Description = "Generic description" })
		d := decomposed(base)
		d[filename.AttrReleaseGroup] = []string{"SubsPlease"}
		assert.Equal(t, 0, tier3(Score(rec, d)))
	})

	t.Run("match sets the bit", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) { r.Description = "Release by SubsPlease" })
		d := decomposed(base)
		d[filename.AttrReleaseGroup] = []string{"SubsPlease"}
		assert.Equal(t, 1, tier3(Score(rec, d)))
	})

	t.Run("any group in the list matches", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) { r.Description = "By Erai-raws" })
		d := decomposed(base)
		d[filename.AttrReleaseGroup] = []string{"SubsPlease", "Erai-raws", "HorribleSubs"}
		assert.Equal(t, 1, tier3(Score(rec, d)))
	})

	t.Run("matching survives punctuation and casing", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) { r.Description = "Release: SubsPlease!!!" })
		d := decomposed(base)
		d[filename.AttrReleaseGroup] = []string{"subsplease"}
		assert.Equal(t, 1, tier3(Score(rec, d)))
	})
}

func TestScoreDetailTier(t *testing.T) {
	base := map[filename.Attribute][]string{
		filename.AttrAnimeTitle:    {"Kimetsu no Yaiba"},
		filename.AttrEpisodeNumber: {"1"},
	}

	t.Run("no matches", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) {
			r.Description = "Generic description"
			r.Date = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		})
		d := decomposed(base)
		d[filename.AttrAnimeYear] = []string{"2019"}
		d[filename.AttrAnimeSeason] = []string{"2"}
		d[filename.AttrAnimeType] = []string{"TV"}
		d[filename.AttrVideoTerm] = []string{"H264"}
		d[filename.AttrVideoResolution] = []string{"1080p"}
		d[filename.AttrAudioTerm] = []string{"AAC"}
		assert.Equal(t, 0, tier4(Score(rec, d)))
	})

	t.Run("year matches the record date", func(t *testing.T) {
		d := decomposed(base)
		d[filename.AttrAnimeYear] = []string{"2019"}
		assert.Equal(t, 1, tier4(Score(testRecord(nil), d)))
	})

	t.Run("year in a title matches over the date", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) {
			r.OriginalTitle = "Kimetsu no Yaiba (2019)"
			r.Date = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		})
		d := decomposed(base)
		d[filename.AttrAnimeYear] = []string{"2019"}
		assert.Equal(t, 1, tier4(Score(rec, d)))
	})

	single := []struct {
		name string
		desc string
		attr filename.Attribute
		val  string
	}{
		{"season", "Season 2", filename.AttrAnimeSeason, "2"},
		{"type", "TV series", filename.AttrAnimeType, "TV"},
		{"video term", "H264 encoded", filename.AttrVideoTerm, "H264"},
		{"resolution", "1080p quality", filename.AttrVideoResolution, "1080p"},
		{"audio term", "AAC audio", filename.AttrAudioTerm, "AAC"},
	}
	for _, tt := range single {
		t.Run(tt.name+" counts one", func(t *testing.T) {
			rec := testRecord(func(r *models.Subtitles) {
				r.Description = tt.desc
				r.Date = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
			})
			d := decomposed(base)
			d[tt.attr] = []string{tt.val}
			assert.Equal(t, 1, tier4(Score(rec, d)))
		})
	}

	t.Run("any value in a list matches", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) { r.Description = "H265" })
		d := decomposed(base)
		d[filename.AttrVideoTerm] = []string{"H264", "H265", "x264"}
		assert.Equal(t, 1, tier4(Score(rec, d)))
	})

	t.Run("all six count six", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) {
			r.Description = "2019 Season 2 TV H264 1080p AAC"
		})
		d := decomposed(base)
		d[filename.AttrAnimeYear] = []string{"2019"}
		d[filename.AttrAnimeSeason] = []string{"2"}
		d[filename.AttrAnimeType] = []string{"TV"}
		d[filename.AttrVideoTerm] = []string{"H264"}
		d[filename.AttrVideoResolution] = []string{"1080p"}
		d[filename.AttrAudioTerm] = []string{"AAC"}
		assert.Equal(t, 6, tier4(Score(rec, d)))
	})
}

func TestScoreTierPacking(t *testing.T) {
	t.Run("maximum score packs every tier", func(t *testing.T) {
		rec := testRecord(func(r *models.Subtitles) {
			r.Description = "BluRay my_file ABCD1234 SubsPlease 2019 Season 2 TV H264 1080p AAC"
		})
		d := decomposed(map[filename.Attribute][]string{
			filename.AttrAnimeTitle:      {"Kimetsu no Yaiba"},
			filename.AttrEpisodeNumber:   {"1"},
			filename.AttrFileChecksum:    {"ABCD1234"},
			filename.AttrFileName:        {"my_file.mkv"},
			filename.AttrSource:          {"BluRay"},
			filename.AttrReleaseGroup:    {"SubsPlease"},
			filename.AttrAnimeYear:       {"2019"},
			filename.AttrAnimeSeason:     {"2"},
			filename.AttrAnimeType:       {"TV"},
			filename.AttrVideoTerm:       {"H264"},
			filename.AttrVideoResolution: {"1080p"},
			filename.AttrAudioTerm:       {"AAC"},
		})

		score := Score(rec, d)
		assert.Equal(t, 100, TitleScore(score))
		assert.Equal(t, 3, tier2(score))
		assert.Equal(t, 1, tier3(score))
		assert.Equal(t, 6, tier4(score))
		assert.Equal(t, ((100+1)<<8)|(3<<5)|(1<<4)|6, score)
	})

	t.Run("a better title beats every lower tier combined", func(t *testing.T) {
		perfectTitle := testRecord(func(r *models.Subtitles) { r.Description = "" })
		stuffed := testRecord(func(r *models.Subtitles) {
			r.OriginalTitle = "Kimetsu no Yaiba Extra Long Title That Reduces Similarity"
			r.EnglishTitle, r.AltTitle = "", ""
			r.Description = "BluRay file ABCD SubsPlease 2019 S2 TV H264 1080p AAC"
		})
		d := decomposed(map[filename.Attribute][]string{
			filename.AttrAnimeTitle:      {"Kimetsu no Yaiba"},
			filename.AttrEpisodeNumber:   {"1"},
			filename.AttrFileChecksum:    {"ABCD"},
			filename.AttrFileName:        {"file.mkv"},
			filename.AttrSource:          {"BluRay"},
			filename.AttrReleaseGroup:    {"SubsPlease"},
			filename.AttrAnimeYear:       {"2019"},
			filename.AttrAnimeSeason:     {"S2"},
			filename.AttrAnimeType:       {"TV"},
			filename.AttrVideoTerm:       {"H264"},
			filename.AttrVideoResolution: {"1080p"},
			filename.AttrAudioTerm:       {"AAC"},
		})
		assert.Greater(t, Score(perfectTitle, d), Score(stuffed, d))
	})

	t.Run("tier ordering is preserved", func(t *testing.T) {
		base := map[filename.Attribute][]string{
			filename.AttrAnimeTitle:    {"Kimetsu no Yaiba"},
			filename.AttrEpisodeNumber: {"1"},
		}

		baseline := Score(testRecord(func(r *models.Subtitles) {
			r.Date = time.Time{}
		}), decomposed(base))

		d4 := decomposed(base)
		d4[filename.AttrVideoResolution] = []string{"1080p"}
		detail := Score(testRecord(func(r *models.Subtitles) {
			r.Description = "1080p"
			r.Date = time.Time{}
		}), d4)

		d3 := decomposed(base)
		d3[filename.AttrReleaseGroup] = []string{"SubsPlease"}
		group := Score(testRecord(func(r *models.Subtitles) {
			r.Description = "SubsPlease"
			r.Date = time.Time{}
		}), d3)

		d2 := decomposed(base)
		d2[filename.AttrSource] = []string{"BluRay"}
		source := Score(testRecord(func(r *models.Subtitles) {
			r.Description = "BluRay"
			r.Date = time.Time{}
		}), d2)

		assert.Greater(t, source, group)
		assert.Greater(t, group, detail)
		assert.Greater(t, detail, baseline)
	})
}

func TestScoreEpisodeRangeBoundaries(t *testing.T) {
	rec := testRecord(func(r *models.Subtitles) { r.Episode, r.ToEpisode = 5, 10 })
	for _, ep := range []string{"5", "7", "10"} {
		d := decomposed(map[filename.Attribute][]string{
			filename.AttrAnimeTitle:    {"Kimetsu no Yaiba"},
			filename.AttrEpisodeNumber: {ep},
		})
		assert.Positive(t, Score(rec, d), "episode %s", ep)
	}
}

func TestScoreName(t *testing.T) {
	rec := testRecord(func(r *models.Subtitles) {
		r.Description = "ABCD1234 SubsPlease 1080p"
	})

	score, err := ScoreName(rec, "[SubsPlease] Kimetsu no Yaiba - 01 (1080p) [ABCD1234].mkv")
	require.NoError(t, err)
	require.Positive(t, score)

	assert.GreaterOrEqual(t, tier2(score), 1)
	assert.Equal(t, 1, tier3(score))
	assert.GreaterOrEqual(t, tier4(score), 1)
}
