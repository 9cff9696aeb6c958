package ansi

import (
	"bytes"
	"context"
	"io"
	"path"
	"strconv"

	"github.com/mholt/archives"
	"github.com/pkg/errors"

	"github.com/alvarorichard/Goansi/internal/filename"
	"github.com/alvarorichard/Goansi/internal/fitness"
	"github.com/alvarorichard/Goansi/internal/models"
	"github.com/alvarorichard/Goansi/internal/util"
)

// DownloadAndExtract downloads the ZIP archive for a subtitle id and
// returns the inner file that best matches the request's video file name.
func (c *Client) DownloadAndExtract(ctx context.Context, name string, id int) (models.ExtractedSubtitle, error) {
	d, err := filename.Decompose(name)
	if err != nil {
		return models.ExtractedSubtitle{}, err
	}
	return c.DownloadAndExtractDecomposed(ctx, d, id)
}

// DownloadAndExtractDecomposed is DownloadAndExtract for an already
// decomposed name. Every archive entry is scored as a synthetic record
// through the same fitness function that ranked the search results; ties
// keep archive order, and when nothing scores the first entry is returned
// as a fallback.
func (c *Client) DownloadAndExtractDecomposed(ctx context.Context, d filename.Decomposed, id int) (models.ExtractedSubtitle, error) {
	handle, err := c.Download(ctx, id)
	if err != nil {
		return models.ExtractedSubtitle{}, err
	}
	defer func() { _ = handle.Close() }()

	data, err := io.ReadAll(handle)
	if err != nil {
		return models.ExtractedSubtitle{}, errors.Wrapf(err, "reading archive for subtitle %d", id)
	}

	entries, err := readZip(ctx, data)
	if err != nil {
		return models.ExtractedSubtitle{}, errors.Wrapf(err, "archive for subtitle %d", id)
	}
	if len(entries) == 0 {
		return models.ExtractedSubtitle{}, ErrEmptyArchive
	}

	bestIdx, bestScore := 0, 0
	for i, entry := range entries {
		if score := fitness.Score(entryRecord(entry.name), d); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestScore == 0 {
		util.Warnf("no archive entry matched, falling back to the first entry %q", entries[0].name)
	}

	chosen := entries[bestIdx]
	return models.ExtractedSubtitle{Filename: chosen.name, Data: chosen.data}, nil
}

type zipEntry struct {
	name string
	data []byte
}

// readZip lists and fully reads the archive members. Only ZIP is served by
// the site.
func readZip(ctx context.Context, data []byte) ([]zipEntry, error) {
	var entries []zipEntry
	err := archives.Zip{}.Extract(ctx, bytes.NewReader(data), func(ctx context.Context, f archives.FileInfo) error {
		if f.IsDir() {
			return nil
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		content, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		entries = append(entries, zipEntry{name: path.Base(f.NameInArchive), data: content})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// entryRecord synthesizes a record from an archive entry name so the entry
// can run through the fitness scorer: the entry's own decomposition
// provides the title and episode range, the raw name doubles as the
// description so checksum, resolution and group tokens stay matchable.
func entryRecord(name string) models.Subtitles {
	rec := models.Subtitles{OriginalTitle: name, Description: name}
	d, err := filename.Decompose(name)
	if err != nil {
		return rec
	}
	if title := d.First(filename.AttrAnimeTitle); title != "" {
		rec.OriginalTitle = title
	}
	if eps := d[filename.AttrEpisodeNumber]; len(eps) > 0 {
		if from, err := strconv.Atoi(eps[0]); err == nil && from > 0 {
			rec.Episode, rec.ToEpisode = from, from
			if last, err := strconv.Atoi(eps[len(eps)-1]); err == nil && last > from {
				rec.ToEpisode = last
			}
		}
	}
	return rec
}
