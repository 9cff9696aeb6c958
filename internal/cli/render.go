package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/alvarorichard/Goansi/internal/models"
)

var (
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
	tableHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6366F1")).Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderRecords prints subtitle records as a lipgloss table.
func renderRecords(w io.Writer, subs []models.Subtitles) {
	if len(subs) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers("ID", "EP", "TITLE", "FORMAT", "AUTHOR", "ADDED", "DL", "RATING")

	for _, s := range subs {
		t.Row(
			strconv.Itoa(s.ID),
			s.EpisodeLabel(),
			mainTitle(s),
			s.Format,
			s.Author,
			dateLabel(s),
			strconv.Itoa(s.Downloads),
			ratingLabel(s.Rating),
		)
	}
	fmt.Fprintln(w, t)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mainTitle(s models.Subtitles) string {
	if s.OriginalTitle != "" {
		return s.OriginalTitle
	}
	if s.EnglishTitle != "" {
		return s.EnglishTitle
	}
	return s.AltTitle
}

func dateLabel(s models.Subtitles) string {
	if s.Date.IsZero() {
		return ""
	}
	return s.Date.Format("2006-01-02")
}

// ratingLabel renders the vote distribution as bad/average/very-good
// percents, or a dash when nobody voted.
func ratingLabel(r models.SubtitlesRating) string {
	if !r.HasVotes() {
		return "-"
	}
	return fmt.Sprintf("%d/%d/%d", r.Bad, r.Average, r.VeryGood)
}
