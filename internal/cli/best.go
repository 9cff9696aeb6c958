package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/alvarorichard/Goansi/internal/filename"
	"github.com/alvarorichard/Goansi/internal/models"
	"github.com/alvarorichard/Goansi/internal/util"
)

func newBestCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "best <video-path>",
		Short: "Find, download and extract the best subtitle for a video file",
		Long: "best runs the whole pipeline: decompose the file name, resolve the\n" +
			"title through the catalog, rank the search results, download the best\n" +
			"record's archive and extract its best-matching member next to the video.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoPath := args[0]
			if _, err := os.Stat(videoPath); err != nil {
				return errors.Wrapf(err, "video file %s", videoPath)
			}

			d, err := filename.Decompose(filepath.Base(videoPath))
			if err != nil {
				return err
			}

			client := newClient()

			var (
				best    *models.Subtitles
				findErr error
			)
			_ = spinner.New().
				Title("Looking for the best match...").
				Type(spinner.Dots).
				Action(func() {
					best, findErr = client.FindBestDecomposed(cmd.Context(), d)
				}).
				Run()
			if findErr != nil {
				return findErr
			}
			if best == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching subtitle found")
				os.Exit(1)
			}
			util.Infof("matched record %d: %s (%s)", best.ID, best.OriginalTitle, best.EpisodeLabel())

			var (
				extracted  models.ExtractedSubtitle
				extractErr error
			)
			_ = spinner.New().
				Title("Downloading and extracting...").
				Type(spinner.Dots).
				Action(func() {
					extracted, extractErr = client.DownloadAndExtractDecomposed(cmd.Context(), d, best.ID)
				}).
				Run()
			if extractErr != nil {
				return extractErr
			}

			name := output
			if name == "" {
				name = subtitlePath(videoPath, extracted.Filename)
			}
			if err := os.WriteFile(name, extracted.Data, 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", name)
			}

			fmt.Fprintln(cmd.OutOrStdout(), util.Success("saved "+name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: video name with the subtitle's extension)")
	return cmd
}

// subtitlePath keeps the video's stem and borrows the extracted member's
// extension, so players pick the subtitle up automatically.
func subtitlePath(videoPath, extractedName string) string {
	stem := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	ext := filepath.Ext(extractedName)
	if ext == "" {
		ext = ".srt"
	}
	return stem + ext
}
