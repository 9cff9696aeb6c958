package cli

import (
	"fmt"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/alvarorichard/Goansi/internal/models"
)

func newFindCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "find <filename>",
		Short: "Locate the best-matching subtitle record for a video file name",
		Long: "find decomposes the video file name, resolves the title through the\n" +
			"site catalog and prints the record with the highest fitness. It always\n" +
			"exits 0; no match prints null (JSON) or a notice (text).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()

			var (
				best    *models.Subtitles
				findErr error
			)
			run := func() {
				best, findErr = client.FindBest(cmd.Context(), args[0])
			}
			if asJSON {
				run()
			} else {
				_ = spinner.New().
					Title("Looking for the best match...").
					Type(spinner.Dots).
					Action(run).
					Run()
			}
			if findErr != nil {
				return findErr
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), best)
			}
			if best == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching subtitle found")
				return nil
			}
			renderRecords(cmd.OutOrStdout(), []models.Subtitles{*best})
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "print JSON instead of a table")
	return cmd
}
