package cli

import (
	"fmt"

	"github.com/charmbracelet/huh/spinner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/alvarorichard/Goansi/internal/ansi"
	"github.com/alvarorichard/Goansi/internal/models"
)

func newSearchCmd() *cobra.Command {
	var (
		sortKey  string
		titleKey string
		limit    int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Search the catalog for subtitle records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sortBy, err := models.ParseSortBy(sortKey)
			if err != nil {
				return err
			}
			titleType, err := models.ParseTitleType(titleKey)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") && limit <= 0 {
				return errors.Errorf("invalid limit %d: must be positive", limit)
			}

			client := newClient()
			opts := ansi.SearchOptions{
				SortBy:    sortBy,
				TitleType: titleType,
				PageLimit: limit,
			}
			if limit == 0 {
				opts.PageLimit = cfg.Search.PageLimit
			}

			var (
				results   []models.Subtitles
				searchErr error
			)
			run := func() {
				results, searchErr = client.SearchAll(cmd.Context(), args[0], opts)
			}
			if asJSON {
				run()
			} else {
				_ = spinner.New().
					Title(fmt.Sprintf("Searching for %q...", args[0])).
					Type(spinner.Dots).
					Action(run).
					Run()
			}
			if searchErr != nil {
				return searchErr
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), results)
			}
			renderRecords(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().StringVar(&sortKey, "sort", string(models.SortByFitness), "result order: traf, datad, pobrn or ocen")
	cmd.Flags().StringVar(&titleKey, "type", string(models.TitleTypeOriginal), "title column to match: org, en, pl or jp")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of result pages to fetch (0 = all)")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "print JSON instead of a table")
	return cmd
}
