package cli

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/alvarorichard/Goansi/internal/util"
)

func newDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <subtitle-id>",
		Short: "Download a subtitle archive by its record id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return errors.Errorf("invalid subtitle id %q", args[0])
			}

			client := newClient()
			handle, err := client.Download(cmd.Context(), id)
			if err != nil {
				return err
			}
			defer func() { _ = handle.Close() }()

			name := output
			if name == "" {
				name = handle.Filename
			}
			if name == "" {
				name = fmt.Sprintf("ansi_%d.zip", id)
			}

			out, err := os.Create(name)
			if err != nil {
				return errors.Wrapf(err, "creating %s", name)
			}

			m := newProgressModel(fmt.Sprintf("Downloading %s", name), handle.ContentLength)
			p := tea.NewProgram(m)

			var copyErr error
			go func() {
				_, copyErr = copyWithProgress(out, handle, m)
				p.Send(doneMsg{})
			}()
			if _, err := p.Run(); err != nil {
				util.Debugf("progress UI failed: %v", err)
			}

			if closeErr := out.Close(); copyErr == nil {
				copyErr = closeErr
			}
			if copyErr != nil {
				_ = os.Remove(name)
				return errors.Wrapf(copyErr, "writing %s", name)
			}

			fmt.Fprintln(cmd.OutOrStdout(), util.Success("saved "+name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: the served archive name)")
	return cmd
}
