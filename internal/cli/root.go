// Package cli implements the goansi command surface: search, find,
// download and best. The commands only drive the ansi client and render
// its results; all catalog logic lives below them.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alvarorichard/Goansi/internal/ansi"
	"github.com/alvarorichard/Goansi/internal/config"
	"github.com/alvarorichard/Goansi/internal/util"
	"github.com/alvarorichard/Goansi/internal/version"
)

var (
	cfg *config.Config

	flagConfig  string
	flagDebug   bool
	flagBaseURL string
	flagTimeout int
)

// Execute runs the CLI. Operational failures exit 1; cobra handles usage
// errors itself.
func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, util.ErrorHandler(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "goansi",
		Short:         "Find and download anime subtitles from animesub.info",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			util.SetDebugMode(flagDebug)
			util.InitLogger()

			loaded, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			cfg = loaded
			if flagDebug {
				cfg.Logging.Debug = true
			}
			if flagBaseURL != "" {
				cfg.Site.BaseURL = flagBaseURL
			}
			if flagTimeout > 0 {
				cfg.Site.TimeoutSeconds = flagTimeout
			}
			util.Debugf("using %s with timeout %s", cfg.Site.BaseURL, time.Duration(cfg.Site.TimeoutSeconds)*time.Second)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default $HOME/.config/goansi/config.yaml)")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")
	pf.StringVar(&flagBaseURL, "base-url", "", "override the site base URL")
	pf.IntVar(&flagTimeout, "timeout", 0, "per-request timeout in seconds")

	root.AddCommand(
		newSearchCmd(),
		newFindCmd(),
		newDownloadCmd(),
		newBestCmd(),
	)
	return root
}

func newClient() *ansi.Client {
	return ansi.NewClient(cfg)
}
