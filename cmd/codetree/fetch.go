package main

import (
	"log/slog"

	"github.com/iacdata/codetree/internal/config"
	"github.com/iacdata/codetree/internal/fetch"
	"github.com/spf13/cobra"
)

func newFetchCmd(log *slog.Logger) *cobra.Command {
	var fromPage bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the IAC database archive and extract its workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			client := fetch.NewClient(log)

			archiveURL := cfg.DatabaseArchiveURL
			if fromPage {
				// Discover the archive link from the download page instead of
				// trusting the configured direct URL.
				archiveURL = ""
			}
			return client.FetchDatabase(cmd.Context(), archiveURL, cfg.DownloadPageURL, cfg.IACWorkbookPath)
		},
	}
	cmd.Flags().BoolVar(&fromPage, "from-page", false, "discover the archive link from the download page")
	return cmd
}
