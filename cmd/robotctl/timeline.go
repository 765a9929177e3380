package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyrobots/robot-archive-bot/internal/ingest"
)

// newTimelineCmd creates the timeline command.
func newTimelineCmd() *cobra.Command {
	var pages, pageLength int

	cmd := &cobra.Command{
		Use:   "timeline [user]",
		Short: "Crawl a user's timeline for new robot announcements",
		Long: `Timeline walks the user's timeline from newest to oldest and
archives every robot announcement it has not seen before. Without an
argument it crawls the configured archive user.

The identity of each newly archived robot is printed one per line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			user := cfg.ArchiveUser
			if len(args) > 0 {
				user = args[0]
			}
			if pages <= 0 {
				pages = cfg.Pages
			}
			if pageLength <= 0 {
				pageLength = cfg.PageLength
			}

			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ingestor := ingest.NewIngestor(newUpstreamClient(cfg), db, verbose)

			idents, err := ingestor.CrawlTimeline(cmd.Context(), user, pageLength, pages)
			if err != nil {
				return err
			}

			for _, ident := range idents {
				fmt.Fprintln(cmd.OutOrStdout(), ident)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 0, "pages to crawl, defaults to PAGES")
	cmd.Flags().IntVar(&pageLength, "page-length", 0, "posts per page, defaults to PAGE_LENGTH")

	return cmd
}
