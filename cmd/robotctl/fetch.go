package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tinyrobots/robot-archive-bot/internal/ingest"
)

// newFetchCmd creates the fetch command.
func newFetchCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "fetch [file]",
		Short: "Fetch posts by id and archive the robots they announce",
		Long: `Fetch reads post ids from the given file, or from standard input
when no file is named, looks each post up and archives every robot it
announces. Ids already in the archive are skipped, so feeding the same
list twice is safe.

The identity of each newly archived robot is printed one per line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := readIDs(args)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return fmt.Errorf("no post ids to fetch")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ingestor := ingest.NewIngestor(newUpstreamClient(cfg), db, verbose)

			idents, err := ingestor.FetchAll(cmd.Context(), ids, batchSize)
			if err != nil {
				return err
			}

			for _, ident := range idents {
				fmt.Fprintln(cmd.OutOrStdout(), ident)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "ids per batch, 0 fetches everything at once")

	return cmd
}

// readIDs parses whitespace-separated post ids.
func readIDs(args []string) ([]uint64, error) {
	var r io.Reader = os.Stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var ids []uint64
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		word := scanner.Text()
		id, err := strconv.ParseUint(word, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid post id %q: %w", word, err)
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
