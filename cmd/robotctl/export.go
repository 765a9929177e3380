package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// newExportCmd creates the export command.
func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the post ids of every archived robot",
		Long: `Export writes the id of every post in the archive, one per line,
to the given file or to standard output. The output feeds straight back
into fetch, which makes it the backup and restore format for the
archive's provenance.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ids, err := db.PostIDs(cmd.Context())
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if len(args) > 0 {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			w := bufio.NewWriter(out)
			for _, id := range ids {
				fmt.Fprintln(w, id)
			}
			return w.Flush()
		},
	}

	return cmd
}
