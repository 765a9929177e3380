package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyrobots/robot-archive-bot/internal/images"
)

// newImagesCmd creates the images command.
func newImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Download and thumbnail images for robots missing them",
		Long: `Images sweeps the archive for robots whose picture has not been
stored yet, downloads each one and saves it with a thumbnail to the
configured storage backend.`,
		Args: cobra.NoArgs,
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

			backend, err := newStorageBackend(cfg)
			if err != nil {
				return err
			}

			archiver := images.NewArchiver(db, backend, cfg.ThumbSize)

			archived, err := archiver.ArchiveMissing(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "archived %d images\n", archived)
			return nil
		},
	}

	return cmd
}
