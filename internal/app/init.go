package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/minerva/internal/config"
	"github.com/blackwell-systems/minerva/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		dbPath   string
		cacheDir string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file and create the catalogue database",
		Long: `Write ~/.libraryrc (or the file given by --config) and create an empty
catalogue database at the configured location.

The config file holds key=value lines:
  db_path=~/.local/share/minerva/library.db
  lookup_base_url=https://openlibrary.org
  cover_base_url=https://covers.openlibrary.org
  cache_dir=~/.cache/minerva
  http_timeout=10s`,
		Example: `  # Use the defaults
  minerva init

  # Keep the catalogue somewhere else
  minerva init --db-path ~/Documents/books.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ResolvePath(flagConfig)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if dbPath != "" {
				cfg.DBPath = util.ExpandHome(dbPath)
			}
			if cacheDir != "" {
				cfg.CacheDir = util.ExpandHome(cacheDir)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := config.Save(flagConfig, cfg); err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "Wrote %s", path)

			if _, err := openStore(); err != nil {
				return fmt.Errorf("creating database: %w", err)
			}
			ok(cmd.OutOrStdout(), "Catalogue ready at %s", cfg.DBPath)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintf(out, "  %s\n", color.CyanString("minerva lookup 9780140328721 --add 1"))
			fmt.Fprintf(out, "  %s\n", color.CyanString("minerva"))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db-path", "", "Catalogue database location")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cover cache directory")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
