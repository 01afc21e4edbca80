package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/blackwell-systems/minerva/internal/catalog"
	"github.com/blackwell-systems/minerva/internal/isbn"
	"github.com/blackwell-systems/minerva/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExportCmd() *cobra.Command {
	var withHTML bool

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the catalogue as YAML",
		Long: `Write every catalogue record as YAML to file, or to stdout when no file
is given. --html also writes index.html into the cache directory, showing
covers that have been downloaded.`,
		Example: `  minerva export > books.yml
  minerva export books.yml --html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			books, err := s.All()
			if err != nil {
				return fmt.Errorf("loading catalogue: %w", err)
			}

			if len(args) == 0 {
				data, err := catalog.Marshal(books)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			} else {
				if err := catalog.Save(args[0], books); err != nil {
					return err
				}
				ok(cmd.OutOrStdout(), "Exported %d books to %s", len(books), args[0])
			}

			if withHTML {
				path, err := cacheMgr.GenerateHTMLIndex(books)
				if err != nil {
					return err
				}
				ok(cmd.OutOrStdout(), "Wrote %s", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withHTML, "html", false, "Also write an HTML index into the cache directory")

	return cmd
}

func newImportCmd() *cobra.Command {
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add books from an exported YAML catalogue",
		Long: `Add the books in file that are not already in your library. Books are
matched by ISBN, or by author and title when they have none. Records
without a title or author are skipped.

The database is copied to <db_path>.bak first unless --no-backup is set.`,
		Example: "  minerva import books.yml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}
			incoming, err := catalog.Load(args[0])
			if err != nil {
				return err
			}

			if !noBackup {
				if _, err := os.Stat(cfg.DBPath); err == nil {
					backup := cfg.DBPath + ".bak"
					if err := util.CopyFile(cfg.DBPath, backup); err != nil {
						return fmt.Errorf("backing up database: %w", err)
					}
					logger.Debug("database backed up", zap.String("path", backup))
				}
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			existing, err := s.All()
			if err != nil {
				return fmt.Errorf("loading catalogue: %w", err)
			}

			valid := make([]catalog.Book, 0, len(incoming))
			for _, b := range incoming {
				b.ID = 0
				b.Title = strings.TrimSpace(b.Title)
				b.Author = strings.TrimSpace(b.Author)
				b.Location = strings.TrimSpace(b.Location)
				if id13, err := isbn.To13(b.ISBN); err == nil {
					b.ISBN = id13
				}
				if err := catalog.Validate(b); err != nil {
					warn("Skipping %q by %q: %v", b.Title, b.Author, err)
					continue
				}
				valid = append(valid, b)
			}

			merged, added := catalog.Merge(existing, valid)
			for i := len(merged) - added; i < len(merged); i++ {
				s.Add(&merged[i])
			}
			if err := s.Commit(); err != nil {
				return fmt.Errorf("importing %s: %w", args[0], err)
			}
			ok(cmd.OutOrStdout(), "Imported %d books (%d already present)", added, len(valid)-added)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Do not copy the database before importing")

	return cmd
}
