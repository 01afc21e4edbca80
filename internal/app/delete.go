package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:     "delete <isbn>",
		Aliases: []string{"rm"},
		Short:   "Remove a book from your library",
		Example: `  minerva delete 9780140328721
  minerva delete 0140328726 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			b, err := findBook(s, args[0])
			if err != nil {
				return err
			}

			if !skipConfirm {
				printBook(cmd.OutOrStdout(), *b)
				if !confirm(cmd, fmt.Sprintf("Delete %q?", b.Title)) {
					warn("Cancelled")
					return nil
				}
			}

			s.Delete(b)
			if err := s.Commit(); err != nil {
				return fmt.Errorf("deleting %q: %w", b.Title, err)
			}
			ok(cmd.OutOrStdout(), "Deleted %q", b.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}
