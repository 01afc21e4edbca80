package app

import (
	"fmt"

	"github.com/blackwell-systems/minerva/internal/booklist"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var (
		owned   bool
		read    bool
		wanted  bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:     "list [term]",
		Aliases: []string{"ls"},
		Short:   "List books in the catalogue",
		Long: `List catalogue records, optionally narrowed by a search term and a scope.

The term matches ISBN, title, author or location, ignoring case.`,
		Example: `  minerva list
  minerva list dahl --read
  minerva list --wanted --json`,
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

			l := booklist.New(books)
			switch {
			case owned:
				l.SetScope(booklist.ScopeOwned)
			case read:
				l.SetScope(booklist.ScopeRead)
			case wanted:
				l.SetScope(booklist.ScopeWanted)
			}
			if len(args) > 0 {
				l.SetFilter(args[0])
			}
			view := l.View()

			out := cmd.OutOrStdout()
			if jsonOut {
				results := make([]bookJSON, 0, len(view))
				for _, b := range view {
					results = append(results, toJSON(b))
				}
				return writeJSON(out, results)
			}

			if len(view) == 0 {
				fmt.Fprintln(out, "No books found.")
				return nil
			}
			header(out, "── %s  (%d of %d books)", l.Scope(), len(view), l.Len())
			for _, b := range view {
				printBookLine(out, b)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&owned, "owned", false, "Only books you own")
	cmd.Flags().BoolVar(&read, "read", false, "Only books you have read")
	cmd.Flags().BoolVar(&wanted, "wanted", false, "Only books you want")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("owned", "read", "wanted")

	return cmd
}
