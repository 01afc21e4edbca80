package app

import (
	"fmt"

	"github.com/blackwell-systems/minerva/internal/booklist"
	"github.com/blackwell-systems/minerva/internal/catalog"
	"github.com/spf13/cobra"
)

func newToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "toggle <isbn> <own|want|read>",
		Short:     "Flip the own, want or read flag of a book",
		Example:   "  minerva toggle 9780140328721 read",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"own", "want", "read"},
		RunE: func(cmd *cobra.Command, args []string) error {
			flag, err := booklist.ParseFlag(args[1])
			if err != nil {
				return err
			}
			b, err := editBook(args[0], func(l *booklist.List) (*catalog.Book, error) {
				return l.ToggleFlag(0, flag)
			})
			if err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "%s: %s", b.Title, flagLabels(*b))
			return nil
		},
	}
	return cmd
}

func newLocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate <isbn> <location>",
		Short: "Set where a book is kept",
		Long:  `Set the location of a book. An empty location ("") clears it.`,
		Example: `  minerva locate 9780140328721 "Study, shelf 3"
  minerva locate 9780140328721 ""`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := editBook(args[0], func(l *booklist.List) (*catalog.Book, error) {
				return l.EditField(0, booklist.FieldLocation, args[1])
			})
			if err != nil {
				return err
			}
			if b.Location == "" {
				ok(cmd.OutOrStdout(), "%s: location cleared", b.Title)
			} else {
				ok(cmd.OutOrStdout(), "%s: %s", b.Title, b.Location)
			}
			return nil
		},
	}
	return cmd
}

// editBook applies change to the book identified by id through a
// single-record projection and persists the result.
func editBook(id string, change func(*booklist.List) (*catalog.Book, error)) (*catalog.Book, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	found, err := findBook(s, id)
	if err != nil {
		return nil, err
	}

	b, err := change(booklist.New([]catalog.Book{*found}))
	if err != nil {
		return nil, err
	}
	s.Update(b)
	if err := s.Commit(); err != nil {
		return nil, fmt.Errorf("saving %q: %w", b.Title, err)
	}
	return b, nil
}
