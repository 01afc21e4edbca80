package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/minerva/internal/catalog"
	"github.com/blackwell-systems/minerva/internal/isbn"
	"github.com/spf13/cobra"
)

// errDuplicate marks an add rejected because the book is already stored.
var errDuplicate = errors.New("already in your library")

func newAddCmd() *cobra.Command {
	var (
		b  catalog.Book
		id string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book by hand",
		Long: `Add a book without looking it up. Title and author are required.

With --isbn the identifier is checked and stored in ISBN-13 form; without
it, a book with the same author and title counts as a duplicate.`,
		Example: `  minerva add --title "Fantastic Mr Fox" --author "Roald Dahl"
  minerva add --title "Matilda" --author "Roald Dahl" --isbn 0142410373 --location "Shelf 2"
  minerva add --title "The BFG" --author "Roald Dahl" --want --own=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id != "" {
				id13, err := isbn.To13(id)
				if err != nil {
					return err
				}
				b.ISBN = id13
			}
			b.Title = strings.TrimSpace(b.Title)
			b.Author = strings.TrimSpace(b.Author)
			b.Location = strings.TrimSpace(b.Location)

			s, err := openStore()
			if err != nil {
				return err
			}
			if err := addToLibrary(s, &b); err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "Added %q by %s", b.Title, b.Author)
			return nil
		},
	}

	cmd.Flags().StringVar(&b.Title, "title", "", "Book title (required)")
	cmd.Flags().StringVar(&b.Author, "author", "", "Book author (required)")
	cmd.Flags().StringVar(&id, "isbn", "", "ISBN-10 or ISBN-13")
	cmd.Flags().StringVar(&b.Location, "location", "", "Where the book is kept")
	cmd.Flags().BoolVar(&b.Want, "want", false, "Mark as wanted")
	cmd.Flags().BoolVar(&b.Read, "read", false, "Mark as read")
	cmd.Flags().BoolVar(&b.Own, "own", true, "Mark as owned")

	return cmd
}

// addToLibrary rejects duplicates and invalid records, then stores b.
// Duplicates are matched by ISBN when b has one, else by author and title.
func addToLibrary(s catalog.Store, b *catalog.Book) error {
	if err := catalog.Validate(*b); err != nil {
		return err
	}

	var (
		existing *catalog.Book
		err      error
	)
	if b.ISBN != "" {
		existing, err = s.Exists(b.ISBN)
	} else {
		existing, err = s.ExistsByAuthorTitle(b.Author, b.Title)
	}
	if err != nil {
		return fmt.Errorf("checking for duplicates: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("%q is %w", existing.Title, errDuplicate)
	}

	s.Add(b)
	if err := s.Commit(); err != nil {
		return fmt.Errorf("saving %q: %w", b.Title, err)
	}
	return nil
}
