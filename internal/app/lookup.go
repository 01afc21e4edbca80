package app

import (
	"fmt"
	"io"

	"github.com/blackwell-systems/minerva/internal/isbn"
	"github.com/blackwell-systems/minerva/internal/provider"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	var (
		by      string
		jsonOut bool
		addN    int
		addISBN string
	)

	cmd := &cobra.Command{
		Use:   "lookup <query>",
		Short: "Look up books on Open Library",
		Long: `Look up a book by ISBN, or search by title or author.

Without --by, a query that is a valid ISBN is looked up directly and
anything else is searched as a title. Only the first page of search
results is shown.

--add N adds the Nth result to your library. The stored ISBN is the
first candidate that converts to ISBN-13, or the one given with --isbn.`,
		Example: `  minerva lookup 0140328726
  minerva lookup "fantastic mr fox" --by title
  minerva lookup dahl --by author --json
  minerva lookup 9780140328721 --add 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]

			field, err := lookupField(by, query)
			if err != nil {
				return err
			}
			res, err := runLookup(lookup, field, query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if addN > 0 {
				return addLookupResult(out, res, addN, addISBN)
			}

			if jsonOut {
				return writeJSON(out, res)
			}

			header(out, "── %d found for %q by %s (showing %d)", res.NumFound, query, field, len(res.Entries))
			for i, e := range res.Entries {
				id := e.PreferredISBN()
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(out, "  %3d. %-13s  %s %s\n",
					i+1,
					color.WhiteString(id),
					e.Title,
					color.HiBlackString("by "+e.Author),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "Search field: isbn, title or author")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&addN, "add", 0, "Add the Nth result to your library")
	cmd.Flags().StringVar(&addISBN, "isbn", "", "ISBN to store with --add")
	_ = cmd.RegisterFlagCompletionFunc("by", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"isbn", "title", "author"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// lookupField resolves --by, guessing from the query when it is empty.
func lookupField(by, query string) (provider.Field, error) {
	if by != "" {
		return provider.ParseField(by)
	}
	if isbn.Valid(query) {
		return provider.FieldISBN, nil
	}
	return provider.FieldTitle, nil
}

// runLookup performs one lookup. ISBN lookups return a single-entry result.
func runLookup(p provider.Provider, field provider.Field, query string) (provider.Result, error) {
	if field == provider.FieldISBN {
		e, err := p.LookupByISBN(query)
		if err != nil {
			return provider.Result{}, fmt.Errorf("looking up %q: %w", query, err)
		}
		return provider.Result{NumFound: 1, Entries: []provider.Entry{e}}, nil
	}
	res, err := p.LookupByQuery(query, field)
	if err != nil {
		return provider.Result{}, fmt.Errorf("searching %s for %q: %w", field, query, err)
	}
	return res, nil
}

func addLookupResult(w io.Writer, res provider.Result, n int, id string) error {
	if n > len(res.Entries) {
		return fmt.Errorf("--add %d: only %d results", n, len(res.Entries))
	}
	e := res.Entries[n-1]

	if id == "" {
		id = e.PreferredISBN()
	} else {
		id13, err := isbn.To13(id)
		if err != nil {
			return err
		}
		id = id13
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	b := e.ToBook(id)
	if err := addToLibrary(s, &b); err != nil {
		return err
	}
	ok(w, "Added %q by %s", b.Title, b.Author)
	return nil
}
