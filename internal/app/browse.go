package app

import (
	"fmt"

	"github.com/blackwell-systems/minerva/internal/booklist"
	"github.com/blackwell-systems/minerva/internal/tui"
	"github.com/spf13/cobra"
)

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive library browser",
		Long: `Open the interactive browser. From there you can filter the catalogue,
switch between scopes, toggle flags, set locations, delete books, look up
new books on Open Library and add books by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !tui.ShouldUseTUI(cmd) {
				return fmt.Errorf("browse needs an interactive terminal; use 'minerva list' instead")
			}
			return runBrowser()
		},
	}
	return cmd
}

func runBrowser() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	books, err := s.All()
	if err != nil {
		return fmt.Errorf("loading catalogue: %w", err)
	}

	deps := tui.Deps{
		Store:    s,
		Provider: lookup,
		Covers:   cacheMgr,
	}
	return tui.RunBrowser(deps, booklist.New(books))
}
