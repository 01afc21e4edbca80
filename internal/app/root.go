package app

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/blackwell-systems/minerva/internal/cache"
	"github.com/blackwell-systems/minerva/internal/config"
	"github.com/blackwell-systems/minerva/internal/database"
	"github.com/blackwell-systems/minerva/internal/provider"
	"github.com/blackwell-systems/minerva/internal/tui"
	"github.com/blackwell-systems/minerva/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg      *config.Config
	logger   *zap.Logger
	store    *database.Store
	lookup   provider.Provider
	cacheMgr *cache.Manager

	flagNoColor       bool
	flagNoInteractive bool
	flagVerbose       bool
	flagConfig        string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minerva",
		Short: "Catalogue the books you own, want and have read",
		Long: `minerva keeps a personal book catalogue in a local SQLite database.

Books are looked up by ISBN, title or author against Open Library, or
entered by hand. Each record tracks whether you own it, want it or have
read it, and where it lives on your shelves.

Run 'minerva' with no arguments to open the interactive browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tui.ShouldUseTUI(cmd) {
				return runBrowser()
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive TUI mode")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.libraryrc)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)

		var err error
		if logger, err = newLogger(flagVerbose); err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}

		// init rewrites the config, so it must start even when the current
		// file does not validate.
		cfg, err = config.Load(flagConfig)
		if err != nil {
			if cmd.Name() != "init" {
				return fmt.Errorf("loading config: %w", err)
			}
			warn("Ignoring unreadable config: %v", err)
			cfg = config.Defaults()
		}

		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		lookup = provider.NewOpenLibrary(httpClient,
			provider.WithBaseURL(cfg.LookupBaseURL),
			provider.WithCoverBaseURL(cfg.CoverBaseURL),
			provider.WithUserAgent("minerva/"+appVersion),
		)
		cacheMgr = cache.New(cfg.CacheDir, httpClient)
		logger.Debug("config loaded",
			zap.String("path", config.ResolvePath(flagConfig)),
			zap.String("db_path", cfg.DBPath))
		return nil
	}

	cmd.AddCommand(
		newInitCmd(),
		newBrowseCmd(),
		newListCmd(),
		newLookupCmd(),
		newAddCmd(),
		newToggleCmd(),
		newLocateCmd(),
		newDeleteCmd(),
		newExportCmd(),
		newImportCmd(),
		newCoverCmd(),
		newCacheCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)

	return cmd
}

// Execute is the entry point called from main.
func Execute() {
	err := newRootCmd().Execute()
	closeStore()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// openStore opens the catalogue database on first use.
func openStore() (*database.Store, error) {
	if store != nil {
		return store, nil
	}
	s, err := database.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	store = s
	return store, nil
}

func closeStore() {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil && logger != nil {
		logger.Warn("closing database", zap.Error(err))
	}
	store = nil
}

// ok prints a green success line to w.
func ok(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading to w.
func header(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.CyanString(fmt.Sprintf(format, a...)))
}
