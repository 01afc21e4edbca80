package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/minerva/internal/isbn"
	"github.com/blackwell-systems/minerva/internal/provider"
	"github.com/blackwell-systems/minerva/internal/tui"
	"github.com/blackwell-systems/minerva/internal/util"
	"github.com/spf13/cobra"
)

func newCoverCmd() *cobra.Command {
	var size string

	cmd := &cobra.Command{
		Use:   "cover <isbn>",
		Short: "Download a book cover into the cache",
		Long: `Download the cover image for an ISBN into the cache directory and print
its path. On Kitty, iTerm2 and WezTerm the cover is also shown inline.`,
		Example: `  minerva cover 9780140328721
  minerva cover 0140328726 --size L`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := isbn.To13(args[0])
			if err != nil {
				return err
			}
			sz := provider.CoverSize(size).Normalize()

			url := lookup.CoverURL(provider.Entry{ISBNs: []string{id}}, sz)
			path, err := cacheMgr.FetchCover(url, id, string(sz))
			if err != nil {
				return fmt.Errorf("cover for %s: %w", id, err)
			}

			if util.IsTTY() && !flagNoInteractive {
				if img := tui.RenderCover(path, tui.DetectImageProtocol(), 20); img != "" {
					fmt.Fprintln(cmd.OutOrStdout(), img)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&size, "size", string(provider.CoverMedium), "Cover size: S, M or L")

	return cmd
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local cover cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show cache statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				info, err := cacheMgr.Info()
				if err != nil {
					return err
				}
				header(cmd.OutOrStdout(), "Cache: %s", cacheMgr.Dir())
				printField(cmd.OutOrStdout(), "covers", fmt.Sprintf("%d", info.Covers))
				printField(cmd.OutOrStdout(), "size", humanBytes(info.Bytes))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached cover",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				info, err := cacheMgr.Info()
				if err != nil {
					return err
				}
				if info.Covers == 0 {
					if _, err := os.Stat(cacheMgr.Dir()); os.IsNotExist(err) {
						ok(cmd.OutOrStdout(), "Cache is already empty")
						return nil
					}
				}
				if err := cacheMgr.Clear(); err != nil {
					return fmt.Errorf("clearing cache: %w", err)
				}
				ok(cmd.OutOrStdout(), "Cleared %d covers (%s)", info.Covers, humanBytes(info.Bytes))
				return nil
			},
		},
	)

	return cmd
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for n := n / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
