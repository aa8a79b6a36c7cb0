package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/praetorian-inc/docsift"
	"github.com/praetorian-inc/docsift/pkg/tld"
	"github.com/spf13/cobra"
)

var (
	tldsFile   string
	tldsURL    string
	tldsMaxAge time.Duration
	tldsForce  bool
)

var tldsCmd = &cobra.Command{
	Use:   "tlds",
	Short: "Maintain the TLD validity list",
	Long:  "Commands for refreshing and inspecting the cached IANA TLD list that backs domain validation",
}

var tldsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Download the TLD list if it is missing or stale",
	RunE:  runTLDsRefresh,
}

var tldsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached TLD list",
	RunE:  runTLDsShow,
}

func init() {
	tldsCmd.AddCommand(tldsRefreshCmd)
	tldsCmd.AddCommand(tldsShowCmd)
	tldsCmd.PersistentFlags().StringVar(&tldsFile, "tld-file", "", "Path to the TLD list snapshot (default: user cache directory)")
	tldsRefreshCmd.Flags().StringVar(&tldsURL, "tld-url", tld.DefaultSourceURL, "URL the TLD list is downloaded from")
	tldsRefreshCmd.Flags().DurationVar(&tldsMaxAge, "tld-max-age", tld.DefaultMaxAge, "Staleness threshold for the snapshot")
	tldsRefreshCmd.Flags().BoolVar(&tldsForce, "force", false, "Refresh even if the snapshot is fresh")
}

func tldsPath() string {
	if tldsFile != "" {
		return tldsFile
	}
	return docsift.DefaultTLDCachePath()
}

func runTLDsRefresh(cmd *cobra.Command, args []string) error {
	cache := tld.NewCache(tld.Config{
		Path:      tldsPath(),
		SourceURL: tldsURL,
		MaxAge:    tldsMaxAge,
	})

	if !tldsForce {
		if info, err := os.Stat(cache.Path()); err == nil {
			age := time.Now().UTC().Sub(info.ModTime().UTC())
			if age <= tldsMaxAge {
				fmt.Fprintf(cmd.OutOrStdout(), "TLD list is fresh (age %s); use --force to refresh anyway\n",
					age.Round(time.Minute))
				return nil
			}
		}
	}

	if err := cache.Refresh(context.Background()); err != nil {
		return fmt.Errorf("refreshing TLD list: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %d TLDs to %s\n", cache.Len(), cache.Path())
	}
	return nil
}

func runTLDsShow(cmd *cobra.Command, args []string) error {
	cache := tld.NewCache(tld.Config{Path: tldsPath()})
	if err := cache.Load(); err != nil {
		return fmt.Errorf("loading TLD list: %w", err)
	}

	out := cmd.OutOrStdout()
	if !quiet {
		fmt.Fprintf(out, "# %d TLDs cached at %s\n", cache.Len(), cache.Path())
	}
	for _, name := range cache.TLDs() {
		fmt.Fprintln(out, name)
	}
	return nil
}
