package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the file cache",
	Long: `Fetched files are cached on disk so reopening them is instant and does
not count against the API rate limit. Disable with cache.enabled = false.`,
	RunE: runCacheStats,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached file",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func cacheAdmin() (CacheAdmin, error) {
	r, err := loadRuntime()
	if err != nil {
		return nil, err
	}
	if r.Cache == nil {
		return nil, errors.New("the file cache is disabled")
	}
	return r.Cache, nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	cache, err := cacheAdmin()
	if err != nil {
		return err
	}
	entries, size, err := cache.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading cache: %w", err)
	}
	cmd.Printf("%s files, %s\n", humanize.Comma(int64(entries)), humanize.Bytes(uint64(max(size, 0))))
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	cache, err := cacheAdmin()
	if err != nil {
		return err
	}
	if err := cache.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	cmd.Println("✓ Cache cleared")
	return nil
}
