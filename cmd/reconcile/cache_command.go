package main

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reconcile/internal/errmsg"
	"github.com/llehouerou/reconcile/internal/metadata"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the MusicBrainz response cache",
	}
	cmd.AddCommand(newCacheStatsCommand(ctx))
	cmd.AddCommand(newCacheCleanCommand(ctx))
	return cmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			stats, err := cache.Stats(cmd.Context())
			if err != nil {
				return errmsg.Wrap(errmsg.OpCacheStats, "", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", headerStyle.Render("path"), ctx.config.GetCacheConfig().Path)
			fmt.Fprintf(out, "%s  %s (%s expired)\n", headerStyle.Render("entries"),
				humanize.Comma(int64(stats.Entries)), humanize.Comma(int64(stats.Expired)))
			kinds := slices.SortedFunc(maps.Keys(stats.ByKind), func(a, b metadata.Kind) int {
				return cmp.Compare(a, b)
			})
			for _, k := range kinds {
				fmt.Fprintf(out, "  %-10s %s\n", k, humanize.Comma(int64(stats.ByKind[k])))
			}
			if !stats.Oldest.IsZero() {
				fmt.Fprintf(out, "%s  %s\n", headerStyle.Render("oldest"), humanize.Time(stats.Oldest))
				fmt.Fprintf(out, "%s  %s\n", headerStyle.Render("newest"), humanize.Time(stats.Newest))
			}
			return nil
		},
	}
}

func newCacheCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			n, err := cache.CleanExpired(cmd.Context())
			if err != nil {
				return errmsg.Wrap(errmsg.OpCacheClean, "", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s expired entries\n", humanize.Comma(n))
			return nil
		},
	}
}
