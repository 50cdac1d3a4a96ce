package main

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reconcile/internal/errmsg"
	"github.com/llehouerou/reconcile/internal/match"
	"github.com/llehouerou/reconcile/internal/scanner"
)

var errNoRoot = errors.New("no library root given and scan_root is not configured")

func newScanCommand(ctx *commandContext) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "List the artists and albums found in a library",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.scanRoot(args)
			if err != nil {
				return err
			}
			files, err := scanLibrary(cmd, root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			artists := map[string]int{}
			albums := map[string]bool{}
			for _, f := range files {
				artists[f.Artist]++
				albums[strings.ToLower(f.Artist)+"\x00"+strings.ToLower(f.Album)] = true
			}
			fmt.Fprintf(out, "%s files, %s artists, %s albums in %s\n",
				humanize.Comma(int64(len(files))), humanize.Comma(int64(len(artists))),
				humanize.Comma(int64(len(albums))), root)

			names := slices.SortedFunc(maps.Keys(artists), func(a, b string) int {
				return cmp.Or(cmp.Compare(artists[b], artists[a]), strings.Compare(a, b))
			})
			if top > 0 && len(names) > top {
				names = names[:top]
			}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{firstNonEmpty(name, "(missing)"), humanize.Comma(int64(artists[name]))})
			}
			printTable(out, []string{"ARTIST", "FILES"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 20, "Number of artists to list (0 for all)")
	return cmd
}

func (c *commandContext) scanRoot(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if c.config.ScanRoot != "" {
		return c.config.ScanRoot, nil
	}
	return "", errNoRoot
}

// scanLibrary scans root, reporting progress on stderr.
func scanLibrary(cmd *cobra.Command, root string) ([]match.ScannedFile, error) {
	progress := make(chan scanner.Progress, 16)
	done := make(chan struct{})
	errOut := cmd.ErrOrStderr()
	go func() {
		defer close(done)
		for p := range progress {
			fmt.Fprintf(errOut, "\r\033[K%s %s", p.Phase, humanize.Comma(int64(p.Current)))
			if p.Total > 0 {
				fmt.Fprintf(errOut, "/%s", humanize.Comma(int64(p.Total)))
			}
		}
		fmt.Fprint(errOut, "\r\033[K")
	}()

	files, err := scanner.Scan(cmd.Context(), root, scanner.Options{Progress: progress})
	<-done
	if err != nil {
		return nil, errmsg.Wrap(errmsg.OpScan, root, err)
	}
	return files, nil
}
