package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reconcile/internal/errmsg"
)

var errNoDest = errors.New("no destination given and dest_root is not configured")

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var (
		dest string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "preview <report>",
		Short: "Compute the proposed path of every matched file",
		Long: "Compute {artist}/{album} (year)/{NN - title} paths under the destination\n" +
			"root and store them in the report. Files are not touched.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			rep, err := loadReport(path)
			if err != nil {
				return err
			}

			dest = firstNonEmpty(dest, ctx.config.DestRoot, rep.ScanRoot)
			if dest == "" {
				return errNoDest
			}

			previews := rep.BuildPreviews(dest)
			if err := rep.Save(path); err != nil {
				return errmsg.Wrap(errmsg.OpReportSave, path, err)
			}

			out := cmd.OutOrStdout()
			changed := 0
			for _, p := range previews {
				if !p.Changed {
					if all {
						fmt.Fprintf(out, "%s %s\n", subtleStyle.Render("="), p.OriginalPath)
					}
					continue
				}
				changed++
				fmt.Fprintf(out, "%s\n  %s %s\n", p.OriginalPath, okStyle.Render("->"), p.ProposedPath)
			}
			fmt.Fprintf(out, "%s of %s files would move\n",
				humanize.Comma(int64(changed)), humanize.Comma(int64(len(previews))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Destination root (defaults to dest_root, then the scan root)")
	cmd.Flags().BoolVar(&all, "all", false, "Also list files that would not move")
	return cmd
}
