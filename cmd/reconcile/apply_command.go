package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reconcile/internal/errmsg"
	"github.com/llehouerou/reconcile/internal/organize"
)

var errNoPreviews = errors.New("report has no previews, run preview first")

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun    bool
		writeTags bool
	)

	cmd := &cobra.Command{
		Use:   "apply <report>",
		Short: "Rename files to their previewed paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			rep, err := loadReport(path)
			if err != nil {
				return err
			}
			if len(rep.Previews) == 0 {
				return errNoPreviews
			}

			renameCfg := ctx.config.GetRenameConfig()
			if !cmd.Flags().Changed("write-tags") {
				writeTags = renameCfg.WriteTags
			}
			opts := organize.Options{
				DryRun:           dryRun,
				ScanRoot:         rep.ScanRoot,
				CleanupEmptyDirs: *renameCfg.CleanupEmptyDirs,
				MaxCleanupDepth:  renameCfg.MaxCleanupDepth,
			}
			if writeTags {
				opts.Tags = rep.TagUpdates()
			}
			exec := organize.NewExecutor(afero.NewOsFs(), opts)
			summary := exec.Execute(cmd.Context(), rep.Previews)

			out := cmd.OutOrStdout()
			for _, r := range summary.Results {
				switch r.Status {
				case organize.StatusRenamed:
					fmt.Fprintf(out, "%s %s\n", okStyle.Render("renamed"), firstNonEmpty(r.FinalPath, r.ProposedPath))
				case organize.StatusDryRun:
					fmt.Fprintf(out, "%s %s\n  -> %s\n", subtleStyle.Render("would rename"), r.OriginalPath,
						firstNonEmpty(r.FinalPath, r.ProposedPath))
				case organize.StatusFailed:
					fmt.Fprintf(out, "%s %s\n", errorStyle.Render("failed"), r.Message)
				}
				if r.TagError != "" {
					fmt.Fprintf(out, "%s %s\n", warnStyle.Render("tags"), r.TagError)
				}
			}
			for _, dir := range summary.RemovedDirs {
				fmt.Fprintf(out, "%s %s\n", subtleStyle.Render("removed"), dir)
			}
			fmt.Fprintf(out, "%s renamed, %s dry run, %s skipped, %s failed\n",
				humanize.Comma(int64(summary.Renamed)), humanize.Comma(int64(summary.DryRun)),
				humanize.Comma(int64(summary.Skipped)), humanize.Comma(int64(summary.Failed)))
			if writeTags && !dryRun {
				fmt.Fprintf(out, "%s files retagged\n", humanize.Comma(int64(summary.Retagged)))
			}

			if dryRun {
				return nil
			}
			rep.Applied = summary
			if err := rep.Save(path); err != nil {
				return errmsg.Wrap(errmsg.OpReportSave, path, err)
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d renames failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be renamed without touching files")
	cmd.Flags().BoolVar(&writeTags, "write-tags", false, "Write corrected tags to matched files (defaults to rename.write_tags)")
	return cmd
}
