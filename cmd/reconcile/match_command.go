package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reconcile/internal/errmsg"
	"github.com/llehouerou/reconcile/internal/match"
	"github.com/llehouerou/reconcile/internal/report"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		output      string
		resume      string
		workers     int
		maxVariants int
	)

	cmd := &cobra.Command{
		Use:   "match [root]",
		Short: "Match a library against MusicBrainz and write a report",
		Long: "Scan the library, match artists, then albums, then tracks, and write\n" +
			"the results to a JSON report. With --resume, the approvals and rejections\n" +
			"recorded in an earlier report are reused instead of searched again.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.scanRoot(args)
			if err != nil {
				return err
			}

			var prior *match.Prior
			if resume != "" {
				previous, err := report.Load(resume)
				if err != nil {
					return errmsg.Wrap(errmsg.OpReportLoad, resume, err)
				}
				prior = previous.Prior()
			}

			provider, err := ctx.provider()
			if err != nil {
				return err
			}

			files, err := scanLibrary(cmd, root)
			if err != nil {
				return err
			}

			matchCfg := ctx.config.GetMatchingConfig()
			if cmd.Flags().Changed("workers") {
				matchCfg.Workers = workers
			}
			if cmd.Flags().Changed("max-variants") {
				matchCfg.MaxVariants = maxVariants
			}

			start := time.Now()
			progress := &progressLine{w: cmd.ErrOrStderr()}
			m := match.New(provider, match.Options{
				Workers:     matchCfg.Workers,
				Limit:       ctx.config.GetMusicBrainzConfig().SearchLimit,
				MaxVariants: matchCfg.MaxVariants,
				Progress:    progress,
				Prior:       prior,
			})
			result := m.Run(cmd.Context(), files)
			progress.finish(time.Since(start))
			log.Info().
				Int("files", len(files)).
				Dur("elapsed", time.Since(start)).
				Bool("cancelled", result.Cancelled).
				Msg("match finished")

			rep := report.New(root, files, result, time.Now())
			if err := rep.Save(output); err != nil {
				return errmsg.Wrap(errmsg.OpReportSave, output, err)
			}

			out := cmd.OutOrStdout()
			printSummary(out, rep)
			fmt.Fprintf(out, "report written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "reconcile-report.json", "Report file to write")
	cmd.Flags().StringVar(&resume, "resume", "", "Reuse the reviewed units of an earlier report")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Concurrent searches per phase (1-8)")
	cmd.Flags().IntVar(&maxVariants, "max-variants", 0, "Alternate-script retries per unit (0 for all)")
	return cmd
}
