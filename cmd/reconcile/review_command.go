package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llehouerou/reconcile/internal/errmsg"
	"github.com/llehouerou/reconcile/internal/report"
)

var errUnitFlag = errors.New("exactly one of --artist or --album is required")

func newReviewCommand(_ *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "review <report>",
		Short: "List the artists and albums that need a decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := loadReport(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rows := reviewRows(rep)
			if len(rows) == 0 {
				fmt.Fprintln(out, okStyle.Render("Nothing to review"))
				return nil
			}
			printTable(out, []string{"UNIT", "KEY", "ORIGINAL", "CANDIDATE", "SCORE", "FILES"}, rows)
			return nil
		},
	}
}

type unitFlags struct {
	artist string
	album  string
}

func (u *unitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&u.artist, "artist", "", "Artist key")
	cmd.Flags().StringVar(&u.album, "album", "", "Album key")
}

func (u *unitFlags) resolve() (unit, key string, err error) {
	switch {
	case u.artist != "" && u.album == "":
		return report.UnitArtist, u.artist, nil
	case u.album != "" && u.artist == "":
		return report.UnitAlbum, u.album, nil
	default:
		return "", "", errUnitFlag
	}
}

func newApproveCommand(_ *commandContext) *cobra.Command {
	var (
		units      unitFlags
		corrected  string
		providerID string
	)

	cmd := &cobra.Command{
		Use:   "approve <report>",
		Short: "Accept an artist or album match",
		Long: "Accept the candidate of an artist or album unit, or set the corrected\n" +
			"name with --to. Run match --resume to apply the decision.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, key, err := units.resolve()
			if err != nil {
				return err
			}
			return updateReport(cmd, args[0], func(rep *report.File) error {
				return rep.Approve(unit, key, corrected, providerID)
			}, fmt.Sprintf("approved %s %q", unit, key))
		},
	}

	units.register(cmd)
	cmd.Flags().StringVar(&corrected, "to", "", "Corrected name (defaults to the candidate)")
	cmd.Flags().StringVar(&providerID, "id", "", "MusicBrainz ID to record")
	return cmd
}

func newRejectCommand(_ *commandContext) *cobra.Command {
	var units unitFlags

	cmd := &cobra.Command{
		Use:   "reject <report>",
		Short: "Reject an artist or album match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, key, err := units.resolve()
			if err != nil {
				return err
			}
			return updateReport(cmd, args[0], func(rep *report.File) error {
				return rep.Reject(unit, key)
			}, fmt.Sprintf("rejected %s %q", unit, key))
		},
	}

	units.register(cmd)
	return cmd
}

func loadReport(path string) (*report.File, error) {
	rep, err := report.Load(path)
	if err != nil {
		return nil, errmsg.Wrap(errmsg.OpReportLoad, path, err)
	}
	return rep, nil
}

func updateReport(cmd *cobra.Command, path string, update func(*report.File) error, done string) error {
	rep, err := loadReport(path)
	if err != nil {
		return err
	}
	if err := update(rep); err != nil {
		return err
	}
	if err := rep.Save(path); err != nil {
		return errmsg.Wrap(errmsg.OpReportSave, path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(done))
	return nil
}
