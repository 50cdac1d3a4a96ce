package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/reconcile/internal/match"
	"github.com/llehouerou/reconcile/internal/report"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

var statusOrder = []match.Status{
	match.StatusMatched,
	match.StatusApproved,
	match.StatusNoMatch,
	match.StatusSkipped,
	match.StatusRejected,
	match.StatusError,
}

func statusStyle(s match.Status) lipgloss.Style {
	switch s {
	case match.StatusMatched, match.StatusApproved:
		return okStyle
	case match.StatusError:
		return errorStyle
	case match.StatusNoMatch, match.StatusRejected:
		return warnStyle
	default:
		return subtleStyle
	}
}

func formatCounts(counts report.Counts) string {
	parts := make([]string, 0, len(counts))
	for _, s := range statusOrder {
		if n := counts[s]; n > 0 {
			parts = append(parts, statusStyle(s).Render(fmt.Sprintf("%s %s", humanize.Comma(int64(n)), s)))
		}
	}
	if len(parts) == 0 {
		return subtleStyle.Render("none")
	}
	return strings.Join(parts, ", ")
}

func printSummary(w io.Writer, rep *report.File) {
	artists, albums, tracks := rep.StatusCounts()
	fmt.Fprintln(w, headerStyle.Render("Summary"))
	fmt.Fprintf(w, "  artists  %s\n", formatCounts(artists))
	fmt.Fprintf(w, "  albums   %s\n", formatCounts(albums))
	fmt.Fprintf(w, "  tracks   %s\n", formatCounts(tracks))
	if len(rep.Canonical) > 0 {
		fmt.Fprintf(w, "  %s album groups merged by release\n", humanize.Comma(int64(len(rep.Canonical))))
	}
	if rep.Cancelled {
		fmt.Fprintln(w, warnStyle.Render("  cancelled: remaining units were not searched"))
	}
}

// progressLine renders match progress on a single rewritten terminal line.
type progressLine struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *progressLine) OnProgress(ev match.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r\033[K%s %d/%d %s",
		headerStyle.Render(string(ev.Phase)), ev.Processed, ev.Total, subtleStyle.Render(ev.Unit))
}

func (p *progressLine) finish(elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r\033[Kmatched in %s\n", elapsed.Round(time.Second))
}

// reviewRows lists the artist and album units that need a decision.
func reviewRows(rep *report.File) [][]string {
	var rows [][]string
	add := func(unit string, r match.Result) {
		if r.Status == match.StatusApproved || r.Status == match.StatusRejected {
			return
		}
		if r.Status == match.StatusMatched && r.Category == match.CategoryAutoApprove {
			return
		}
		if r.Status == match.StatusSkipped {
			return
		}
		detail := r.Candidate
		if r.Status != match.StatusMatched {
			detail = firstNonEmpty(r.Error, r.Reason, string(r.Status))
		}
		rows = append(rows, []string{
			unit, r.Key, r.Original, detail,
			fmt.Sprintf("%d", r.Confidence), humanize.Comma(int64(r.FileCount)),
		})
	}
	for _, a := range rep.Artists {
		add(report.UnitArtist, a.Result)
	}
	for _, a := range rep.Albums {
		add(report.UnitAlbum, a.Result)
	}
	slices.SortStableFunc(rows, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})
	return rows
}

func printTable(w io.Writer, header []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(subtleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		}).
		Headers(header...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
