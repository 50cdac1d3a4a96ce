// Package organize applies rename previews to the filesystem: conflict-free
// moves, dry runs, and cleanup of the source folders left empty.
package organize

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/llehouerou/reconcile/internal/errmsg"
	"github.com/llehouerou/reconcile/internal/rename"
	"github.com/llehouerou/reconcile/internal/tags"
)

// DefaultMaxCleanupDepth bounds how many ancestor folders cleanup may visit
// above an emptied source folder.
const DefaultMaxCleanupDepth = 8

// Result messages.
const (
	MsgNoChanges = "No changes needed"
	MsgCancelled = "Cancelled"
)

// ErrSourceMissing is returned when the file to rename no longer exists.
var ErrSourceMissing = errors.New("source file missing")

// Status is the outcome of one rename.
type Status string

const (
	StatusSkipped Status = "skipped"
	StatusDryRun  Status = "dry_run"
	StatusRenamed Status = "renamed"
	StatusFailed  Status = "failed"
)

// Options configures an Executor.
type Options struct {
	DryRun bool
	// ScanRoot bounds cleanup; it is never removed itself. Cleanup is off
	// when empty.
	ScanRoot         string
	CleanupEmptyDirs bool
	MaxCleanupDepth  int
	// Tags, keyed by original path, are written to each file after it is
	// renamed or found already in place. Nil disables tag writing.
	Tags map[string]tags.Update
	// WriteTags stores an update in a file. Defaults to tags.Write.
	WriteTags func(path string, u tags.Update) error
}

// Result is the outcome for one preview.
type Result struct {
	OriginalPath string `json:"original_path"`
	ProposedPath string `json:"proposed_path"`
	// FinalPath differs from ProposedPath when a conflict was resolved
	// with a " (n)" suffix.
	FinalPath string `json:"final_path,omitempty"`
	Status    Status `json:"status"`
	Message   string `json:"message,omitempty"`
	Err       error  `json:"-"`
	// Retagged is set once corrected tags were written. TagError is the
	// tag write failure; it does not fail the rename.
	Retagged bool   `json:"retagged,omitempty"`
	TagError string `json:"tag_error,omitempty"`
}

// Summary collects the results of one Execute call, in preview order.
type Summary struct {
	Results     []Result `json:"results"`
	Renamed     int      `json:"renamed"`
	DryRun      int      `json:"dry_run"`
	Skipped     int      `json:"skipped"`
	Failed      int      `json:"failed"`
	Retagged    int      `json:"retagged,omitempty"`
	TagFailed   int      `json:"tag_failed,omitempty"`
	RemovedDirs []string `json:"removed_dirs,omitempty"`
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusRenamed:
		s.Renamed++
	case StatusDryRun:
		s.DryRun++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
	if r.Retagged {
		s.Retagged++
	}
	if r.TagError != "" {
		s.TagFailed++
	}
}

// Executor applies rename previews.
type Executor struct {
	fs    afero.Fs
	opts  Options
	retry retrier
}

// NewExecutor creates an Executor working on fs.
func NewExecutor(fs afero.Fs, opts Options) *Executor {
	if opts.MaxCleanupDepth <= 0 {
		opts.MaxCleanupDepth = DefaultMaxCleanupDepth
	}
	if opts.WriteTags == nil {
		opts.WriteTags = tags.Write
	}
	return &Executor{fs: fs, opts: opts, retry: defaultRetrier}
}

// Execute applies previews in order. A failure is recorded on its item and
// the batch continues. Once ctx is done the remaining items are skipped.
func (e *Executor) Execute(ctx context.Context, previews []rename.Preview) *Summary {
	s := &Summary{Results: make([]Result, 0, len(previews))}
	planned := make(map[string]bool)
	var emptied []string

	for _, p := range previews {
		r := Result{OriginalPath: p.OriginalPath, ProposedPath: p.ProposedPath}

		switch {
		case ctx.Err() != nil:
			r.Status, r.Message = StatusSkipped, MsgCancelled
		case !p.Changed:
			r.Status, r.Message = StatusSkipped, MsgNoChanges
			if !e.opts.DryRun {
				e.retag(&r, r.OriginalPath)
			}
		case e.opts.DryRun:
			e.dryRun(&r, planned)
		default:
			if e.rename(ctx, &r) {
				emptied = append(emptied, filepath.Dir(r.OriginalPath))
				e.retag(&r, r.FinalPath)
			}
		}
		s.add(r)
	}

	if e.opts.CleanupEmptyDirs && !e.opts.DryRun && e.opts.ScanRoot != "" {
		s.RemovedDirs = e.cleanup(emptied)
	}

	log.Info().
		Bool("dry_run", e.opts.DryRun).
		Int("renamed", s.Renamed).
		Int("dry_run_items", s.DryRun).
		Int("skipped", s.Skipped).
		Int("failed", s.Failed).
		Int("retagged", s.Retagged).
		Int("removed_dirs", len(s.RemovedDirs)).
		Msg("rename batch complete")
	return s
}

// dryRun reports the would-be action without touching the filesystem.
// planned holds the destinations earlier items of the batch would take.
func (e *Executor) dryRun(r *Result, planned map[string]bool) {
	if !e.exists(r.OriginalPath) {
		e.fail(r, errmsg.OpRename, ErrSourceMissing)
		return
	}
	final := freePath(r.ProposedPath, func(p string) bool {
		return planned[p] || e.exists(p)
	})
	planned[final] = true

	r.FinalPath = final
	r.Status = StatusDryRun
	r.Message = "Would rename to " + final
}

// rename moves one file and reports whether it succeeded.
func (e *Executor) rename(ctx context.Context, r *Result) bool {
	if !e.exists(r.OriginalPath) {
		e.fail(r, errmsg.OpRename, ErrSourceMissing)
		return false
	}

	if err := e.fs.MkdirAll(filepath.Dir(r.ProposedPath), 0o755); err != nil {
		e.fail(r, errmsg.OpCreateDir, err)
		return false
	}

	final := freePath(r.ProposedPath, e.exists)
	err := e.retry.do(ctx, "move file", func() error {
		return move(e.fs, r.OriginalPath, final)
	})
	if err != nil && !e.landed(r.OriginalPath, final) {
		e.fail(r, errmsg.OpRename, err)
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("from", r.OriginalPath).Str("to", final).
			Msg("move reported failure but the file is in place")
	}

	r.FinalPath = final
	r.Status = StatusRenamed
	r.Message = "Renamed"
	if final != r.ProposedPath {
		r.Message = fmt.Sprintf("Renamed to %s (destination existed)", filepath.Base(final))
	}
	log.Debug().Str("from", r.OriginalPath).Str("to", final).Msg("renamed file")
	return true
}

// retag writes the corrected tags of r's source file to path.
func (e *Executor) retag(r *Result, path string) {
	u, ok := e.opts.Tags[r.OriginalPath]
	if !ok || u.IsZero() {
		return
	}
	if err := e.opts.WriteTags(path, u); err != nil {
		r.TagError = errmsg.FormatWith(errmsg.OpWriteTags, filepath.Base(path), err)
		log.Warn().Err(err).Str("path", path).Msg("tag write failed")
		return
	}
	r.Retagged = true
}

func (e *Executor) fail(r *Result, op errmsg.Op, err error) {
	r.Status = StatusFailed
	r.Err = err
	r.Message = errmsg.FormatWith(op, filepath.Base(r.OriginalPath), err)
	log.Warn().Err(err).Str("path", r.OriginalPath).Msg("rename failed")
}

// landed reports whether src was moved to dst, as happens when an attempt
// that timed out finishes after the retrier gave up on it.
func (e *Executor) landed(src, dst string) bool {
	return !e.exists(src) && e.exists(dst)
}

func (e *Executor) exists(path string) bool {
	ok, err := afero.Exists(e.fs, path)
	return err == nil && ok
}
