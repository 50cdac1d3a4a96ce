// Package match reconciles scanned files against a metadata provider in
// three ordered phases: unique artists, then (artist, album) groups using
// the accepted artist corrections, then individual tracks using both.
package match

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/reconcile/internal/metadata"
)

const (
	defaultLimit = 10
	maxWorkers   = 8
)

// Options configures a Matcher.
type Options struct {
	// Workers bounds concurrent provider calls within a phase (1-8).
	Workers int
	// Limit is the number of candidates requested per search.
	Limit int
	// MaxVariants caps alternate-script retries per unit; 0 means all.
	MaxVariants int
	// Progress receives one event per completed unit.
	Progress ProgressReporter
	// Prior carries the results of a previous pass. Its approved and
	// rejected artist and album units are reused instead of searched.
	Prior *Prior
}

// Prior holds the manually reviewed results of a previous pass.
type Prior struct {
	Artists []ArtistResult
	Albums  []AlbumResult
}

// Report is the output of a full pass.
type Report struct {
	Artists   []ArtistResult   `json:"artists"`
	Albums    []AlbumResult    `json:"albums"`
	Canonical []CanonicalGroup `json:"canonical,omitempty"`
	Tracks    []TrackResult    `json:"tracks"`
	Cancelled bool             `json:"cancelled,omitempty"`
}

// Matcher runs the matching phases against a provider.
type Matcher struct {
	provider     metadata.Provider
	opts         Options
	priorArtists map[string]ArtistResult
	priorAlbums  map[string]AlbumResult
}

// New creates a Matcher.
func New(provider metadata.Provider, opts Options) *Matcher {
	opts.Workers = min(max(opts.Workers, 1), maxWorkers)
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	m := &Matcher{
		provider:     provider,
		opts:         opts,
		priorArtists: make(map[string]ArtistResult),
		priorAlbums:  make(map[string]AlbumResult),
	}
	if opts.Prior != nil {
		for _, a := range opts.Prior.Artists {
			if isOverride(a.Status) {
				m.priorArtists[a.Key] = a
			}
		}
		for _, a := range opts.Prior.Albums {
			if isOverride(a.Status) {
				m.priorAlbums[a.Key] = a
			}
		}
	}
	return m
}

func isOverride(s Status) bool {
	return s == StatusApproved || s == StatusRejected
}

// Run executes all three phases in order. Cancellation never returns an
// error: units not processed are reported skipped with reason "Cancelled"
// and Report.Cancelled is set.
func (m *Matcher) Run(ctx context.Context, files []ScannedFile) *Report {
	artists := m.MatchArtists(ctx, files)
	artistCorr := ArtistCorrections(artists)

	albums, canonical := m.MatchAlbums(ctx, files, artistCorr)
	albumCorr := AlbumCorrections(albums)

	tracks := m.MatchTracks(ctx, files, artistCorr, albumCorr)

	return &Report{
		Artists:   artists,
		Albums:    albums,
		Canonical: canonical,
		Tracks:    tracks,
		Cancelled: ctx.Err() != nil,
	}
}

// runPool runs fn for each of n units with at most Workers in flight. The
// context is checked before scheduling and again at the top of each unit;
// once it is done no new unit starts.
func (m *Matcher) runPool(ctx context.Context, phase Phase, labels []string, fn func(ctx context.Context, i int)) {
	total := len(labels)
	var processed atomic.Int64

	var g errgroup.Group
	g.SetLimit(m.opts.Workers)

	for i := range total {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fn(ctx, i)
			done := processed.Add(1)
			if m.opts.Progress != nil {
				m.opts.Progress.OnProgress(Progress{
					Phase:     phase,
					Processed: int(done),
					Total:     total,
					Unit:      labels[i],
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		log.Warn().Str("phase", string(phase)).
			Int64("processed", processed.Load()).Int("total", total).
			Msg("phase cancelled")
	}
}

func logPhase(phase Phase, results []*Result) {
	counts := make(map[Status]int)
	for _, r := range results {
		counts[r.Status]++
	}
	log.Info().
		Str("phase", string(phase)).
		Int("units", len(results)).
		Int("matched", counts[StatusMatched]).
		Int("approved", counts[StatusApproved]).
		Int("no_match", counts[StatusNoMatch]).
		Int("error", counts[StatusError]).
		Int("skipped", counts[StatusSkipped]).
		Msg("phase complete")
}
