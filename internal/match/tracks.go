package match

import (
	"context"

	"github.com/llehouerou/reconcile/internal/metadata"
)

// MatchTracks runs phase 3: one search per file, using the accepted artist
// and (canonicalized) album corrections. Every file yields exactly one
// result, in input order.
func (m *Matcher) MatchTracks(ctx context.Context, files []ScannedFile, artists, albums Corrections) []TrackResult {
	results := make([]TrackResult, len(files))
	labels := make([]string, len(files))

	for i := range files {
		f := &files[i]
		results[i] = TrackResult{
			Result: Result{
				Key:       f.Path,
				Original:  f.Title,
				FileCount: 1,
				Status:    StatusSkipped,
				Reason:    ReasonCancelled,
			},
			Path:   f.Path,
			Artist: f.Artist,
			Album:  f.Album,
			Title:  trackTitle(f),
		}
		labels[i] = f.Path
	}

	m.runPool(ctx, PhaseTracks, labels, func(ctx context.Context, i int) {
		r, f := &results[i], &files[i]

		ak := unitKey(f.Artist)
		r.Artist = artists.Resolve(ak, f.Artist)
		albk := albumKey(r.Artist, f.Album)
		r.Album = albums.Resolve(albk, f.Album)

		switch {
		case isMissing(f.Artist):
			r.skip(ReasonMissingArtist)
			return
		case isMissing(r.Title):
			r.skip(ReasonMissingTitle)
			return
		case !artists.Usable(ak):
			r.skip(ReasonArtistExcl)
			return
		case !albums.Usable(albk):
			r.skip(ReasonAlbumExcl)
			return
		}

		q := metadata.Query{Artist: r.Artist, Album: r.Album, Title: r.Title}
		o := m.search(ctx, metadata.KindRecording, q, f.Path)
		r.apply(o, o.cand.Title)

		if r.Status == StatusMatched {
			r.RecordingID = o.cand.ProviderID
			r.ReleaseID = o.cand.ReleaseID
			r.TrackNumber = o.cand.TrackNumber
			if r.Accepted() {
				r.Title = o.cand.Title
				r.ReleaseDate = o.cand.ReleaseDate
			}
		}
		if r.ReleaseDate == "" {
			if corr, ok := albums.Lookup(albk); ok && corr.Accepted {
				r.ReleaseDate = corr.ReleaseDate
			}
		}
	})

	logPhase(PhaseTracks, resultPtrs(results, func(t *TrackResult) *Result { return &t.Result }))
	return results
}
