package match

import (
	"context"

	"github.com/llehouerou/reconcile/internal/metadata"
)

type albumGroup struct {
	key            string
	album          string
	artist         string // name used for the search
	originalArtist string
	artistUsable   bool
	files          int
}

// groupAlbums groups files by (resolved artist, album) in first-seen order.
// Files whose artist is not usable form their own groups under an
// excluded key, so they never share a key or a file count with a
// searchable group that resolved to the same name.
func groupAlbums(files []ScannedFile, artists Corrections) []*albumGroup {
	var groups []*albumGroup
	byKey := make(map[string]*albumGroup)

	for i := range files {
		f := &files[i]
		ak := unitKey(f.Artist)
		usable := artists.Usable(ak)
		artist := artists.Resolve(ak, f.Artist)
		key := albumKey(artist, f.Album)
		if !usable {
			key = excludedAlbumKey(f.Artist, f.Album)
		}

		g, ok := byKey[key]
		if !ok {
			g = &albumGroup{
				key:            key,
				album:          f.Album,
				artist:         artist,
				originalArtist: f.Artist,
				artistUsable:   usable,
			}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.files++
	}
	return groups
}

// MatchAlbums runs phase 2 and canonicalization. Albums of artists that are
// not usable are reported skipped without a search.
func (m *Matcher) MatchAlbums(ctx context.Context, files []ScannedFile, artists Corrections) ([]AlbumResult, []CanonicalGroup) {
	groups := groupAlbums(files, artists)
	results := make([]AlbumResult, len(groups))
	labels := make([]string, len(groups))

	for i, g := range groups {
		results[i] = AlbumResult{
			Result: Result{
				Key:       g.key,
				Original:  g.album,
				FileCount: g.files,
				Status:    StatusSkipped,
				Reason:    ReasonCancelled,
			},
			Artist:         g.artist,
			OriginalArtist: g.originalArtist,
		}
		labels[i] = g.artist + " - " + g.album
	}

	m.runPool(ctx, PhaseAlbums, labels, func(ctx context.Context, i int) {
		r, g := &results[i], groups[i]
		if !g.artistUsable {
			r.skip(ReasonArtistExcl)
			return
		}
		if prior, ok := m.priorAlbums[r.Key]; ok {
			r.Result = carryOver(prior.Result, r.Result)
			r.ReleaseDate = prior.ReleaseDate
			return
		}
		if isMissing(r.Original) {
			r.skip(ReasonMissingAlbum)
			return
		}
		o := m.search(ctx, metadata.KindRelease, metadata.Query{Artist: g.artist, Album: g.album}, labels[i])
		r.apply(o, o.cand.Album)
		if r.Status == StatusMatched {
			r.ReleaseDate = o.cand.ReleaseDate
		}
	})

	canonical := canonicalize(results)

	logPhase(PhaseAlbums, resultPtrs(results, func(a *AlbumResult) *Result { return &a.Result }))
	return results, canonical
}
