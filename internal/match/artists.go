package match

import (
	"context"

	"github.com/llehouerou/reconcile/internal/metadata"
)

type artistGroup struct {
	key      string
	original string
	files    int
	folders  map[string]int
	order    []string // folder names in first-seen order
}

// groupArtists collects the distinct artists of files in first-seen order.
func groupArtists(files []ScannedFile) []*artistGroup {
	var groups []*artistGroup
	byKey := make(map[string]*artistGroup)

	for i := range files {
		f := &files[i]
		key := unitKey(f.Artist)
		g, ok := byKey[key]
		if !ok {
			g = &artistGroup{key: key, original: f.Artist, folders: make(map[string]int)}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.files++
		if f.FolderArtist != "" {
			if g.folders[f.FolderArtist] == 0 {
				g.order = append(g.order, f.FolderArtist)
			}
			g.folders[f.FolderArtist]++
		}
	}
	return groups
}

// displayName is the most frequent folder name, ties to the first seen.
func (g *artistGroup) displayName() string {
	best, bestCount := "", 0
	for _, name := range g.order {
		if c := g.folders[name]; c > bestCount {
			best, bestCount = name, c
		}
	}
	if best == "" {
		return g.original
	}
	return best
}

// MatchArtists runs phase 1: one search per distinct artist (case
// insensitive). Results keep first-seen order.
func (m *Matcher) MatchArtists(ctx context.Context, files []ScannedFile) []ArtistResult {
	groups := groupArtists(files)
	results := make([]ArtistResult, len(groups))
	labels := make([]string, len(groups))

	for i, g := range groups {
		results[i] = ArtistResult{
			Result: Result{
				Key:       g.key,
				Original:  g.original,
				FileCount: g.files,
				Status:    StatusSkipped,
				Reason:    ReasonCancelled,
			},
			DisplayName: g.displayName(),
		}
		labels[i] = g.original
	}

	m.runPool(ctx, PhaseArtists, labels, func(ctx context.Context, i int) {
		r := &results[i]
		if prior, ok := m.priorArtists[r.Key]; ok {
			r.Result = carryOver(prior.Result, r.Result)
			return
		}
		if isMissing(r.Original) {
			r.skip(ReasonMissingArtist)
			return
		}
		o := m.search(ctx, metadata.KindArtist, metadata.Query{Artist: r.Original}, r.Original)
		r.apply(o, o.cand.Name)
	})

	logPhase(PhaseArtists, resultPtrs(results, func(a *ArtistResult) *Result { return &a.Result }))
	return results
}

// carryOver reuses a prior override while keeping this pass's grouping data.
func carryOver(prior, current Result) Result {
	prior.Key = current.Key
	prior.Original = current.Original
	prior.FileCount = current.FileCount
	return prior
}

func resultPtrs[T any](items []T, get func(*T) *Result) []*Result {
	out := make([]*Result, len(items))
	for i := range items {
		out[i] = get(&items[i])
	}
	return out
}
