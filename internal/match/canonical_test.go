package match

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/llehouerou/reconcile/internal/metadata"
)

func bandFiles(n int, album string) []ScannedFile {
	files := make([]ScannedFile, n)
	for i := range files {
		files[i] = file(fmt.Sprintf("/m/band/%s/%02d.flac", album, i+1), "BAND", album, fmt.Sprintf("Song %d", i+1))
	}
	return files
}

func TestRun_CanonicalizesAlbumsByRelease(t *testing.T) {
	p := newFakeProvider().
		on(metadata.KindArtist, artistQ("BAND"), artistCand("a-band", "Band")).
		on(metadata.KindRelease, albumQ("Band", "Best Of"), releaseCand("r1", "Band", "Best Of", "2010-05-01")).
		// "best of jp" vs "best of": 70, review.
		on(metadata.KindRelease, albumQ("Band", "Best Of (JP)"), releaseCand("r1", "Band", "Best Of", "2010-05-01"))

	// The smaller group comes first; file count decides, not order.
	files := append(bandFiles(3, "Best Of (JP)"), bandFiles(40, "Best Of")...)

	rep := New(p, Options{Workers: 4}).Run(context.Background(), files)

	require.Len(t, rep.Albums, 2)
	jp := findAlbum(t, rep.Albums, "band / best of (jp)")
	main := findAlbum(t, rep.Albums, "band / best of")

	assert.Equal(t, 40, main.FileCount)
	assert.Equal(t, "Best Of", main.Corrected)
	assert.Equal(t, main.Key, main.CanonicalKey)

	assert.Equal(t, "Best Of", jp.Corrected)
	assert.Equal(t, main.Status, jp.Status)
	assert.Equal(t, main.Category, jp.Category)
	assert.Equal(t, main.Confidence, jp.Confidence)
	assert.Equal(t, "2010-05-01", jp.ReleaseDate)
	assert.Equal(t, main.Key, jp.CanonicalKey)

	require.Len(t, rep.Canonical, 1)
	g := rep.Canonical[0]
	assert.Equal(t, "r1", g.ReleaseID)
	assert.Equal(t, main.Key, g.CanonicalKey)
	assert.ElementsMatch(t, []string{jp.Key, main.Key}, g.Members)

	for _, tr := range rep.Tracks {
		assert.Equal(t, "Best Of", tr.Album, tr.Path)
		assert.Equal(t, "Band", tr.Artist, tr.Path)
	}
}

func TestCanonicalize_TieGoesToFirst(t *testing.T) {
	results := []AlbumResult{
		{Result: Result{Key: "a / x", Corrected: "X", ProviderID: "r1", Status: StatusMatched, Category: CategoryAutoApprove, FileCount: 5}},
		{Result: Result{Key: "a / x2", Candidate: "X", ProviderID: "r1", Status: StatusMatched, Category: CategoryReview, FileCount: 5}},
		{Result: Result{Key: "a / y", ProviderID: "r2", Status: StatusMatched, FileCount: 2}},
		{Result: Result{Key: "a / z", ProviderID: "r2", Status: StatusNoMatch, FileCount: 9}},
	}

	groups := canonicalize(results)

	require.Len(t, groups, 1, "singletons and unusable albums are not grouped")
	assert.Equal(t, "a / x", groups[0].CanonicalKey)
	assert.Equal(t, "X", results[1].Corrected)
	assert.Equal(t, CategoryAutoApprove, results[1].Category)
	assert.Empty(t, results[2].CanonicalKey)
	assert.Empty(t, results[3].CanonicalKey)
}

func TestCanonicalize_AcceptedOutranksFileCount(t *testing.T) {
	results := []AlbumResult{
		{Result: Result{Key: "band / best of", Candidate: "Best Of", ProviderID: "r1", Status: StatusMatched, Category: CategoryReview, FileCount: 40}},
		{Result: Result{Key: "band / best of (jp)", Corrected: "Best Of (Japan)", ProviderID: "r1", Status: StatusApproved, FileCount: 3}},
		{Result: Result{Key: "band / best of!", Corrected: "Best Of", ProviderID: "r1", Status: StatusMatched, Category: CategoryAutoApprove, FileCount: 12}},
	}

	groups := canonicalize(results)

	require.Len(t, groups, 1)
	assert.Equal(t, "band / best of (jp)", groups[0].CanonicalKey)
	for _, r := range results {
		assert.Equal(t, "Best Of (Japan)", r.Corrected, r.Key)
		assert.Equal(t, StatusApproved, r.Status, r.Key)
		assert.True(t, r.Accepted(), r.Key)
	}

	corr := AlbumCorrections(results)
	assert.Equal(t, "Best Of (Japan)", corr.Resolve("band / best of", "Best Of"))
}

func TestCanonicalize_AutoApproveOutranksReview(t *testing.T) {
	results := []AlbumResult{
		{Result: Result{Key: "a / x", Candidate: "X", ProviderID: "r1", Status: StatusMatched, Category: CategoryReview, FileCount: 9}},
		{Result: Result{Key: "a / x!", Corrected: "X", ProviderID: "r1", Status: StatusMatched, Category: CategoryAutoApprove, FileCount: 1}},
	}

	groups := canonicalize(results)

	require.Len(t, groups, 1)
	assert.Equal(t, "a / x!", groups[0].CanonicalKey)
	assert.Equal(t, CategoryAutoApprove, results[0].Category)
	assert.Equal(t, "X", results[0].Corrected)
}

func TestRun_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		artists := []string{"xg", "XG", "Aimer", "Unknown", "東京"}
		albums := []string{"awe", "AWE", "Walpurgis", ""}
		titles := []string{"Left Right", "01 - Howl.flac", "Unknown", "Woke Up"}

		n := rapid.IntRange(1, 25).Draw(t, "n")
		files := make([]ScannedFile, n)
		for i := range files {
			files[i] = file(
				fmt.Sprintf("/m/%d.flac", i),
				rapid.SampledFrom(artists).Draw(t, "artist"),
				rapid.SampledFrom(albums).Draw(t, "album"),
				rapid.SampledFrom(titles).Draw(t, "title"),
			)
		}
		workers := rapid.IntRange(1, 8).Draw(t, "workers")

		serial := New(xgProvider(), Options{Workers: 1}).Run(context.Background(), files)
		parallel := New(xgProvider(), Options{Workers: workers}).Run(context.Background(), files)

		if len(serial.Tracks) != n {
			t.Fatalf("got %d track results for %d files", len(serial.Tracks), n)
		}
		for i := range files {
			if serial.Tracks[i].Path != files[i].Path {
				t.Fatalf("track %d out of order: %s", i, serial.Tracks[i].Path)
			}
		}
		assertSameReport(t, serial, parallel)
	})
}

func assertSameReport(t *rapid.T, a, b *Report) {
	if len(a.Artists) != len(b.Artists) || len(a.Albums) != len(b.Albums) || len(a.Tracks) != len(b.Tracks) {
		t.Fatalf("result counts differ")
	}
	for i := range a.Artists {
		if a.Artists[i] != b.Artists[i] {
			t.Fatalf("artist %d differs: %+v vs %+v", i, a.Artists[i], b.Artists[i])
		}
	}
	for i := range a.Albums {
		if a.Albums[i] != b.Albums[i] {
			t.Fatalf("album %d differs: %+v vs %+v", i, a.Albums[i], b.Albums[i])
		}
	}
	for i := range a.Tracks {
		if a.Tracks[i] != b.Tracks[i] {
			t.Fatalf("track %d differs: %+v vs %+v", i, a.Tracks[i], b.Tracks[i])
		}
	}
}
