package match

import (
	"path/filepath"
	"strings"

	"github.com/llehouerou/reconcile/internal/tags"
)

// missingValues are tag values that mean "no data".
var missingValues = map[string]bool{
	"":               true,
	"unknown":        true,
	"unknown artist": true,
	"unknown album":  true,
	"unknown title":  true,
}

// unitKey is the case-insensitive grouping key of a free-text value.
func unitKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// albumKey identifies an album group by the artist name its search uses and
// the on-disk album name.
func albumKey(artist, album string) string {
	return unitKey(artist) + " / " + unitKey(album)
}

// excludedAlbumKey keys an album whose artist was not matched.
func excludedAlbumKey(artist, album string) string {
	return albumKey(artist, album) + " (excluded)"
}

func isMissing(s string) bool {
	return missingValues[unitKey(s)]
}

// trackTitle returns the title to search with. Titles that fell back to the
// file name lose their extension and track-number prefix; tag titles are
// kept as written.
func trackTitle(f *ScannedFile) string {
	if f.Title != filepath.Base(f.Path) {
		return strings.TrimSpace(f.Title)
	}
	return cleanTitle(f.Title)
}

// cleanTitle strips the extension and any track-number prefix from a file
// name.
func cleanTitle(name string) string {
	_, rest, ok := tags.ParseFilename(name)
	if ok && rest != "" {
		return rest
	}
	if ok {
		return ""
	}
	return rest
}
