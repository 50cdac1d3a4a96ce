// Package rename computes destination paths for matched tracks:
// {root}/{artist}/{album}[ (year)]/{NN - }{title}{ext}.
package rename

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/llehouerou/reconcile/internal/match"
	"github.com/llehouerou/reconcile/internal/tags"
)

// Placeholders for components with no usable value.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
	UnknownTitle  = "Unknown Title"
)

// Components are the sanitized path segments below the destination root.
type Components struct {
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	FileName string `json:"file_name"`
}

// Preview is the proposed rename for one file. It is recomputed on every
// run from the match results.
type Preview struct {
	OriginalPath string     `json:"original_path"`
	ProposedPath string     `json:"proposed_path"`
	Components   Components `json:"components"`
	Changed      bool       `json:"changed"`
}

var (
	// reIllegalFileChars matches characters not allowed in file names on
	// common filesystems. Slashes are handled separately.
	reIllegalFileChars = regexp.MustCompile(`[:*?"<>|]+`)
	// reSlashes matches path separators, with surrounding whitespace
	reSlashes = regexp.MustCompile(`\s*[/\\]+\s*`)
	// reEndDots matches trailing dots and spaces
	reEndDots = regexp.MustCompile(`[.\s]+$`)
	// reMultiSpace matches runs of whitespace
	reMultiSpace = regexp.MustCompile(`\s+`)
	// reYear matches a leading four-digit year
	reYear = regexp.MustCompile(`^(\d{4})`)
)

// replaceSlashes turns path separators into "-"
func replaceSlashes(s string) string {
	return reSlashes.ReplaceAllString(s, "-")
}

// removeIllegalFileChars drops characters not allowed in file names
func removeIllegalFileChars(s string) string {
	return reIllegalFileChars.ReplaceAllString(s, "")
}

// removeControlChars maps any Unicode space to a plain space and drops
// other control runes
func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r), r == unicode.ReplacementChar:
			return -1
		}
		return r
	}, s)
}

// normalizeSpaces trims and reduces multiple whitespace to single space
func normalizeSpaces(s string) string {
	return strings.TrimSpace(reMultiSpace.ReplaceAllString(s, " "))
}

// removeEndDots removes trailing dots, and any spaces left behind them
func removeEndDots(s string) string {
	return reEndDots.ReplaceAllString(s, "")
}

// Sanitize makes s safe as a single path component. It is idempotent:
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	s = removeControlChars(s)
	s = replaceSlashes(s)
	s = removeIllegalFileChars(s)
	s = normalizeSpaces(s)
	s = removeEndDots(s)
	return s
}

// Year returns the leading four-digit year of a release date, or "".
func Year(date string) string {
	m := reYear.FindStringSubmatch(strings.TrimSpace(date))
	if m == nil || m[1] == "0000" {
		return ""
	}
	return m[1]
}

// TrackNumber resolves the track number for the file name prefix: a number
// parsed from the original file name wins, then the embedded tag. It
// returns 0 when neither is known; a number is never invented.
func TrackNumber(file match.ScannedFile) int {
	if n, _, ok := tags.ParseFilename(file.Path); ok {
		return n
	}
	if file.TrackNumber > 0 {
		return file.TrackNumber
	}
	return 0
}

// BuildPreview computes the destination of file under root from its track
// result. Values from the track result (corrected when accepted) are used
// first, then the file's own metadata, then a placeholder.
func BuildPreview(track match.TrackResult, file match.ScannedFile, root string) Preview {
	artist := component(UnknownArtist, track.Artist, file.Artist)
	album := component(UnknownAlbum, track.Album, file.Album)

	year := Year(track.ReleaseDate)
	if year == "" && file.Year > 0 {
		year = fmt.Sprintf("%04d", file.Year)
	}
	if year != "" {
		album += " (" + year + ")"
	}

	stem := strings.TrimSuffix(filepath.Base(file.Path), filepath.Ext(file.Path))
	_, parsed, _ := tags.ParseFilename(file.Path)
	title := component(UnknownTitle, track.Title, file.Title, parsed, stem)

	name := title
	if n := TrackNumber(file); n > 0 {
		name = fmt.Sprintf("%02d - %s", n, title)
	}
	name += filepath.Ext(file.Path)

	proposed := filepath.Join(root, artist, album, name)
	return Preview{
		OriginalPath: file.Path,
		ProposedPath: proposed,
		Components:   Components{Artist: artist, Album: album, FileName: name},
		Changed:      filepath.Clean(file.Path) != proposed,
	}
}

// BuildPreviews computes a preview for every file, pairing track results
// with files by path. Files without a track result fall back to their own
// metadata.
func BuildPreviews(tracks []match.TrackResult, files []match.ScannedFile, root string) []Preview {
	byPath := make(map[string]*match.TrackResult, len(tracks))
	for i := range tracks {
		byPath[tracks[i].Path] = &tracks[i]
	}

	previews := make([]Preview, len(files))
	for i, f := range files {
		var tr match.TrackResult
		if t, ok := byPath[f.Path]; ok {
			tr = *t
		}
		previews[i] = BuildPreview(tr, f, root)
	}
	return previews
}

// component returns the first candidate that sanitizes to a usable value.
func component(placeholder string, candidates ...string) string {
	for _, c := range candidates {
		if s := Sanitize(c); s != "" && !isPlaceholderValue(s) {
			return s
		}
	}
	return placeholder
}

func isPlaceholderValue(s string) bool {
	switch strings.ToLower(s) {
	case "unknown", "unknown artist", "unknown album", "unknown title":
		return true
	}
	return false
}
