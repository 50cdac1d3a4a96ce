// Package tags reads and writes the embedded metadata of music files. It
// covers MP3, FLAC, Ogg/Opus and M4A.
package tags

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Supported file extensions.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtOGA  = ".oga"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
)

// Tag is the subset of a file's tags the scanner matches on.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	TrackNumber int
	Date        string // YYYY, YYYY-MM or YYYY-MM-DD
}

// Year returns the leading year of Date, or 0.
func (t *Tag) Year() int {
	y, err := strconv.Atoi(t.Date[:min(4, len(t.Date))])
	if err != nil {
		return 0
	}
	return y
}

// Sanitize trims whitespace and the NUL padding some taggers leave.
func (t *Tag) Sanitize() {
	for _, s := range []*string{&t.Title, &t.Artist, &t.AlbumArtist, &t.Album, &t.Date} {
		*s = strings.TrimSpace(strings.Trim(*s, "\x00"))
	}
}

// IsMusicFile reports whether path has a supported extension.
func IsMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtOGA, ExtM4A, ExtMP4:
		return true
	}
	return false
}
