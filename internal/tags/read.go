package tags

import (
	"cmp"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// Read reads tag metadata from a music file. A missing title falls back to
// the file name so every file keeps something to match on.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		switch strings.ToLower(filepath.Ext(path)) {
		case ExtMP3:
			// dhowden/tag has issues with some UTF-16 encoded ID3 tags
			return readID3(path)
		case ExtM4A, ExtMP4, ExtFLAC, ExtOPUS, ExtOGG, ExtOGA:
			// dhowden/tag can't parse some ffmpeg-created M4A files, and
			// fails on some FLAC and Ogg streams
			return readWithTaglib(path)
		}
		return nil, err
	}

	t := &Tag{
		Path:        path,
		Title:       cmp.Or(m.Title(), filepath.Base(path)),
		Artist:      m.Artist(),
		AlbumArtist: cmp.Or(m.AlbumArtist(), m.Artist()),
		Album:       m.Album(),
		Date:        yearToDate(m.Year()),
	}
	t.TrackNumber, _ = m.Track()

	// dhowden/tag only exposes the year; read the full date per format
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3:
		readMP3Date(path, t)
	case ExtFLAC:
		readFLACDate(path, t)
	}

	t.Sanitize()
	return t, nil
}

// yearToDate converts a year integer to a date string.
// Returns empty string for year 0.
func yearToDate(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
