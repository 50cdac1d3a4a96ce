package tags

import (
	"cmp"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// readMP3Date fills t.Date from the ID3v2 frames when they carry a fuller
// date than the year dhowden/tag reports.
func readMP3Date(path string, t *Tag) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return
	}
	defer id3tag.Close()

	if date := id3Date(id3tag); date != "" {
		t.Date = date
	}
}

// id3Date prefers the v2.4 recording time (TDRC) and otherwise joins the v2.3
// year (TYER) with its DDMM day (TDAT).
func id3Date(id3tag *id3v2.Tag) string {
	if date := textFrame(id3tag, "TDRC"); date != "" {
		return date
	}
	year := textFrame(id3tag, "TYER")
	if year == "" {
		return ""
	}
	if ddmm := textFrame(id3tag, "TDAT"); len(ddmm) == 4 {
		return year + "-" + ddmm[2:] + "-" + ddmm[:2]
	}
	return year
}

// readID3 reads an MP3 with the id3v2 library alone. dhowden/tag rejects
// some UTF-16 frames that id3v2 decodes.
func readID3(path string) (*Tag, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer id3tag.Close()

	t := &Tag{
		Path:        path,
		Title:       cmp.Or(id3tag.Title(), filepath.Base(path)),
		Artist:      id3tag.Artist(),
		AlbumArtist: cmp.Or(textFrame(id3tag, "TPE2"), id3tag.Artist()),
		Album:       id3tag.Album(),
		Date:        id3Date(id3tag),
	}
	t.TrackNumber, _ = parseTrackNumber(textFrame(id3tag, "TRCK"))
	if year := id3tag.Year(); t.Date == "" && len(year) >= 4 {
		t.Date = year[:4]
	}

	t.Sanitize()
	return t, nil
}

// parseTrackNumber splits "N" or "N/Total". Unparsable halves are 0.
func parseTrackNumber(s string) (num, total int) {
	n, tot, found := strings.Cut(s, "/")
	num, _ = strconv.Atoi(n)
	if found {
		total, _ = strconv.Atoi(tot)
	}
	return num, total
}

func textFrame(id3tag *id3v2.Tag, id string) string {
	frames := id3tag.GetFrames(id)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}
