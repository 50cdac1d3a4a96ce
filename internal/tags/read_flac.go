package tags

import (
	"strings"

	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

// readFLACDate fills t.Date from DATE, or YEAR, in the Vorbis comment block.
func readFLACDate(path string, t *Tag) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return
	}

	for _, meta := range f.Meta {
		if meta.Type != goflac.VorbisComment {
			continue
		}
		cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return
		}
		if date := vorbisValue(cmts.Comments, "DATE", "YEAR"); date != "" {
			t.Date = date
		}
		return
	}
}

// vorbisValue returns the first value of the first key present. Keys
// compare case-insensitively.
func vorbisValue(comments []string, keys ...string) string {
	for _, key := range keys {
		for _, c := range comments {
			if k, v, ok := strings.Cut(c, "="); ok && strings.EqualFold(k, key) {
				return v
			}
		}
	}
	return ""
}
