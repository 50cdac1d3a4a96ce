package tags

import (
	"cmp"
	"path/filepath"

	"go.senan.xyz/taglib"
)

// taglibValues is the property map TagLib returns.
type taglibValues map[string][]string

func (v taglibValues) first(keys ...string) string {
	for _, key := range keys {
		if values := v[key]; len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// readWithTaglib reads FLAC, Ogg and M4A files dhowden/tag cannot parse.
func readWithTaglib(path string) (*Tag, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}
	v := taglibValues(raw)

	t := &Tag{
		Path:        path,
		Title:       cmp.Or(v.first(taglib.Title), filepath.Base(path)),
		Artist:      v.first(taglib.Artist),
		AlbumArtist: v.first(taglib.AlbumArtist, taglib.Artist),
		Album:       v.first(taglib.Album),
		Date:        v.first(taglib.Date, "YEAR"),
	}
	t.TrackNumber, _ = parseTrackNumber(v.first(taglib.TrackNumber))

	t.Sanitize()
	return t, nil
}
