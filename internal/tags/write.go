package tags

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"go.senan.xyz/taglib"
)

// ErrUnsupportedFormat is returned by Write for extensions it cannot tag.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Update holds the corrected values written back to a file. Empty fields
// leave the existing tag untouched; every other tag in the file is kept.
type Update struct {
	Artist        string
	Album         string
	Title         string
	Date          string
	MBReleaseID   string
	MBRecordingID string
}

// IsZero reports whether u would change nothing.
func (u Update) IsZero() bool {
	return u == Update{}
}

// Write stores u in the file at path.
func Write(path string, u Update) error {
	if u.IsZero() {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3:
		return writeMP3(path, u)
	case ExtFLAC:
		return writeFLAC(path, u)
	case ExtOPUS, ExtOGG, ExtOGA, ExtM4A, ExtMP4:
		return writeTaglib(path, u)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// vorbisFields lists Update as Vorbis comment key/value pairs, in a fixed
// order.
func (u Update) vorbisFields() [][2]string {
	return [][2]string{
		{"ARTIST", u.Artist},
		{"ALBUM", u.Album},
		{"TITLE", u.Title},
		{"DATE", u.Date},
		{"MUSICBRAINZ_ALBUMID", u.MBReleaseID},
		{"MUSICBRAINZ_TRACKID", u.MBRecordingID},
	}
}

func writeMP3(path string, u Update) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if u.Artist != "" {
		tag.SetArtist(u.Artist)
	}
	if u.Album != "" {
		tag.SetAlbum(u.Album)
	}
	if u.Title != "" {
		tag.SetTitle(u.Title)
	}
	if u.Date != "" {
		tag.DeleteFrames("TDRC")
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, u.Date)
	}
	if u.MBReleaseID != "" {
		setTXXX(tag, "MusicBrainz Album Id", u.MBReleaseID)
	}
	if u.MBRecordingID != "" {
		setUFID(tag, "http://musicbrainz.org", u.MBRecordingID)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

// setTXXX replaces the user-defined text frame with the given description,
// keeping the others.
func setTXXX(tag *id3v2.Tag, description, value string) {
	id := tag.CommonID("User defined text information frame")
	var keep []id3v2.UserDefinedTextFrame
	for _, f := range tag.GetFrames(id) {
		if udtf, ok := f.(id3v2.UserDefinedTextFrame); ok && !strings.EqualFold(udtf.Description, description) {
			keep = append(keep, udtf)
		}
	}
	tag.DeleteFrames(id)
	for _, f := range keep {
		tag.AddUserDefinedTextFrame(f)
	}
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: description,
		Value:       value,
	})
}

func setUFID(tag *id3v2.Tag, owner, identifier string) {
	var keep []id3v2.UFIDFrame
	for _, f := range tag.GetFrames("UFID") {
		if ufid, ok := f.(id3v2.UFIDFrame); ok && ufid.OwnerIdentifier != owner {
			keep = append(keep, ufid)
		}
	}
	tag.DeleteFrames("UFID")
	for _, f := range keep {
		tag.AddFrame("UFID", f)
	}
	tag.AddFrame("UFID", id3v2.UFIDFrame{OwnerIdentifier: owner, Identifier: []byte(identifier)})
}

func writeFLAC(path string, u Update) error {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse file: %w", err)
	}

	cmtIdx := -1
	cmts := flacvorbis.New()
	for i, meta := range f.Meta {
		if meta.Type != goflac.VorbisComment {
			continue
		}
		cmtIdx = i
		if existing, err := flacvorbis.ParseFromMetaDataBlock(*meta); err == nil {
			cmts = existing
		}
		break
	}

	for _, field := range u.vorbisFields() {
		key, value := field[0], field[1]
		if value == "" {
			continue
		}
		cmts.Comments = removeComment(cmts.Comments, key)
		if err := cmts.Add(key, value); err != nil {
			return fmt.Errorf("add %s: %w", strings.ToLower(key), err)
		}
	}

	block := cmts.Marshal()
	if cmtIdx >= 0 {
		f.Meta[cmtIdx] = &block
	} else {
		f.Meta = append(f.Meta, &block)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

// removeComment drops every KEY=value entry for key, case-insensitively.
func removeComment(comments []string, key string) []string {
	out := comments[:0]
	for _, c := range comments {
		k, _, _ := strings.Cut(c, "=")
		if !strings.EqualFold(k, key) {
			out = append(out, c)
		}
	}
	return out
}

func writeTaglib(path string, u Update) error {
	fields := map[string]string{
		taglib.Artist:             u.Artist,
		taglib.Album:              u.Album,
		taglib.Title:              u.Title,
		taglib.Date:               u.Date,
		taglib.MusicBrainzAlbumID: u.MBReleaseID,
		taglib.MusicBrainzTrackID: u.MBRecordingID,
	}

	values := make(map[string][]string)
	for key, value := range fields {
		if value != "" {
			values[key] = []string{value}
		}
	}

	// Without taglib.Clear only the given keys are replaced.
	if err := taglib.WriteTags(path, values, 0); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	return nil
}
