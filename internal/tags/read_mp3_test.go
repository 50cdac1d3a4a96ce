package tags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

// createMinimalMP3 creates a minimal valid MP3 file for testing.
// Returns MP3 frame header + padding (417 bytes total for 128kbps frame).
func createMinimalMP3(t *testing.T, path string) {
	t.Helper()
	// MP3 frame header (MPEG1 Layer3, 128kbps, 44100Hz, stereo) + padding
	mp3Frame := make([]byte, 417)
	mp3Frame[0] = 0xff
	mp3Frame[1] = 0xfb
	mp3Frame[2] = 0x90
	mp3Frame[3] = 0x00

	if err := os.WriteFile(path, mp3Frame, 0o600); err != nil {
		t.Fatalf("failed to create test MP3: %v", err)
	}
}

func TestParseTrackNumber(t *testing.T) {
	tests := []struct {
		in        string
		wantNum   int
		wantTotal int
	}{
		{"", 0, 0},
		{"7", 7, 0},
		{"03/12", 3, 12},
		{"1/1", 1, 1},
		{"A1", 0, 0},
		{"4/x", 4, 0},
		{"x/9", 0, 9},
	}

	for _, tt := range tests {
		num, total := parseTrackNumber(tt.in)
		if num != tt.wantNum || total != tt.wantTotal {
			t.Errorf("parseTrackNumber(%q) = %d, %d, want %d, %d", tt.in, num, total, tt.wantNum, tt.wantTotal)
		}
	}
}

func TestReadMP3WithID3v2Fallback(t *testing.T) {
	tests := []struct {
		name string
		file string
		set  func(tag *id3v2.Tag)
		want Tag
	}{
		{
			name: "UTF-16 frames",
			file: "03 - 春泥棒.mp3",
			set: func(tag *id3v2.Tag) {
				tag.SetVersion(3)
				tag.SetDefaultEncoding(id3v2.EncodingUTF16)
				tag.SetTitle("春泥棒")
				tag.SetArtist("ヨルシカ")
				tag.SetAlbum("創作")
				tag.AddTextFrame("TRCK", id3v2.EncodingUTF16, "3/5")
				tag.AddTextFrame("TPOS", id3v2.EncodingUTF16, "1/1")
				tag.AddTextFrame("TPE2", id3v2.EncodingUTF16, "Yorushika")
				tag.AddTextFrame("TYER", id3v2.EncodingUTF16, "2021")
			},
			want: Tag{
				Title: "春泥棒", Artist: "ヨルシカ", AlbumArtist: "Yorushika", Album: "創作",
				TrackNumber: 3, Date: "2021",
			},
		},
		{
			name: "album artist falls back to artist",
			file: "song.mp3",
			set: func(tag *id3v2.Tag) {
				tag.SetTitle("Woke Up")
				tag.SetArtist("XG")
				tag.SetAlbum("AWE")
			},
			want: Tag{Title: "Woke Up", Artist: "XG", AlbumArtist: "XG", Album: "AWE"},
		},
		{
			name: "title falls back to file name",
			file: "07 - Untitled.mp3",
			set: func(tag *id3v2.Tag) {
				tag.SetArtist("XG")
			},
			want: Tag{Title: "07 - Untitled.mp3", Artist: "XG", AlbumArtist: "XG"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			createMinimalMP3(t, path)
			writeID3(t, path, tt.set)

			got, err := readID3(path)
			if err != nil {
				t.Fatalf("readID3: %v", err)
			}
			tt.want.Path = path
			if *got != tt.want {
				t.Errorf("got %+v\nwant %+v", *got, tt.want)
			}
		})
	}
}
