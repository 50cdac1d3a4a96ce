// Package musicbrainz provides a client for the MusicBrainz search API and
// adapts it to the metadata.Provider contract.
package musicbrainz

import (
	"strconv"
	"strings"
)

// Artist is an artist search hit.
type Artist struct {
	ID    string
	Name  string
	Score int
}

// Release is a release search hit.
type Release struct {
	ID     string
	Title  string
	Artist string // joined artist credit
	Date   string
	Score  int
}

// Recording is a recording search hit with every release it appears on.
type Recording struct {
	ID       string
	Title    string
	Artist   string
	Score    int
	Releases []Appearance
}

// Appearance places a recording on one release.
type Appearance struct {
	ReleaseID   string
	Album       string
	Date        string
	TrackNumber int // 0 when unknown
}

// Wire format of the /ws/2 search endpoints (fmt=json).

type credits []struct {
	Name   string `json:"name"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
	JoinPhrase string `json:"joinphrase"`
}

// String renders the credit as printed on the release, e.g. "A feat. B".
func (cs credits) String() string {
	var b strings.Builder
	for _, c := range cs {
		if c.Name != "" {
			b.WriteString(c.Name)
		} else {
			b.WriteString(c.Artist.Name)
		}
		b.WriteString(c.JoinPhrase)
	}
	return b.String()
}

type artistHits struct {
	Artists []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Score int    `json:"score"`
	} `json:"artists"`
}

type releaseHits struct {
	Releases []struct {
		ID      string  `json:"id"`
		Title   string  `json:"title"`
		Score   int     `json:"score"`
		Date    string  `json:"date"`
		Credits credits `json:"artist-credit"`
	} `json:"releases"`
}

type recordingHits struct {
	Recordings []struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		Score    int     `json:"score"`
		Credits  credits `json:"artist-credit"`
		Releases []struct {
			ID    string   `json:"id"`
			Title string   `json:"title"`
			Date  string   `json:"date"`
			Media []medium `json:"media"`
		} `json:"releases"`
	} `json:"recordings"`
}

// medium is a disc as listed under a recording hit. Track holds only the
// searched recording.
type medium struct {
	TrackOffset *int    `json:"track-offset"`
	Track       []track `json:"track"`
}

type track struct {
	Number string `json:"number"`
}

// trackNumber prefers the printed number and falls back to the 0-based
// offset. Vinyl sides print numbers such as "A1".
func (m medium) trackNumber() int {
	if len(m.Track) > 0 {
		if n, err := strconv.Atoi(m.Track[0].Number); err == nil && n > 0 {
			return n
		}
	}
	if m.TrackOffset != nil {
		return *m.TrackOffset + 1
	}
	return 0
}
