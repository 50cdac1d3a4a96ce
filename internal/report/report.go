// Package report stores the results of a reconciliation pass as JSON: the
// scanned files, the per-phase match results and the rename previews. It is
// the hand-off between the match, preview and apply steps and the input of
// manual review.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/llehouerou/reconcile/internal/match"
	"github.com/llehouerou/reconcile/internal/organize"
	"github.com/llehouerou/reconcile/internal/rename"
	"github.com/llehouerou/reconcile/internal/tags"
)

// Version is the current file format version.
const Version = 1

// File is the on-disk report.
type File struct {
	Version     int                    `json:"version"`
	GeneratedAt time.Time              `json:"generated_at"`
	ScanRoot    string                 `json:"scan_root,omitempty"`
	DestRoot    string                 `json:"dest_root,omitempty"`
	Cancelled   bool                   `json:"cancelled,omitempty"`
	Files       []match.ScannedFile    `json:"files"`
	Artists     []match.ArtistResult   `json:"artists"`
	Albums      []match.AlbumResult    `json:"albums"`
	Canonical   []match.CanonicalGroup `json:"canonical,omitempty"`
	Tracks      []match.TrackResult    `json:"tracks"`
	Previews    []rename.Preview       `json:"previews,omitempty"`
	Applied     *organize.Summary      `json:"applied,omitempty"`
}

// New builds a report from a matcher pass.
func New(scanRoot string, files []match.ScannedFile, rep *match.Report, now time.Time) *File {
	return &File{
		Version:     Version,
		GeneratedAt: now.UTC(),
		ScanRoot:    scanRoot,
		Cancelled:   rep.Cancelled,
		Files:       files,
		Artists:     rep.Artists,
		Albums:      rep.Albums,
		Canonical:   rep.Canonical,
		Tracks:      rep.Tracks,
	}
}

// Prior returns the reviewed artist and album results to seed the next pass.
func (f *File) Prior() *match.Prior {
	return &match.Prior{Artists: f.Artists, Albums: f.Albums}
}

// BuildPreviews computes and stores the rename previews under destRoot.
func (f *File) BuildPreviews(destRoot string) []rename.Preview {
	f.DestRoot = destRoot
	f.Previews = rename.BuildPreviews(f.Tracks, f.Files, destRoot)
	return f.Previews
}

// TagUpdates returns the corrected tags of every accepted track, keyed by
// file path.
func (f *File) TagUpdates() map[string]tags.Update {
	updates := make(map[string]tags.Update)
	for _, t := range f.Tracks {
		if !t.Accepted() {
			continue
		}
		updates[t.Path] = tags.Update{
			Artist:        t.Artist,
			Album:         t.Album,
			Title:         t.Title,
			Date:          t.ReleaseDate,
			MBReleaseID:   t.ReleaseID,
			MBRecordingID: t.RecordingID,
		}
	}
	return updates
}

// Save writes the report to path atomically.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a report written by Save.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if f.Version > Version {
		return nil, fmt.Errorf("report version %d is newer than supported version %d", f.Version, Version)
	}
	return &f, nil
}

// Counts summarizes results by status for one phase.
type Counts map[match.Status]int

// StatusCounts returns per-phase status counts.
func (f *File) StatusCounts() (artists, albums, tracks Counts) {
	artists, albums, tracks = Counts{}, Counts{}, Counts{}
	for _, a := range f.Artists {
		artists[a.Status]++
	}
	for _, a := range f.Albums {
		albums[a.Status]++
	}
	for _, t := range f.Tracks {
		tracks[t.Status]++
	}
	return artists, albums, tracks
}

// Unit kinds that can be reviewed.
const (
	UnitArtist = "artist"
	UnitAlbum  = "album"
)

// ErrUnknownUnit is returned when a reviewed key is not in the report.
var ErrUnknownUnit = errors.New("unit not found in report")

// Approve accepts the artist or album unit at key. See match.Result.Approve.
func (f *File) Approve(unit, key, corrected, providerID string) error {
	r, err := f.result(unit, key)
	if err != nil {
		return err
	}
	r.Approve(corrected, providerID)
	return nil
}

// Reject excludes the artist or album unit at key from the next pass.
func (f *File) Reject(unit, key string) error {
	r, err := f.result(unit, key)
	if err != nil {
		return err
	}
	r.Reject()
	return nil
}

func (f *File) result(unit, key string) (*match.Result, error) {
	switch unit {
	case UnitArtist:
		for i := range f.Artists {
			if f.Artists[i].Key == key {
				return &f.Artists[i].Result, nil
			}
		}
	case UnitAlbum:
		for i := range f.Albums {
			if f.Albums[i].Key == key {
				return &f.Albums[i].Result, nil
			}
		}
	default:
		return nil, fmt.Errorf("unknown unit kind %q", unit)
	}
	return nil, fmt.Errorf("%s %q: %w", unit, key, ErrUnknownUnit)
}
