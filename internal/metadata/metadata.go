// Package metadata defines the contract between the matcher and an external
// metadata source.
package metadata

import (
	"context"
	"fmt"
	"sort"
)

// Kind is the entity type being searched.
type Kind string

const (
	KindArtist    Kind = "artist"
	KindRelease   Kind = "release"
	KindRecording Kind = "recording"
)

// Query holds the free-text fields of a search. Which fields are used depends
// on the Kind: artist searches read Artist, release searches read Artist and
// Album, recording searches read all three.
type Query struct {
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Title  string `json:"title,omitempty"`
}

// Candidate is a single search hit. Candidates are ephemeral and never
// outlive the search that produced them.
type Candidate struct {
	ProviderID  string `json:"provider_id"`
	Name        string `json:"name"` // display name for the searched entity
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	Title       string `json:"title,omitempty"`
	ReleaseID   string `json:"release_id,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
	TrackNumber int    `json:"track_number,omitempty"`
	Score       int    `json:"score"` // provider relevance, 0-100
}

// Provider searches an external metadata source. Implementations must be
// safe for concurrent use and return candidates ordered by descending Score.
type Provider interface {
	Search(ctx context.Context, kind Kind, q Query, limit int) ([]Candidate, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, kind Kind, q Query, limit int) ([]Candidate, error)

// Search calls f.
func (f ProviderFunc) Search(ctx context.Context, kind Kind, q Query, limit int) ([]Candidate, error) {
	return f(ctx, kind, q, limit)
}

// ProviderError is a transient failure talking to the provider.
type ProviderError struct {
	Kind Kind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s search: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// SortByScore orders candidates by descending Score, keeping provider order
// among equal scores.
func SortByScore(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
}
