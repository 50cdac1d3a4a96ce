package musicbrainz

import (
	"context"
	"fmt"
	"strings"

	"github.com/llehouerou/reconcile/internal/metadata"
)

// luceneSpecial lists characters that must be escaped in a Lucene term.
const luceneSpecial = `+-&|!(){}[]^"~*?:\/`

// Provider adapts a Client to metadata.Provider.
type Provider struct {
	client *Client
}

// NewProvider wraps c.
func NewProvider(c *Client) *Provider {
	return &Provider{client: c}
}

// Search implements metadata.Provider.
func (p *Provider) Search(ctx context.Context, kind metadata.Kind, q metadata.Query, limit int) ([]metadata.Candidate, error) {
	var (
		cands []metadata.Candidate
		err   error
	)

	switch kind {
	case metadata.KindArtist:
		cands, err = p.searchArtists(ctx, q, limit)
	case metadata.KindRelease:
		cands, err = p.searchReleases(ctx, q, limit)
	case metadata.KindRecording:
		cands, err = p.searchRecordings(ctx, q, limit)
	default:
		err = fmt.Errorf("unsupported kind %q", kind)
	}
	if err != nil {
		return nil, &metadata.ProviderError{Kind: kind, Err: err}
	}

	metadata.SortByScore(cands)
	return cands, nil
}

func (p *Provider) searchArtists(ctx context.Context, q metadata.Query, limit int) ([]metadata.Candidate, error) {
	artists, err := p.client.SearchArtists(ctx, buildQuery(field{"artist", q.Artist}), limit)
	if err != nil {
		return nil, err
	}

	cands := make([]metadata.Candidate, 0, len(artists))
	for _, a := range artists {
		cands = append(cands, metadata.Candidate{
			ProviderID: a.ID,
			Name:       a.Name,
			Artist:     a.Name,
			Score:      a.Score,
		})
	}
	return cands, nil
}

func (p *Provider) searchReleases(ctx context.Context, q metadata.Query, limit int) ([]metadata.Candidate, error) {
	query := buildQuery(field{"artist", q.Artist}, field{"release", q.Album})
	releases, err := p.client.SearchReleases(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	cands := make([]metadata.Candidate, 0, len(releases))
	for _, r := range releases {
		cands = append(cands, metadata.Candidate{
			ProviderID:  r.ID,
			Name:        r.Title,
			Artist:      r.Artist,
			Album:       r.Title,
			ReleaseID:   r.ID,
			ReleaseDate: r.Date,
			Score:       r.Score,
		})
	}
	return cands, nil
}

// searchRecordings returns one candidate per (recording, release) pair so the
// matcher can score the album title of every appearance.
func (p *Provider) searchRecordings(ctx context.Context, q metadata.Query, limit int) ([]metadata.Candidate, error) {
	query := buildQuery(field{"artist", q.Artist}, field{"release", q.Album}, field{"recording", q.Title})
	recordings, err := p.client.SearchRecordings(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	var cands []metadata.Candidate
	for _, rec := range recordings {
		base := metadata.Candidate{
			ProviderID: rec.ID,
			Name:       rec.Title,
			Artist:     rec.Artist,
			Title:      rec.Title,
			Score:      rec.Score,
		}
		if len(rec.Releases) == 0 {
			cands = append(cands, base)
			continue
		}
		for _, rel := range rec.Releases {
			c := base
			c.Album = rel.Album
			c.ReleaseID = rel.ReleaseID
			c.ReleaseDate = rel.Date
			c.TrackNumber = rel.TrackNumber
			cands = append(cands, c)
		}
	}
	return cands, nil
}

type field struct {
	name  string
	value string
}

// buildQuery joins non-empty fields into a Lucene query of the form
// `artist:(a b) AND release:(c)`. Values are lower-cased so words such as
// AND or NOT in a title are not read as operators.
func buildQuery(fields ...field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		parts = append(parts, f.name+":("+escapeLucene(v)+")")
	}
	return strings.Join(parts, " AND ")
}

func escapeLucene(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if strings.ContainsRune(luceneSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
