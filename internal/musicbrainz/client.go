package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://musicbrainz.org/ws/2"
	defaultUserAgent = "reconcile/0.1 (https://github.com/llehouerou/reconcile)"
	defaultRate      = 1.0 // requests per second allowed for anonymous clients

	attempts     = 4
	firstBackoff = 2 * time.Second
	maxBackoff   = 30 * time.Second
)

// Client talks to the MusicBrainz search API. Share one Client between all
// goroutines: its limiter is what keeps the process under the server's rate.
type Client struct {
	hc      *http.Client
	baseURL string
	agent   string
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a mirror.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header. MusicBrainz expects a contact
// URL or address in it.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.agent = ua
		}
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// NewClient returns a client for the public MusicBrainz server unless
// options say otherwise.
func NewClient(opts ...Option) *Client {
	c := &Client{
		hc:      &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
		agent:   defaultUserAgent,
		limiter: rate.NewLimiter(rate.Limit(defaultRate), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchArtists runs a Lucene query against the artist index.
func (c *Client) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	var hits artistHits
	if err := c.search(ctx, "artist", query, limit, &hits); err != nil {
		return nil, err
	}

	out := make([]Artist, 0, len(hits.Artists))
	for _, h := range hits.Artists {
		out = append(out, Artist{ID: h.ID, Name: h.Name, Score: h.Score})
	}
	return out, nil
}

// SearchReleases runs a Lucene query against the release index.
func (c *Client) SearchReleases(ctx context.Context, query string, limit int) ([]Release, error) {
	var hits releaseHits
	if err := c.search(ctx, "release", query, limit, &hits); err != nil {
		return nil, err
	}

	out := make([]Release, 0, len(hits.Releases))
	for _, h := range hits.Releases {
		out = append(out, Release{
			ID:     h.ID,
			Title:  h.Title,
			Artist: h.Credits.String(),
			Date:   h.Date,
			Score:  h.Score,
		})
	}
	return out, nil
}

// SearchRecordings runs a Lucene query against the recording index.
func (c *Client) SearchRecordings(ctx context.Context, query string, limit int) ([]Recording, error) {
	var hits recordingHits
	if err := c.search(ctx, "recording", query, limit, &hits); err != nil {
		return nil, err
	}

	out := make([]Recording, 0, len(hits.Recordings))
	for _, h := range hits.Recordings {
		rec := Recording{ID: h.ID, Title: h.Title, Artist: h.Credits.String(), Score: h.Score}
		for _, rel := range h.Releases {
			a := Appearance{ReleaseID: rel.ID, Album: rel.Title, Date: rel.Date}
			if len(rel.Media) > 0 {
				a.TrackNumber = rel.Media[0].trackNumber()
			}
			rec.Releases = append(rec.Releases, a)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, entity, query string, limit int, out any) error {
	params := url.Values{"query": {query}, "fmt": {"json"}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	resp, err := c.get(ctx, c.baseURL+"/"+entity+"?"+params.Encode())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", entity, err)
	}
	return nil
}

// get sends a GET, retrying transport failures and 5xx answers with a
// doubling backoff. Every attempt takes a limiter token. Responses below 500
// are returned to the caller as is.
func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			if err := sleep(ctx, backoff(attempt)); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.agent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.hc.Do(req)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		case resp.StatusCode >= http.StatusInternalServerError:
			resp.Body.Close()
			lastErr = fmt.Errorf("server status %d", resp.StatusCode)
		default:
			return resp, nil
		}
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

// backoff is the pause before retry n (n >= 1): 2s, 4s, 8s, capped at 30s.
func backoff(n int) time.Duration {
	return min(firstBackoff<<(n-1), maxBackoff)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
