package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/reconcile/internal/match"
	"github.com/llehouerou/reconcile/internal/report"
)

const artistJSON = `{"artists": [{"id": "a-1", "name": "XG", "score": 100}]}`

const releaseJSON = `{"releases": [{"id": "r-1", "title": "AWE", "score": 100, "date": "2024-11-08",
  "artist-credit": [{"name": "XG", "artist": {"id": "a-1", "name": "XG"}}]}]}`

const recordingJSON = `{"recordings": [{"id": "rec-1", "title": "LEFT RIGHT", "score": 100,
  "artist-credit": [{"name": "XG"}],
  "releases": [{"id": "r-1", "title": "AWE", "date": "2024-11-08",
    "media": [{"position": 1, "track-offset": 0, "track": [{"id": "t-1", "number": "1", "title": "LEFT RIGHT"}]}]}]}]}`

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// lockedBuffer is written by progress and log output from several goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type cliTestEnv struct {
	base       string
	library    string
	configPath string
	reportPath string
	requests   map[string]int
	mu         sync.Mutex
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{base: t.TempDir(), requests: map[string]int{}}
	env.library = filepath.Join(env.base, "library")
	env.reportPath = filepath.Join(env.base, "report.json")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.mu.Lock()
		env.requests[r.URL.Path]++
		env.mu.Unlock()
		switch r.URL.Path {
		case "/artist":
			_, _ = w.Write([]byte(artistJSON))
		case "/release":
			_, _ = w.Write([]byte(releaseJSON))
		case "/recording":
			_, _ = w.Write([]byte(recordingJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	env.configPath = filepath.Join(env.base, "config.toml")
	cfg := fmt.Sprintf(`[musicbrainz]
base_url = %q
requests_per_second = 1000

[cache]
path = %q

[log]
level = "debug"
file = %q
`, srv.URL, filepath.Join(env.base, "cache.db"), filepath.Join(env.base, "reconcile.log"))
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0o644))

	return env
}

func (e *cliTestEnv) addFile(t *testing.T, rel string) string {
	t.Helper()
	path := filepath.Join(e.library, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o644))
	return path
}

func (e *cliTestEnv) requestCount(path string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requests[path]
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout bytes.Buffer
	var stderr lockedBuffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIHelpListsCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--help"}, env.configPath)
	require.NoError(t, err)

	for _, name := range []string{"scan", "match", "review", "approve", "reject", "preview", "apply", "cache"} {
		assert.Contains(t, out, name)
	}
}

func TestCLIScan(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addFile(t, "XG/AWE/01 - Left Right.flac")
	env.addFile(t, "XG/AWE/02 - Woke Up.flac")
	env.addFile(t, "XG/AWE/cover.jpg")

	out, _, err := runCLI(t, []string{"scan", env.library}, env.configPath)
	require.NoError(t, err)

	assert.Contains(t, out, "2 files, 1 artists, 1 albums")
	assert.Contains(t, out, "XG")
}

func TestCLIScanRequiresRoot(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"scan"}, env.configPath)
	require.ErrorIs(t, err, errNoRoot)
}

func TestCLIMatchPreviewApply(t *testing.T) {
	env := setupCLITestEnv(t)
	original := env.addFile(t, "XG/AWE/01 - Left Right.flac")

	out, _, err := runCLI(t, []string{"match", env.library, "-o", env.reportPath}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "report written to")

	rep, err := report.Load(env.reportPath)
	require.NoError(t, err)
	require.Len(t, rep.Tracks, 1)
	assert.Equal(t, match.StatusMatched, rep.Tracks[0].Status)
	assert.Equal(t, "LEFT RIGHT", rep.Tracks[0].Title)
	assert.Equal(t, 1, env.requestCount("/artist"))

	out, _, err = runCLI(t, []string{"preview", env.reportPath}, env.configPath)
	require.NoError(t, err)
	want := filepath.Join(env.library, "XG", "AWE (2024)", "01 - LEFT RIGHT.flac")
	assert.Contains(t, out, want)
	assert.Contains(t, out, "1 of 1 files would move")

	out, _, err = runCLI(t, []string{"apply", "--dry-run", env.reportPath}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "would rename")
	assert.FileExists(t, original, "dry run must not touch files")

	_, _, err = runCLI(t, []string{"apply", env.reportPath}, env.configPath)
	require.NoError(t, err)
	assert.FileExists(t, want)
	assert.NoFileExists(t, original)
	assert.NoDirExists(t, filepath.Join(env.library, "XG", "AWE"), "emptied folder is cleaned up")

	rep, err = report.Load(env.reportPath)
	require.NoError(t, err)
	require.NotNil(t, rep.Applied)
	assert.Equal(t, 1, rep.Applied.Renamed)
}

func TestCLIMatchUsesCache(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addFile(t, "XG/AWE/01 - Left Right.flac")

	for range 2 {
		_, _, err := runCLI(t, []string{"match", env.library, "-o", env.reportPath}, env.configPath)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, env.requestCount("/artist"), "second pass is served from the cache")

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "3 (0 expired)")

	out, _, err = runCLI(t, []string{"cache", "clean"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "removed 0 expired entries")
}

func TestCLIApplyRequiresPreviews(t *testing.T) {
	env := setupCLITestEnv(t)
	rep := report.New(env.library, nil, &match.Report{}, testTime)
	require.NoError(t, rep.Save(env.reportPath))

	_, _, err := runCLI(t, []string{"apply", env.reportPath}, env.configPath)
	require.ErrorIs(t, err, errNoPreviews)
}

func TestCLIReviewApproveReject(t *testing.T) {
	env := setupCLITestEnv(t)
	rep := report.New(env.library, nil, &match.Report{
		Artists: []match.ArtistResult{
			{Result: match.Result{
				Key: "aimerr", Original: "Aimerr", Candidate: "Aimer", Confidence: 83,
				Category: match.CategoryReview, Status: match.StatusMatched, FileCount: 12,
			}},
		},
		Albums: []match.AlbumResult{
			{Result: match.Result{
				Key: "aimerr / bootleg", Original: "Bootleg", Status: match.StatusNoMatch,
				Reason: match.ReasonNoCandidates, FileCount: 3,
			}},
		},
	}, testTime)
	require.NoError(t, rep.Save(env.reportPath))

	out, _, err := runCLI(t, []string{"review", env.reportPath}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Aimerr")
	assert.Contains(t, out, match.ReasonNoCandidates)

	_, _, err = runCLI(t, []string{"approve", env.reportPath, "--artist", "aimerr"}, env.configPath)
	require.NoError(t, err)
	_, _, err = runCLI(t, []string{"reject", env.reportPath, "--album", "aimerr / bootleg"}, env.configPath)
	require.NoError(t, err)

	rep, err = report.Load(env.reportPath)
	require.NoError(t, err)
	assert.Equal(t, match.StatusApproved, rep.Artists[0].Status)
	assert.Equal(t, "Aimer", rep.Artists[0].Corrected)
	assert.Equal(t, match.StatusRejected, rep.Albums[0].Status)

	out, _, err = runCLI(t, []string{"review", env.reportPath}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to review")
}

func TestCLIApproveValidatesFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	require.NoError(t, report.New(env.library, nil, &match.Report{}, testTime).Save(env.reportPath))

	_, _, err := runCLI(t, []string{"approve", env.reportPath}, env.configPath)
	require.ErrorIs(t, err, errUnitFlag)

	_, _, err = runCLI(t, []string{"approve", env.reportPath, "--artist", "nobody"}, env.configPath)
	require.ErrorIs(t, err, report.ErrUnknownUnit)
}
