// Package scanner walks a music directory and reads every file's tags into
// the records the matcher consumes.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/reconcile/internal/match"
	"github.com/llehouerou/reconcile/internal/tags"
)

const defaultWorkers = 8

// Progress reports the progress of a scan.
type Progress struct {
	Phase   string // "scanning", "processing", "done"
	Current int
	Total   int
}

// Options configures a scan.
type Options struct {
	// Workers is the number of concurrent tag readers. Defaults to 8.
	Workers int
	// Progress, when non-nil, receives progress updates and is closed when
	// Scan returns. The caller must drain it.
	Progress chan<- Progress
	// ReadTags reads a file's tags. Defaults to tags.Read.
	ReadTags func(path string) (*tags.Tag, error)
}

// Scan walks root and returns one ScannedFile per music file, in lexical
// path order. Files whose tags cannot be read are still returned, filled
// from their folder and file names.
func Scan(ctx context.Context, root string, opts Options) ([]match.ScannedFile, error) {
	if opts.Progress != nil {
		defer close(opts.Progress)
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.ReadTags == nil {
		opts.ReadTags = tags.Read
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	report(opts.Progress, Progress{Phase: "scanning"})
	paths := discoverFiles(ctx, root, opts.Progress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files := processFiles(ctx, root, paths, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(opts.Progress, Progress{Phase: "done", Current: len(files), Total: len(files)})
	log.Info().Str("root", root).Int("files", len(files)).Msg("scan complete")
	return files, nil
}

// discoverFiles walks root and returns all music files found.
func discoverFiles(ctx context.Context, root string, progress chan<- Progress) []string {
	var paths []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Skip any walk errors - intentionally continuing to scan other paths
		if walkErr != nil {
			log.Debug().Err(walkErr).Str("path", path).Msg("skipping unreadable path")
			return nil
		}
		if d.IsDir() || !tags.IsMusicFile(path) {
			return nil
		}

		paths = append(paths, path)
		if len(paths)%100 == 0 {
			report(progress, Progress{Phase: "scanning", Current: len(paths)})
		}
		return nil
	})
	return paths
}

// processFiles reads tags in parallel. Results are stored by index so the
// output keeps the discovery order.
func processFiles(ctx context.Context, root string, paths []string, opts Options) []match.ScannedFile {
	total := len(paths)
	results := make([]match.ScannedFile, total)
	var processed atomic.Int64

	workCh := make(chan int, total)
	for i := range paths {
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	for range min(opts.Workers, max(total, 1)) {
		wg.Go(func() {
			for i := range workCh {
				if ctx.Err() != nil {
					return
				}
				t, err := opts.ReadTags(paths[i])
				if err != nil {
					log.Debug().Err(err).Str("path", paths[i]).Msg("tags unreadable, using folder names")
					t = nil
				}
				results[i] = buildScannedFile(root, paths[i], t)
				processed.Add(1)
			}
		})
	}

	// Progress reporter
	done := make(chan struct{})
	var reporter sync.WaitGroup
	if opts.Progress != nil {
		reporter.Go(func() {
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					report(opts.Progress, Progress{Phase: "processing", Current: int(processed.Load()), Total: total})
				case <-done:
					return
				}
			}
		})
	}

	wg.Wait()
	close(done)
	reporter.Wait()
	report(opts.Progress, Progress{Phase: "processing", Current: int(processed.Load()), Total: total})

	return results
}

// buildScannedFile merges tag values with the folder layout
// root/Artist/Album/file. t may be nil.
func buildScannedFile(root, path string, t *tags.Tag) match.ScannedFile {
	f := match.ScannedFile{Path: path}
	f.FolderArtist, f.FolderAlbum = folderNames(root, path)

	if t != nil {
		f.Artist = firstNonEmpty(t.AlbumArtist, t.Artist)
		f.Album = t.Album
		f.Title = t.Title
		f.TrackNumber = t.TrackNumber
		f.Year = t.Year()
	}

	f.Artist = firstNonEmpty(f.Artist, f.FolderArtist)
	f.Album = firstNonEmpty(f.Album, f.FolderAlbum)
	f.Title = firstNonEmpty(f.Title, filepath.Base(path))
	return f
}

// folderNames returns the artist and album directory names of path when it
// sits at least one and two levels below root.
func folderNames(root, path string) (artist, album string) {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	album = parts[len(parts)-1]
	if len(parts) >= 2 {
		artist = parts[len(parts)-2]
	}
	return artist, album
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func report(ch chan<- Progress, p Progress) {
	if ch != nil {
		ch <- p
	}
}
