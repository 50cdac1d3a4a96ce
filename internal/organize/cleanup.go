package organize

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// cleanup removes the folders in dirs that are now empty, then their
// ancestors while they are empty too. It never leaves ScanRoot, never
// removes ScanRoot itself and visits at most MaxCleanupDepth folders per
// starting point. Failures only stop the walk.
func (e *Executor) cleanup(dirs []string) []string {
	root := filepath.Clean(e.opts.ScanRoot)

	// Deepest first, so a parent is only checked after its children.
	dirs = slices.Clone(dirs)
	slices.SortFunc(dirs, func(a, b string) int {
		if d := depth(b) - depth(a); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	dirs = slices.Compact(dirs)

	var removed []string
	for _, dir := range dirs {
		removed = append(removed, e.cleanupFrom(root, filepath.Clean(dir))...)
	}
	return removed
}

func (e *Executor) cleanupFrom(root, dir string) []string {
	var removed []string
	for range e.opts.MaxCleanupDepth {
		if !isStrictlyInside(root, dir) {
			break
		}
		empty, err := afero.IsEmpty(e.fs, dir)
		if err != nil || !empty {
			break
		}
		if err := e.fs.Remove(dir); err != nil {
			log.Debug().Err(err).Str("dir", dir).Msg("left folder in place")
			break
		}
		removed = append(removed, dir)
		dir = filepath.Dir(dir)
	}
	return removed
}

func depth(path string) int {
	return strings.Count(filepath.Clean(path), string(filepath.Separator))
}

// isStrictlyInside reports whether dir is below root, root excluded.
func isStrictlyInside(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." &&
		!strings.HasPrefix(rel, ".."+string(filepath.Separator)) &&
		!filepath.IsAbs(rel)
}
