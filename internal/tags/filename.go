package tags

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Filename patterns, tried in order. Each captures the track number and,
// where present, the remaining title.
var filenamePatterns = []*regexp.Regexp{
	// "01 - Title", "1 – Title", "01_-_Title"
	regexp.MustCompile(`^(\d{1,3})\s*[-–_]+\s*(.+)$`),
	// "01. Title", "01.Title"
	regexp.MustCompile(`^(\d{1,3})\.\s*(.+)$`),
	// "Track 01", "track_7 Title"
	regexp.MustCompile(`(?i)^track[\s_]*(\d{1,3})(?:\s*[-_.]?\s*(.*))?$`),
}

// ParseFilename extracts a leading track number from a file name (with or
// without directory and extension). title is the rest of the name with the
// number removed, or the whole stem when no pattern matches. ok reports
// whether a track number was found; a zero track never counts.
func ParseFilename(name string) (track int, title string, ok bool) {
	base := filepath.Base(name)
	stem := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if !IsMusicFile(base) {
		stem = strings.TrimSpace(base)
	}

	for _, re := range filenamePatterns {
		m := re.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n == 0 {
			continue
		}
		title = ""
		if len(m) > 2 {
			title = strings.TrimSpace(m[2])
		}
		return n, title, true
	}

	return 0, stem, false
}
