package match

// ScannedFile is one audio file as read by the scanner. It is immutable once
// scanned; the matcher only reads it.
type ScannedFile struct {
	Path        string `json:"path"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	Title       string `json:"title"`
	TrackNumber int    `json:"track_number,omitempty"`
	Year        int    `json:"year,omitempty"`
	// On-disk directory names, root/FolderArtist/FolderAlbum/file.
	FolderArtist string `json:"folder_artist,omitempty"`
	FolderAlbum  string `json:"folder_album,omitempty"`
}

// Status is the terminal state of a unit after a pass.
type Status string

const (
	StatusMatched  Status = "matched"
	StatusNoMatch  Status = "no_match"
	StatusError    Status = "error"
	StatusSkipped  Status = "skipped"
	StatusApproved Status = "approved" // manual override
	StatusRejected Status = "rejected" // manual override
)

// Category buckets a matched unit by confidence.
type Category string

const (
	CategoryAutoApprove Category = "auto_approve"
	CategoryReview      Category = "review"
	CategoryManual      Category = "manual"
)

// Confidence thresholds.
const (
	AutoApproveThreshold = 90
	ReviewThreshold      = 70
)

// Skip reasons.
const (
	ReasonMissingArtist = "Missing artist metadata"
	ReasonMissingAlbum  = "Missing album metadata"
	ReasonMissingTitle  = "Missing title metadata"
	ReasonArtistExcl    = "Artist not matched"
	ReasonAlbumExcl     = "Album not matched"
	ReasonCancelled     = "Cancelled"
	ReasonNoCandidates  = "No candidates found"
)

// Categorize maps a confidence to its category.
func Categorize(confidence int) Category {
	switch {
	case confidence >= AutoApproveThreshold:
		return CategoryAutoApprove
	case confidence >= ReviewThreshold:
		return CategoryReview
	default:
		return CategoryManual
	}
}

// Result is the outcome of matching one unit (an artist, an album or a
// track).
type Result struct {
	Key      string `json:"key"`
	Original string `json:"original"`
	// Corrected is set only once the match is accepted, automatically or
	// through Approve.
	Corrected string `json:"corrected,omitempty"`
	// Candidate is the best provider name found, accepted or not.
	Candidate  string   `json:"candidate,omitempty"`
	ProviderID string   `json:"provider_id,omitempty"`
	Confidence int      `json:"confidence"`
	Category   Category `json:"category,omitempty"`
	Status     Status   `json:"status"`
	Method     string   `json:"method,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Error      string   `json:"error,omitempty"`
	FileCount  int      `json:"file_count"`
}

// Accepted reports whether the correction should cascade to dependent units.
func (r *Result) Accepted() bool {
	return r.Status == StatusApproved ||
		(r.Status == StatusMatched && r.Category == CategoryAutoApprove)
}

// Usable reports whether dependent units may be matched at all. Matches
// awaiting review are usable but cascade their original value.
func (r *Result) Usable() bool {
	return r.Status == StatusMatched || r.Status == StatusApproved
}

// Approve records a manual acceptance. An empty corrected value accepts the
// current candidate; an empty providerID keeps the current one.
func (r *Result) Approve(corrected, providerID string) {
	if corrected == "" {
		corrected = r.Candidate
	}
	if corrected == "" {
		corrected = r.Original
	}
	r.Corrected = corrected
	if providerID != "" {
		r.ProviderID = providerID
	}
	r.Status = StatusApproved
	r.Reason = ""
	r.Error = ""
}

// Reject records a manual rejection. Dependent units are excluded on the
// next pass.
func (r *Result) Reject() {
	r.Corrected = ""
	r.Status = StatusRejected
}

// ArtistResult is the outcome for one unique artist.
type ArtistResult struct {
	Result
	// DisplayName is the most frequent on-disk folder name for the artist.
	DisplayName string `json:"display_name,omitempty"`
}

// AlbumResult is the outcome for one (artist, album) group.
type AlbumResult struct {
	Result
	// Artist is the artist name the search used: the corrected name when
	// the artist match was accepted, the original otherwise.
	Artist         string `json:"artist"`
	OriginalArtist string `json:"original_artist"`
	ReleaseDate    string `json:"release_date,omitempty"`
	// CanonicalKey is the key of the album this one was merged into.
	CanonicalKey string `json:"canonical_key,omitempty"`
}

// TrackResult is the outcome for one file.
type TrackResult struct {
	Result
	Path string `json:"path"`
	// The corrected triple used for renaming.
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	Title       string `json:"title"`
	RecordingID string `json:"recording_id,omitempty"`
	ReleaseID   string `json:"release_id,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
	TrackNumber int    `json:"track_number,omitempty"`
}

// CanonicalGroup lists album keys that resolved to the same release.
type CanonicalGroup struct {
	ReleaseID    string   `json:"release_id"`
	CanonicalKey string   `json:"canonical_key"`
	Members      []string `json:"members"`
}
