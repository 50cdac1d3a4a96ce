package match

// Phase identifies a matching phase.
type Phase string

const (
	PhaseArtists Phase = "artists"
	PhaseAlbums  Phase = "albums"
	PhaseTracks  Phase = "tracks"
)

// Progress is emitted after each unit completes.
type Progress struct {
	Phase     Phase
	Processed int
	Total     int
	Unit      string
}

// ProgressReporter receives progress events. OnProgress may be called from
// any worker goroutine and must be safe for concurrent use.
type ProgressReporter interface {
	OnProgress(Progress)
}

// ProgressFunc adapts a function to ProgressReporter.
type ProgressFunc func(Progress)

// OnProgress calls f.
func (f ProgressFunc) OnProgress(p Progress) {
	f(p)
}
