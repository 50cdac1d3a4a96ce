package match

// Correction is the read-only view of one unit's outcome handed to the next
// phase.
type Correction struct {
	Original    string
	Corrected   string
	ProviderID  string
	ReleaseDate string
	Accepted    bool
	Usable      bool
}

// Corrections is an immutable lookup of a phase's outcomes by unit key.
type Corrections struct {
	byKey map[string]Correction
}

// ArtistCorrections builds the lookup phase 2 and 3 resolve artists with.
func ArtistCorrections(results []ArtistResult) Corrections {
	c := Corrections{byKey: make(map[string]Correction, len(results))}
	for i := range results {
		c.byKey[results[i].Key] = correctionOf(&results[i].Result, "")
	}
	return c
}

// AlbumCorrections builds the lookup phase 3 resolves albums with. It must be
// built after canonicalization.
func AlbumCorrections(results []AlbumResult) Corrections {
	c := Corrections{byKey: make(map[string]Correction, len(results))}
	for i := range results {
		c.byKey[results[i].Key] = correctionOf(&results[i].Result, results[i].ReleaseDate)
	}
	return c
}

func correctionOf(r *Result, releaseDate string) Correction {
	return Correction{
		Original:    r.Original,
		Corrected:   r.Corrected,
		ProviderID:  r.ProviderID,
		ReleaseDate: releaseDate,
		Accepted:    r.Accepted(),
		Usable:      r.Usable(),
	}
}

// Lookup returns the correction for key.
func (c Corrections) Lookup(key string) (Correction, bool) {
	corr, ok := c.byKey[key]
	return corr, ok
}

// Resolve returns the corrected value for key when the correction was
// accepted, and fallback otherwise.
func (c Corrections) Resolve(key, fallback string) string {
	if corr, ok := c.byKey[key]; ok && corr.Accepted && corr.Corrected != "" {
		return corr.Corrected
	}
	return fallback
}

// Usable reports whether the unit at key may feed dependent units.
func (c Corrections) Usable(key string) bool {
	corr, ok := c.byKey[key]
	return ok && corr.Usable
}

// Len returns the number of units.
func (c Corrections) Len() int {
	return len(c.byKey)
}
