package match

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/reconcile/internal/metadata"
	"github.com/llehouerou/reconcile/internal/romaji"
	"github.com/llehouerou/reconcile/internal/similarity"
)

// outcome is the best result of one unit's search, including retries.
type outcome struct {
	cand       metadata.Candidate
	confidence int
	method     string
	found      bool
	cancelled  bool
	err        error
}

// search queries the provider with q, scores every candidate, and retries
// with alternate-script variants while the best confidence stays below the
// review threshold and a searched field looks like romanized Japanese.
// Retries keep the best result seen and stop once it reaches auto-approve.
func (m *Matcher) search(ctx context.Context, kind metadata.Kind, q metadata.Query, unit string) outcome {
	best, err := m.attempt(ctx, kind, q, romaji.MethodOriginal, unit)
	if err != nil {
		if ctx.Err() != nil {
			return outcome{cancelled: true}
		}
		log.Warn().Err(err).Str("kind", string(kind)).Str("unit", unit).Msg("provider search failed")
		return outcome{err: err}
	}

	if best.confidence >= ReviewThreshold || !hasPhoneticField(kind, q) {
		return best
	}

	variants := romaji.GenerateVariants(fieldsFor(kind, q))[1:]
	if m.opts.MaxVariants > 0 && len(variants) > m.opts.MaxVariants {
		variants = variants[:m.opts.MaxVariants]
	}

	for _, v := range variants {
		if ctx.Err() != nil {
			break
		}
		vq := metadata.Query{Artist: v.Artist, Album: v.Album, Title: v.Title}
		o, err := m.attempt(ctx, kind, vq, v.Method, unit)
		if err != nil {
			log.Debug().Err(err).Str("unit", unit).Str("method", v.Method).Msg("variant search failed")
			continue
		}
		if o.found && (!best.found || o.confidence > best.confidence) {
			best = o
		}
		if best.confidence >= AutoApproveThreshold {
			break
		}
	}
	if !best.found && ctx.Err() != nil {
		return outcome{cancelled: true}
	}
	return best
}

// attempt runs one provider call and picks the highest scoring candidate.
// Ties keep provider order.
func (m *Matcher) attempt(ctx context.Context, kind metadata.Kind, q metadata.Query, method, unit string) (outcome, error) {
	cands, err := m.provider.Search(ctx, kind, q, m.opts.Limit)
	if err != nil {
		return outcome{}, err
	}

	o := outcome{method: method}
	for _, c := range cands {
		conf := score(kind, q, c)
		if !o.found || conf > o.confidence {
			o.cand = c
			o.confidence = conf
			o.found = true
		}
	}

	log.Debug().
		Str("kind", string(kind)).
		Str("unit", unit).
		Str("method", method).
		Int("candidates", len(cands)).
		Int("confidence", o.confidence).
		Str("provider_id", o.cand.ProviderID).
		Msg("provider attempt")
	return o, nil
}

// score is the composite confidence of c against the fields of q that the
// kind searches. A field missing from q scores 0.
func score(kind metadata.Kind, q metadata.Query, c metadata.Candidate) int {
	switch kind {
	case metadata.KindArtist:
		return similarity.Composite(similarity.Pair{Source: q.Artist, Candidate: c.Name})
	case metadata.KindRelease:
		return similarity.Composite(
			similarity.Pair{Source: q.Artist, Candidate: c.Artist},
			similarity.Pair{Source: q.Album, Candidate: c.Album},
		)
	default:
		return similarity.Composite(
			similarity.Pair{Source: q.Artist, Candidate: c.Artist},
			similarity.Pair{Source: q.Album, Candidate: c.Album},
			similarity.Pair{Source: q.Title, Candidate: c.Title},
		)
	}
}

// fieldsFor keeps only the fields the kind searches so variants are not
// generated for unused text.
func fieldsFor(kind metadata.Kind, q metadata.Query) romaji.Fields {
	switch kind {
	case metadata.KindArtist:
		return romaji.Fields{Artist: q.Artist}
	case metadata.KindRelease:
		return romaji.Fields{Artist: q.Artist, Album: q.Album}
	default:
		return romaji.Fields{Artist: q.Artist, Album: q.Album, Title: q.Title}
	}
}

func hasPhoneticField(kind metadata.Kind, q metadata.Query) bool {
	f := fieldsFor(kind, q)
	return romaji.IsPhoneticLatin(f.Artist) ||
		romaji.IsPhoneticLatin(f.Album) ||
		romaji.IsPhoneticLatin(f.Title)
}

// apply records o on r. name is the candidate's value for this unit.
func (r *Result) apply(o outcome, name string) {
	switch {
	case o.cancelled:
		r.Status = StatusSkipped
		r.Reason = ReasonCancelled
	case o.err != nil:
		r.Status = StatusError
		r.Error = o.err.Error()
	case !o.found:
		r.Status = StatusNoMatch
		r.Reason = ReasonNoCandidates
		r.Method = o.method
	default:
		r.Status = StatusMatched
		r.Reason = ""
		r.Candidate = name
		r.ProviderID = o.cand.ProviderID
		r.Confidence = o.confidence
		r.Category = Categorize(o.confidence)
		r.Method = o.method
		if r.Category == CategoryAutoApprove {
			r.Corrected = name
		}
	}
}

func (r *Result) skip(reason string) {
	r.Status = StatusSkipped
	r.Reason = reason
}
