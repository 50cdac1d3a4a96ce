package mbcache

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/reconcile/internal/metadata"
)

type cachedProvider struct {
	next  metadata.Provider
	cache *Cache
}

// Wrap returns a Provider that answers from cache when it can and stores
// every successful response of next. Errors are never cached; empty results
// are. A failing cache degrades to calling next directly.
func Wrap(next metadata.Provider, cache *Cache) metadata.Provider {
	return &cachedProvider{next: next, cache: cache}
}

func (p *cachedProvider) Search(
	ctx context.Context,
	kind metadata.Kind,
	q metadata.Query,
	limit int,
) ([]metadata.Candidate, error) {
	key := Key(q, limit)

	cands, ok, err := p.cache.Get(ctx, kind, key)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Str("key", key).Msg("cache read failed")
	}
	if ok {
		log.Debug().Str("kind", string(kind)).Str("key", key).Msg("cache hit")
		return cands, nil
	}

	cands, err = p.next.Search(ctx, kind, q, limit)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, kind, key, cands); err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Str("key", key).Msg("cache write failed")
	}
	return cands, nil
}
