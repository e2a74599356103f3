package rates

import (
	"context"

	"github.com/ratewatch/ratewatch/pkg/ttlcache"
)

// CachedProvider keeps repeated identical lookups off the upstream by
// consulting a TTL cache first. Cache problems never fail a lookup; the
// cache package absorbs them itself.
type CachedProvider struct {
	Upstream Provider
	Cache    *ttlcache.Cache[Quote]
}

func (p *CachedProvider) Latest(ctx context.Context, base string) (Quote, error) {
	key := NormalizeBase(base)

	if quote, ok := p.Cache.Get(key); ok {
		return quote, nil
	}

	quote, err := p.Upstream.Latest(ctx, key)
	if err != nil {
		return Quote{}, err
	}

	p.Cache.Set(key, quote)
	return quote, nil
}
