package news

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CacheObserver receives cache hit and miss events.
type CacheObserver interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// CachedProvider wraps a provider with a per-query TTL cache.
type CachedProvider struct {
	provider Provider
	cache    *gocache.Cache
	observer CacheObserver
}

// NewCachedProvider creates a cached news provider.
func NewCachedProvider(provider Provider, ttl time.Duration, observer CacheObserver) *CachedProvider {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedProvider{
		provider: provider,
		cache:    gocache.New(ttl, 2*ttl),
		observer: observer,
	}
}

// Search returns cached headlines or fetches from the underlying provider.
// Failures are not cached.
func (p *CachedProvider) Search(ctx context.Context, q Query) ([]Item, error) {
	key := q.SearchTerms()
	if cached, ok := p.cache.Get(key); ok {
		if p.observer != nil {
			p.observer.RecordCacheHit("news")
		}
		return cached.([]Item), nil
	}
	if p.observer != nil {
		p.observer.RecordCacheMiss("news")
	}

	items, err := p.provider.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	p.cache.SetDefault(key, items)
	return items, nil
}

// Flush drops every cached query.
func (p *CachedProvider) Flush() {
	p.cache.Flush()
}

// StaticProvider serves a fixed list of headlines, filtered by keyword
// substring. Selected with news.provider: static.
type StaticProvider struct {
	items []Item
}

// NewStaticProvider creates a news provider with static news items.
func NewStaticProvider(items []Item) *StaticProvider {
	return &StaticProvider{items: items}
}

// Search returns items whose title contains the keyword.
func (p *StaticProvider) Search(ctx context.Context, q Query) ([]Item, error) {
	result := []Item{}
	for _, item := range p.items {
		if containsFold(item.Title, q.Keyword) {
			result = append(result, item)
		}
	}
	return result, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
