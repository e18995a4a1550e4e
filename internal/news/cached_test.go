package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/trendpulse/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Search(ctx context.Context, q Query) ([]Item, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return []Item{{Title: q.Keyword, Source: DefaultSource}}, nil
}

func TestCachedProvider(t *testing.T) {
	base := &countingProvider{}
	cached := NewCachedProvider(base, time.Hour, nil)
	ctx := context.Background()

	first, err := cached.Search(ctx, Query{Keyword: "두쫀쿠"})
	require.NoError(t, err)
	second, err := cached.Search(ctx, Query{Keyword: "두쫀쿠"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, base.calls)

	// a date bound is a different query
	_, err = cached.Search(ctx, Query{Keyword: "두쫀쿠", Range: core.DateRange{Start: "2026-02-01"}})
	require.NoError(t, err)
	assert.Equal(t, 2, base.calls)

	cached.Flush()
	_, _ = cached.Search(ctx, Query{Keyword: "두쫀쿠"})
	assert.Equal(t, 3, base.calls)
}

func TestCachedProvider_Expiry(t *testing.T) {
	base := &countingProvider{}
	cached := NewCachedProvider(base, 20*time.Millisecond, nil)
	ctx := context.Background()

	cached.Search(ctx, Query{Keyword: "a"})
	time.Sleep(40 * time.Millisecond)
	cached.Search(ctx, Query{Keyword: "a"})

	assert.Equal(t, 2, base.calls)
}

func TestCachedProvider_ErrorsNotCached(t *testing.T) {
	base := &countingProvider{err: errors.New("down")}
	cached := NewCachedProvider(base, time.Hour, nil)
	ctx := context.Background()

	_, err := cached.Search(ctx, Query{Keyword: "a"})
	assert.Error(t, err)
	_, err = cached.Search(ctx, Query{Keyword: "a"})
	assert.Error(t, err)
	assert.Equal(t, 2, base.calls)
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider([]Item{
		{Title: "두쫀쿠 품절 대란"},
		{Title: "날씨"},
	})

	items, err := p.Search(context.Background(), Query{Keyword: "두쫀쿠"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "두쫀쿠 품절 대란", items[0].Title)

	items, _ = p.Search(context.Background(), Query{Keyword: "없음"})
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
