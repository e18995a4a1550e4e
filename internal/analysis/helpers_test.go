package analysis

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/newthinker/trendpulse/internal/llm"
	"github.com/newthinker/trendpulse/internal/resolver"
	"github.com/newthinker/trendpulse/internal/trend"
	"github.com/newthinker/trendpulse/internal/youtube"
)

func fixtureResolver() *resolver.Resolver {
	store := trend.NewStore(nil, nil)
	store.Replace(
		&trend.Snapshot{
			Date: "20260201",
			Integrated: []trend.Entry{
				{Rank: 1, Keyword: "테스트", Mentions: 10, Score: 10, Examples: []string{"[youtube] 좋아요"}},
			},
		},
		&trend.Snapshot{
			Date: "20260202",
			Integrated: []trend.Entry{
				{Rank: 1, Keyword: "테스트", Mentions: 20, Score: 42.5, Examples: []string{"[youtube] 좋아요", "[theqoo] 별로"}},
			},
			Platforms: []trend.PlatformTrend{
				{Key: "dc_lol", Entries: []trend.Entry{{Rank: 3, Keyword: "페이커", Mentions: 7, Examples: []string{"[dc_lol] 대상혁 대상혁"}}}},
			},
		},
	)
	return resolver.New(store)
}

type countingSearcher struct {
	calls  atomic.Int32
	err    error
	videos []youtube.Video
	mu     sync.Mutex
	last   youtube.SearchQuery
}

func (s *countingSearcher) Search(ctx context.Context, q youtube.SearchQuery) ([]youtube.Video, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.last = q
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.videos, nil
}

type stubLLM struct {
	reply string
	err   error
	calls int
	last  llm.ChatRequest
}

func (s *stubLLM) Name() string { return "stub" }

func (s *stubLLM) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Content: s.reply}, nil
}
