// Package analysis assembles keyword reports, summaries and generated
// marketing copy.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/trendpulse/internal/core"
	"github.com/newthinker/trendpulse/internal/llm"
	"github.com/newthinker/trendpulse/internal/news"
	"github.com/newthinker/trendpulse/internal/resolver"
	"github.com/newthinker/trendpulse/internal/youtube"
	"go.uber.org/zap"
)

// Report is the /api/analysis payload. Cached reports are shared between
// requests and must not be modified.
type Report struct {
	Found         bool                    `json:"found"`
	Keyword       string                  `json:"keyword"`
	Rank          int                     `json:"rank"`
	TotalMentions int                     `json:"totalMentions"`
	Score         float64                 `json:"score"`
	SourceType    string                  `json:"sourceType"`
	History       []resolver.HistoryPoint `json:"history"`
	Comments      []Comment               `json:"comments"`
	WordCloud     []WordCount             `json:"wordCloud"`
	Videos        []youtube.Video         `json:"videos"`
	Warnings      []string                `json:"warnings,omitempty"`
	GeneratedAt   time.Time               `json:"generatedAt"`
}

// KeywordSource resolves keywords against the loaded snapshots.
type KeywordSource interface {
	Resolve(keyword string) (*resolver.Match, error)
	History(keyword string) []resolver.HistoryPoint
	Comments(keyword string) []string
}

// VideoSearcher finds related videos.
type VideoSearcher interface {
	Search(ctx context.Context, q youtube.SearchQuery) ([]youtube.Video, error)
}

// Recorder receives analysis timings. *metrics.Registry satisfies it.
type Recorder interface {
	RecordAnalysis(duration float64)
}

// Deps are the collaborators of an Analyzer. Videos, News, LLM and
// Recorder are optional.
type Deps struct {
	Keywords KeywordSource
	Videos   VideoSearcher
	News     news.Provider
	LLM      llm.Provider
	Cache    *Cache
	Recorder Recorder
	Logger   *zap.Logger
}

// Analyzer builds keyword reports.
type Analyzer struct {
	keywords KeywordSource
	videos   VideoSearcher
	news     news.Provider
	llm      llm.Provider
	cache    *Cache
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an Analyzer. A nil Cache gets a fresh one.
func New(deps Deps) *Analyzer {
	a := &Analyzer{
		keywords: deps.Keywords,
		videos:   deps.Videos,
		news:     deps.News,
		llm:      deps.LLM,
		cache:    deps.Cache,
		recorder: deps.Recorder,
		logger:   deps.Logger,
		now:      time.Now,
	}
	if a.cache == nil {
		a.cache = NewCache(nil)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	a.logger = a.logger.Named("analysis")
	return a
}

// Cache returns the report cache.
func (a *Analyzer) Cache() *Cache {
	return a.cache
}

// LLMEnabled reports whether summaries and generation are available.
func (a *Analyzer) LLMEnabled() bool {
	return a.llm != nil
}

// Analyze returns the report for keyword. Without a date range the
// report is served from the cache; any bound forces a fresh compute.
// The range only narrows the related video search.
func (a *Analyzer) Analyze(ctx context.Context, keyword string, r core.DateRange) (*Report, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, core.WrapError(core.ErrInvalidInput, fmt.Errorf("keyword is required"))
	}

	if !r.IsZero() {
		return a.compute(ctx, keyword, r)
	}
	return a.cache.GetOrCompute(ctx, keyword, func(ctx context.Context) (*Report, error) {
		// Waiters share this compute, so it must outlive the first caller.
		return a.compute(context.WithoutCancel(ctx), keyword, r)
	})
}

func (a *Analyzer) compute(ctx context.Context, keyword string, r core.DateRange) (*Report, error) {
	start := a.now()
	defer func() {
		if a.recorder != nil {
			a.recorder.RecordAnalysis(time.Since(start).Seconds())
		}
	}()

	match, err := a.keywords.Resolve(keyword)
	if err != nil {
		return nil, err
	}

	raw := a.keywords.Comments(keyword)
	report := &Report{
		Found:         true,
		Keyword:       match.Keyword,
		Rank:          match.Rank,
		TotalMentions: match.Mentions,
		Score:         match.Score,
		SourceType:    match.SourceType,
		History:       a.keywords.History(keyword),
		Comments:      ParseComments(raw),
		WordCloud:     WordCloud(raw, keyword),
		Videos:        []youtube.Video{},
		GeneratedAt:   start.UTC(),
	}

	if a.videos != nil {
		videos, err := a.videos.Search(ctx, youtube.SearchQuery{Keyword: keyword, Range: r})
		if err != nil {
			a.logger.Warn("related videos unavailable",
				zap.String("keyword", keyword),
				zap.Stringer("range", r),
				zap.Error(err),
			)
			report.Warnings = append(report.Warnings, "related videos unavailable: "+err.Error())
		} else {
			report.Videos = videos
		}
	}

	a.logger.Debug("report computed",
		zap.String("keyword", keyword),
		zap.String("source", match.SourceType),
		zap.Int("comments", len(report.Comments)),
		zap.Int("videos", len(report.Videos)),
	)
	return report, nil
}
