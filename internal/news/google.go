package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/rss"
	"github.com/newthinker/trendpulse/internal/core"
	"go.uber.org/zap"
)

const (
	baseURL = "https://news.google.com/rss/search"

	// DefaultSource names items whose feed entry carries no publisher.
	DefaultSource = "Google News"
	defaultLimit  = 5
)

// UpstreamObserver records outbound calls. *metrics.Registry satisfies it.
type UpstreamObserver interface {
	RecordUpstream(service string, err error, duration float64)
}

// GoogleProvider searches the Korean edition of Google News.
type GoogleProvider struct {
	client   *http.Client
	baseURL  string
	limit    int
	observer UpstreamObserver
	logger   *zap.Logger
}

// NewGoogleProvider creates a provider returning at most limit items.
func NewGoogleProvider(limit int, timeout time.Duration, observer UpstreamObserver, logger *zap.Logger) *GoogleProvider {
	if limit <= 0 {
		limit = defaultLimit
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleProvider{
		client:   &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		limit:    limit,
		observer: observer,
		logger:   logger.Named("news"),
	}
}

// NewGoogleProviderWithBaseURL creates a provider with custom base URL (for testing)
func NewGoogleProviderWithBaseURL(url string) *GoogleProvider {
	p := NewGoogleProvider(0, 0, nil, nil)
	p.baseURL = url
	return p
}

// SetBaseURL points the provider at another RSS search endpoint.
func (p *GoogleProvider) SetBaseURL(url string) {
	if url != "" {
		p.baseURL = url
	}
}

// Search returns the first items of the RSS search feed.
func (p *GoogleProvider) Search(ctx context.Context, q Query) ([]Item, error) {
	start := time.Now()
	items, err := p.search(ctx, q)
	if p.observer != nil {
		p.observer.RecordUpstream("news", err, time.Since(start).Seconds())
	}
	if err != nil {
		p.logger.Warn("news search failed", zap.String("query", q.SearchTerms()), zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (p *GoogleProvider) search(ctx context.Context, q Query) ([]Item, error) {
	params := url.Values{}
	params.Set("q", q.SearchTerms())
	params.Set("hl", "ko")
	params.Set("gl", "KR")
	params.Set("ceid", "KR:ko")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrUpstreamUnavailable, fmt.Errorf("fetching feed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrUpstreamUnavailable,
			fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	parser := &rss.Parser{}
	feed, err := parser.Parse(resp.Body)
	if err != nil {
		return nil, core.WrapError(core.ErrUpstreamUnavailable, fmt.Errorf("parsing feed: %w", err))
	}

	n := len(feed.Items)
	if n > p.limit {
		n = p.limit
	}
	items := make([]Item, 0, n)
	for _, it := range feed.Items[:n] {
		source := DefaultSource
		if it.Source != nil && strings.TrimSpace(it.Source.Title) != "" {
			source = strings.TrimSpace(it.Source.Title)
		}
		items = append(items, Item{
			Title:   it.Title,
			Link:    it.Link,
			PubDate: it.PubDate,
			Source:  source,
		})
	}
	return items, nil
}
