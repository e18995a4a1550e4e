// Package youtube searches the YouTube Data API and serves the scraped
// video catalog.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/trendpulse/internal/core"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	baseURL = "https://www.googleapis.com/youtube/v3"

	defaultRegion     = "KR"
	defaultMaxResults = 3
)

// Video is a related video returned by Search. Views stays a string as
// the API reports it.
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	Views       string `json:"views"`
	Thumbnail   string `json:"thumbnail"`
	PublishTime string `json:"publish_time"`
}

// SearchQuery selects recent videos for a keyword, optionally bounded by
// publish date.
type SearchQuery struct {
	Keyword string
	Range   core.DateRange
}

// UpstreamObserver records outbound calls. *metrics.Registry satisfies it.
type UpstreamObserver interface {
	RecordUpstream(service string, err error, duration float64)
}

// Options configures a Client. Zero values pick the defaults.
type Options struct {
	APIKey            string
	BaseURL           string
	Region            string
	MaxResults        int
	RequestsPerSecond float64
	Timeout           time.Duration
	Observer          UpstreamObserver
	Logger            *zap.Logger
}

// Client calls the search and videos endpoints of the Data API.
type Client struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	region     string
	maxResults int
	limiter    *rate.Limiter
	observer   UpstreamObserver
	logger     *zap.Logger
}

// New creates a Client. Without an API key Search returns no videos and
// makes no calls.
func New(opts Options) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		region:     defaultRegion,
		maxResults: defaultMaxResults,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		observer:   opts.Observer,
		logger:     opts.Logger,
	}
	if opts.BaseURL != "" {
		c.baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Region != "" {
		c.region = opts.Region
	}
	if opts.MaxResults > 0 {
		c.maxResults = opts.MaxResults
	}
	if opts.Timeout > 0 {
		c.client.Timeout = opts.Timeout
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.Named("youtube")
	return c
}

// NewWithBaseURL creates a Client against a custom base URL (for testing).
func NewWithBaseURL(apiKey, url string) *Client {
	return New(Options{APIKey: apiKey, BaseURL: url})
}

func (c *Client) Name() string {
	return "youtube"
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type searchResponse struct {
	Items *[]struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Search returns the newest videos for the query, newest first. A
// response without items (quota or key problems) is an
// ErrUpstreamUnavailable.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]Video, error) {
	if !c.Enabled() {
		return []Video{}, nil
	}

	start := time.Now()
	videos, err := c.search(ctx, q)
	if c.observer != nil {
		c.observer.RecordUpstream(c.Name(), err, time.Since(start).Seconds())
	}
	if err != nil {
		c.logger.Warn("video search failed", zap.String("keyword", q.Keyword), zap.Error(err))
		return nil, err
	}
	return videos, nil
}

func (c *Client) search(ctx context.Context, q SearchQuery) ([]Video, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", q.Keyword)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(c.maxResults))
	params.Set("key", c.apiKey)
	params.Set("regionCode", c.region)
	params.Set("order", "date")
	if after, ok := q.Range.StartTime(); ok {
		params.Set("publishedAfter", after.Format(time.RFC3339))
	}
	if before, ok := q.Range.EndTime(); ok {
		params.Set("publishedBefore", before.Format(time.RFC3339))
	}

	var found searchResponse
	if err := c.get(ctx, "/search", params, &found); err != nil {
		return nil, err
	}
	if found.Items == nil {
		return nil, core.WrapError(core.ErrUpstreamUnavailable,
			fmt.Errorf("youtube search response has no items"))
	}

	ids := make([]string, 0, len(*found.Items))
	for _, item := range *found.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return []Video{}, nil
	}

	params = url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", c.apiKey)

	var details videosResponse
	if err := c.get(ctx, "/videos", params, &details); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(details.Items))
	for _, item := range details.Items {
		videos = append(videos, Video{
			ID:          item.ID,
			Title:       item.Snippet.Title,
			Channel:     item.Snippet.ChannelTitle,
			Views:       item.Statistics.ViewCount,
			Thumbnail:   item.Snippet.Thumbnails.Medium.URL,
			PublishTime: item.Snippet.PublishedAt,
		})
	}
	return videos, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return core.WrapError(core.ErrUpstreamUnavailable, fmt.Errorf("fetching %s: %w", path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return core.WrapError(core.ErrUpstreamUnavailable,
			fmt.Errorf("%s: unexpected status %d: %s", path, resp.StatusCode, msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return core.WrapError(core.ErrUpstreamUnavailable, fmt.Errorf("decoding %s response: %w", path, err))
	}
	return nil
}
