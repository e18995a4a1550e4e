// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/newthinker/trendpulse/internal/app"
	"github.com/newthinker/trendpulse/internal/config"
	"go.uber.org/zap"
)

const day1 = `{
  "Integrated_Trends": [{"Rank": 1, "Keyword": "테스트", "Total_Mentions": 10, "Examples": ["[youtube] 좋아요"]}],
  "Platform_Trends": {"dc_lol": [{"Rank": 1, "Keyword": "페이커", "Count": 3}]}
}`

const day2 = `{
  "Integrated_Trends": [{"Rank": 1, "Keyword": "테스트", "Total_Mentions": 20, "Examples": ["[youtube] 좋아요", "[theqoo] 별로"]}],
  "Platform_Trends": {
    "dc_lol": [{"Rank": 2, "Keyword": "페이커", "Count": 4}, {"Rank": 1, "Keyword": "롤드컵", "Count": 9, "Examples": ["결승"]}],
    "dc_comic": [{"Rank": 3, "Keyword": "원피스", "Count": 2}]
  }
}`

const catalogJSON = `[
  {"video_id": "v1", "title": "게임 영상", "channel": "채널", "scraped_category_name": "Gaming ", "stats": {"views": 10}},
  {"video_id": "v2", "title": "music", "channel": "x", "scraped_category_name": "Music", "stats": {"views": 99}}
]`

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>news</title>
<item><title>테스트 기사</title><link>https://news.example/1</link><pubDate>Mon, 02 Feb 2026 01:00:00 GMT</pubDate><source url="https://yna.co.kr">연합뉴스</source></item>
</channel></rss>`

type fixture struct {
	srv           *Server
	app           *app.App
	youtubeCalls  *atomic.Int32
	newsRequested *atomic.Int32
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"trend_keywords_final_20260201.json": day1,
		"trend_keywords_final_20260202.json": day2,
		"youtube_videos_20260202.json":       catalogJSON,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var ytCalls atomic.Int32
	yt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ytCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			w.Write([]byte(`{"items": [{"id": {"videoId": "v1"}}]}`))
		case "/videos":
			w.Write([]byte(`{"items": [{"id": "v1", "snippet": {"title": "관련 영상", "channelTitle": "채널"}, "statistics": {"viewCount": "5"}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(yt.Close)

	var newsCalls atomic.Int32
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		newsCalls.Add(1)
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedXML))
	}))
	t.Cleanup(feed.Close)

	cfg := config.Defaults()
	cfg.Data.Path = dir
	cfg.Data.Watch = false
	cfg.YouTube.APIKey = "yt-key"
	cfg.YouTube.BaseURL = yt.URL
	cfg.YouTube.RequestsPerSecond = 0
	cfg.News.BaseURL = feed.URL
	if mutate != nil {
		mutate(cfg)
	}

	a, err := app.New(cfg, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("creating app: %v", err)
	}
	a.Reload(context.Background())

	srv, err := NewServer(Config{
		Host:        "localhost",
		Port:        0,
		APIKey:      cfg.Server.APIKey,
		CORSOrigins: cfg.Server.CORSOrigins,
		MetricsPath: cfg.Metrics.Path,
	}, Dependencies{App: a}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return &fixture{srv: srv, app: a, youtubeCalls: &ytCalls, newsRequested: &newsCalls}
}

func (f *fixture) do(method, target string, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	f.srv.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &body)
	return body.Error.Code
}

func TestNewServer_RequiresApp(t *testing.T) {
	if _, err := NewServer(Config{}, Dependencies{}, nil); err == nil {
		t.Error("expected error without app")
	}
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do("GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var st app.Status
	decode(t, w, &st)
	if st.Status != "ok" || st.LatestDate != "20260202" || st.Snapshots != 2 {
		t.Errorf("unexpected health %+v", st)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestServer_Rising(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do("GET", "/api/trends/rising", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var rows []map[string]any
	decode(t, w, &rows)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["change"] != "▲ 100.0%" || rows[0]["isUp"] != true {
		t.Errorf("unexpected change %v isUp %v", rows[0]["change"], rows[0]["isUp"])
	}
	if rows[0]["volume"] != "언급량 20회" {
		t.Errorf("unexpected volume %v", rows[0]["volume"])
	}
}

func TestServer_Platform(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do("GET", "/api/trends/platform?platform=dcinside", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var rows []map[string]any
	decode(t, w, &rows)
	if len(rows) != 3 {
		t.Fatalf("expected dc_lol and dc_comic merged, got %d rows", len(rows))
	}
	if rows[0]["keyword"] != "롤드컵" || rows[0]["platform"] != "dcinside" || rows[0]["desc"] != "결승" {
		t.Errorf("unexpected first row %v", rows[0])
	}

	if w := f.do("GET", "/api/trends/platform?platform=instagram", ""); w.Code != http.StatusNotFound || errorCode(t, w) != "UNKNOWN_PLATFORM" {
		t.Errorf("expected 404 UNKNOWN_PLATFORM, got %d %s", w.Code, w.Body.String())
	}
	if w := f.do("GET", "/api/trends/platform", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without platform, got %d", w.Code)
	}
}

func TestServer_TrendRows(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do("GET", "/api/trends?keyword=테스&date=20260201", "")
	var rows []map[string]any
	decode(t, w, &rows)
	if len(rows) != 1 || rows[0]["mentions"].(float64) != 10 {
		t.Errorf("unexpected rows %v", rows)
	}

	w = f.do("GET", "/api/trends?keyword=없음", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %s", w.Body.String())
	}
}

func TestServer_Contents(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do("GET", "/api/contents/rising?platform=community", "")
	var cards []map[string]any
	decode(t, w, &cards)
	if len(cards) != 1 || cards[0]["desc"] != "별로" || cards[0]["thumbnail"] != nil {
		t.Errorf("unexpected cards %v", cards)
	}
}

func TestServer_Videos(t *testing.T) {
	f := newFixture(t, nil)

	for _, path := range []string{"/api/videos?category=게임", "/api/youtube/list?category=게임"} {
		w := f.do("GET", path, "")
		var videos []map[string]any
		decode(t, w, &videos)
		if len(videos) != 1 || videos[0]["id"] != "v1" {
			t.Errorf("%s: unexpected videos %v", path, videos)
		}
	}

	w := f.do("GET", "/api/videos", "")
	var all []map[string]any
	decode(t, w, &all)
	if len(all) != 2 {
		t.Errorf("expected every video, got %d", len(all))
	}
}

func TestServer_Analysis(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do("GET", "/api/analysis?keyword=테스트", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var report struct {
		Found         bool   `json:"found"`
		TotalMentions int    `json:"totalMentions"`
		SourceType    string `json:"sourceType"`
		Comments      []struct {
			Source string `json:"source"`
			Text   string `json:"text"`
		} `json:"comments"`
		History []struct {
			Date     string `json:"date"`
			Mentions int    `json:"mentions"`
		} `json:"history"`
		Videos []map[string]any `json:"videos"`
	}
	decode(t, w, &report)

	if !report.Found || report.TotalMentions != 20 || report.SourceType != "Integrated" {
		t.Errorf("unexpected report %+v", report)
	}
	if len(report.Comments) != 2 ||
		report.Comments[0].Source != "youtube" || report.Comments[0].Text != "좋아요" ||
		report.Comments[1].Source != "theqoo" || report.Comments[1].Text != "별로" {
		t.Errorf("unexpected comments %+v", report.Comments)
	}
	if len(report.History) != 2 || report.History[1].Mentions != 20 {
		t.Errorf("unexpected history %+v", report.History)
	}
	if len(report.Videos) != 1 {
		t.Errorf("expected 1 video, got %d", len(report.Videos))
	}
}

func TestServer_AnalysisCachedWithoutRange(t *testing.T) {
	f := newFixture(t, nil)

	f.do("GET", "/api/analysis?keyword=테스트", "")
	f.do("GET", "/api/analysis?keyword=테스트", "")
	// search + videos for the first request only
	if got := f.youtubeCalls.Load(); got != 2 {
		t.Errorf("expected 2 upstream calls, got %d", got)
	}

	f.do("GET", "/api/analysis?keyword=테스트&startDate=2026-02-01&endDate=2026-02-02", "")
	f.do("GET", "/api/analysis?keyword=테스트&startDate=2026-02-01&endDate=2026-02-02", "")
	if got := f.youtubeCalls.Load(); got != 6 {
		t.Errorf("expected ranged requests to bypass the cache, got %d calls", got)
	}
}

func TestServer_AnalysisErrors(t *testing.T) {
	f := newFixture(t, nil)

	if w := f.do("GET", "/api/analysis", ""); w.Code != http.StatusBadRequest || errorCode(t, w) != "INVALID_INPUT" {
		t.Errorf("expected 400 INVALID_INPUT, got %d", w.Code)
	}
	if w := f.do("GET", "/api/analysis?keyword=x&startDate=2026/02/01", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad date, got %d", w.Code)
	}

	w := f.do("GET", "/api/analysis?keyword=없는키워드", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body struct {
		Found bool `json:"found"`
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &body)
	if body.Found || body.Error.Code != "KEYWORD_NOT_FOUND" {
		t.Errorf("unexpected not-found body %s", w.Body.String())
	}
}

func TestServer_News(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do("GET", "/api/news?keyword=테스트", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var items []map[string]any
	decode(t, w, &items)
	if len(items) != 1 || items[0]["source"] != "연합뉴스" {
		t.Errorf("unexpected news %v", items)
	}

	f.do("GET", "/api/news?keyword=테스트", "")
	if got := f.newsRequested.Load(); got != 1 {
		t.Errorf("expected cached news, got %d upstream calls", got)
	}

	if w := f.do("GET", "/api/news", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without keyword, got %d", w.Code)
	}
}

func TestServer_LLMDisabled(t *testing.T) {
	f := newFixture(t, nil)

	if w := f.do("GET", "/api/summary?keyword=테스트", ""); w.Code != http.StatusServiceUnavailable || errorCode(t, w) != "LLM_DISABLED" {
		t.Errorf("expected 503 LLM_DISABLED, got %d", w.Code)
	}
	if w := f.do("POST", "/api/generate", `{"keyword": "테스트"}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if w := f.do("POST", "/api/generate", `{not json`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad body, got %d", w.Code)
	}
}

func TestServer_SummaryAndGenerate(t *testing.T) {
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": {"role": "assistant", "content": "### 한 줄 요약\n화제입니다"}, "done": true}`))
	}))
	t.Cleanup(ollama.Close)

	f := newFixture(t, func(cfg *config.Config) {
		cfg.LLM.Provider = "ollama"
		cfg.LLM.Ollama.Endpoint = ollama.URL
	})

	w := f.do("GET", "/api/summary?keyword=테스트", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var summary map[string]any
	decode(t, w, &summary)
	if !strings.Contains(summary["summaryHtml"].(string), "<h3>한 줄 요약</h3>") {
		t.Errorf("unexpected html %v", summary["summaryHtml"])
	}

	w = f.do("POST", "/api/generate", `{"keyword": "테스트", "type": "블로그"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var gen map[string]any
	decode(t, w, &gen)
	if gen["success"] != true || gen["result"] == "" {
		t.Errorf("unexpected generate body %v", gen)
	}
}

func TestServer_AdminAuth(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Server.APIKey = "test-key"
	})

	if w := f.do("POST", "/api/admin/reload", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", w.Code)
	}

	w := f.do("POST", "/api/admin/reload", "", "X-API-Key", "test-key")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", w.Code)
	}
	var res app.ReloadResult
	decode(t, w, &res)
	if res.LatestDate != "20260202" || !res.CacheFlushed {
		t.Errorf("unexpected reload result %+v", res)
	}
}

func TestServer_AdminDisabledWithoutKey(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Server.APIKey = ""
	})

	if w := f.do("POST", "/api/admin/reload", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for reload without a configured key, got %d", w.Code)
	}
	if w := f.do("DELETE", "/api/admin/cache?keyword=테스트", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for cache without a configured key, got %d", w.Code)
	}
}

func TestServer_AdminCache(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Server.APIKey = "test-key"
	})

	f.do("GET", "/api/analysis?keyword=테스트", "")
	f.do("GET", "/api/analysis?keyword=페이커", "")
	if n := f.app.Analyzer().Cache().Len(); n != 2 {
		t.Fatalf("expected 2 cached reports, got %d", n)
	}

	w := f.do("DELETE", "/api/admin/cache?keyword=테스트", "", "X-API-Key", "test-key")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if n := f.app.Analyzer().Cache().Len(); n != 1 {
		t.Errorf("expected 1 cached report, got %d", n)
	}

	f.do("DELETE", "/api/admin/cache", "", "X-API-Key", "test-key")
	if n := f.app.Analyzer().Cache().Len(); n != 0 {
		t.Errorf("expected empty cache, got %d", n)
	}
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t, nil)
	f.do("GET", "/api/trends/rising", "")

	w := f.do("GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Error("expected http_requests_total in exposition")
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Metrics.Path = ""
	})

	if w := f.do("GET", "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestServer_CORS(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do("GET", "/api/trends/rising", "", "Origin", "http://localhost:5173")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard CORS origin, got %q", got)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	f := newFixture(t, nil)

	if w := f.do("POST", "/api/trends/rising", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
