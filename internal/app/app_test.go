package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/newthinker/trendpulse/internal/config"
	"github.com/newthinker/trendpulse/internal/core"
	"github.com/newthinker/trendpulse/internal/news"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day1 = `{
  "Integrated_Trends": [{"Rank": 1, "Keyword": "테스트", "Score": 10, "Total_Mentions": 10, "Examples": ["[youtube] 좋아요"]}],
  "Platform_Trends": {"dc_lol": [{"Rank": 1, "Keyword": "페이커", "Count": 3}]}
}`

const day2 = `{
  "Integrated_Trends": [{"Rank": 1, "Keyword": "테스트", "Score": 20, "Total_Mentions": 20, "Examples": ["[theqoo] 별로"]}],
  "Platform_Trends": {"dc_lol": [{"Rank": 1, "Keyword": "페이커", "Count": 4}]}
}`

const catalog = `[{"video_id": "v1", "title": "게임 영상", "channel": "채널", "scraped_category_name": "Gaming", "stats": {"views": 10}}]`

func testConfig(dir string) *config.Config {
	cfg := config.Defaults()
	cfg.Data.Path = dir
	cfg.Data.Watch = false
	cfg.Data.ReloadInterval = 0
	cfg.YouTube.APIKey = ""
	cfg.Platforms.Aliases = map[string]string{"dcinside": "dc"}
	return cfg
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(cfg, nil, nil)
	require.NoError(t, err)
	return a
}

func TestApp_New(t *testing.T) {
	a := newApp(t, testConfig(t.TempDir()))

	st := a.Status()
	assert.Equal(t, "degraded", st.Status)
	assert.Equal(t, "disabled", st.LLM)
	assert.Equal(t, 0, st.Snapshots)
	assert.NotNil(t, st.Platforms)
	assert.False(t, a.Analyzer().LLMEnabled())
}

func TestApp_New_InvalidConfig(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Data.Source = "ftp"
	_, err := New(cfg, nil, nil)
	assert.Error(t, err)

	cfg = testConfig(t.TempDir())
	cfg.LLM.Provider = "unknown"
	_, err = New(cfg, nil, nil)
	assert.Error(t, err)
}

func TestApp_New_WithLLM(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Ollama.Endpoint = "http://127.0.0.1:11434"

	a := newApp(t, cfg)
	assert.Equal(t, "ollama", a.Status().LLM)
	assert.True(t, a.Analyzer().LLMEnabled())
}

func TestApp_Reload(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trend_keywords_final_20260201.json", day1)
	writeFile(t, dir, "trend_keywords_final_20260202.json", day2)
	writeFile(t, dir, "youtube_videos_20260202.json", catalog)

	a := newApp(t, testConfig(dir))
	res := a.Reload(context.Background())

	assert.Equal(t, "20260202", res.LatestDate)
	assert.Equal(t, 2, res.Snapshots)
	assert.Equal(t, "youtube_videos_20260202.json", res.CatalogFile)
	assert.True(t, res.CacheFlushed)
	assert.Empty(t, res.Warnings)

	st := a.Status()
	assert.Equal(t, "ok", st.Status)
	assert.Equal(t, []string{"dc_lol"}, st.Platforms)
	assert.Len(t, a.Catalog().List("게임"), 1)
}

func TestApp_ReloadFlushesReports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trend_keywords_final_20260201.json", day1)

	a := newApp(t, testConfig(dir))
	a.Reload(context.Background())

	first, err := a.Analyzer().Analyze(context.Background(), "테스트", core.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 10, first.TotalMentions)
	assert.Equal(t, 1, a.Analyzer().Cache().Len())

	writeFile(t, dir, "trend_keywords_final_20260202.json", day2)
	a.Reload(context.Background())
	assert.Equal(t, 0, a.Analyzer().Cache().Len())

	second, err := a.Analyzer().Analyze(context.Background(), "테스트", core.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 20, second.TotalMentions)
}

func TestApp_Reload_MissingDir(t *testing.T) {
	a := newApp(t, testConfig(filepath.Join(t.TempDir(), "missing")))

	res := a.Reload(context.Background())
	assert.Equal(t, 0, res.Snapshots)
	assert.Equal(t, "", res.LatestDate)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "missing")
}

func TestApp_Reload_DanglingAlias(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trend_keywords_final_20260201.json", day1)

	cfg := testConfig(dir)
	cfg.Platforms.Aliases = map[string]string{"dcinside": "dc", "natepan": "nate"}
	a := newApp(t, cfg)

	res := a.Reload(context.Background())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "natepan->nate")
	assert.NotContains(t, res.Warnings[0], "dcinside")
}

func TestApp_StartWatchesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trend_keywords_final_20260201.json", day1)

	cfg := testConfig(dir)
	cfg.Data.Watch = true
	a := newApp(t, cfg)
	a.debounce = 20 * time.Millisecond
	a.Reload(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "trend_keywords_final_20260202.json", day2)

	require.Eventually(t, func() bool {
		return a.Store().LatestDate() == "20260202"
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestApp_StartPolls(t *testing.T) {
	dir := t.TempDir()

	cfg := testConfig(dir)
	cfg.Data.ReloadInterval = 30 * time.Millisecond
	a := newApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Start(ctx)

	writeFile(t, dir, "trend_keywords_final_20260201.json", day1)
	require.Eventually(t, func() bool {
		return a.Store().LatestDate() == "20260201"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestApp_StartTwice(t *testing.T) {
	a := newApp(t, testConfig(t.TempDir()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Start(ctx)

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.running
	}, time.Second, 5*time.Millisecond)

	err := a.Start(ctx)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "already running"))

	a.Stop()
}

func TestRelevant(t *testing.T) {
	assert.True(t, relevant(fsnotify.Event{Name: "a/trend_keywords_final_20260101.json", Op: fsnotify.Write}))
	assert.True(t, relevant(fsnotify.Event{Name: "a/youtube_videos.JSON", Op: fsnotify.Create}))
	assert.False(t, relevant(fsnotify.Event{Name: "a/notes.txt", Op: fsnotify.Write}))
	assert.False(t, relevant(fsnotify.Event{Name: "a/trend_keywords_final_20260101.json", Op: fsnotify.Chmod}))
}

func TestApp_StaticNews(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.News.Provider = "static"
	cfg.News.Items = []config.NewsItemConfig{
		{Title: "테스트 신제품 출시", Link: "https://example.com/1", Source: "KBS"},
		{Title: "다른 소식", Link: "https://example.com/2", Source: "MBC"},
	}
	a := newApp(t, cfg)

	items, err := a.News().Search(context.Background(), news.Query{Keyword: "테스트"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "KBS", items[0].Source)
}
