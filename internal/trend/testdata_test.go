package trend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/trendpulse/internal/storage/archive"
	"github.com/stretchr/testify/require"
)

const snapshot0201 = `{
  "Integrated_Trends": [
    {"Rank": 2, "Keyword": "두쫀쿠", "Score": 40, "Total_Mentions": 120, "Examples": ["[youtube] 맛있다"]},
    {"Rank": 1, "Keyword": "테스트", "Score": 50, "Total_Mentions": 10, "Examples": ["[theqoo] 처음 봄"]}
  ],
  "Platform_Trends": {
    "youtube": [{"Rank": 1, "Keyword": "테스트", "Count": 7, "Examples": ["영상 댓글"]}],
    "dc_lol": [{"Rank": 1, "keyword": "페이커", "Count": 30}]
  }
}`

const snapshot0202 = `{
  "Integrated_Trends": [
    {"Rank": 1, "Keyword": "테스트", "Score": 100, "Total_Mentions": 20, "Examples": ["[youtube] 좋아요", "[theqoo] 별로"]}
  ],
  "Platform_Trends": {
    "youtube": [{"Rank": 1, "Keyword": "테스트", "Total_Mentions": 9}],
    "dc_lol": [{"Rank": 1, "Keyword": "페이커", "Count": 31, "Examples": ["대상혁"]}],
    "theqoo": [{"Rank": 1, "Keyword": "두쫀쿠", "Count": 5}],
    "dc_comic": [{"Rank": 1, "Keyword": "원피스", "Total_Mentions": 12}],
    "meta": "not a list"
  }
}`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return dir
}

func loadedStore(t *testing.T, files map[string]string) (*Store, error) {
	t.Helper()
	src, err := archive.NewLocalFS(writeFiles(t, files))
	require.NoError(t, err)
	store := NewStore(src, nil)
	return store, store.Load(context.Background())
}
