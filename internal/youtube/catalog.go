package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/newthinker/trendpulse/internal/storage/archive"
	"go.uber.org/zap"
)

// CategoryAll is the UI category that disables filtering.
const CategoryAll = "전체"

// CategoryMap maps the UI's Korean category buttons to scraped category
// names.
var CategoryMap = map[string][]string{
	"게임":  {"Gaming"},
	"음악":  {"Music"},
	"라이프": {"Howto_Style"},
	"일상":  {"People_Blogs"},
	"코미디": {"Comedy", "Entertainment"},
	CategoryAll: {},
}

var hangul = regexp.MustCompile(`[ㄱ-ㅎㅏ-ㅣ가-힣]`)

// CatalogVideo is one entry of the scraped video list.
type CatalogVideo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	Views       int64  `json:"views"`
	PublishTime string `json:"publish_time"`
	Category    string `json:"category"`
	Thumbnail   string `json:"thumbnail"`
}

type scrapedVideo struct {
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Channel  string `json:"channel"`
	Category string `json:"scraped_category_name"`
	Publish  string `json:"publish_time"`
	Stats    struct {
		Views float64 `json:"views"`
	} `json:"stats"`
}

// Catalog holds the newest scraped video file from the snapshot source.
type Catalog struct {
	source archive.Storage
	prefix string
	logger *zap.Logger

	mu     sync.RWMutex
	file   string
	videos []scrapedVideo
}

// NewCatalog creates a catalog reading files named <prefix>*.json.
func NewCatalog(source archive.Storage, prefix string, logger *zap.Logger) *Catalog {
	if prefix == "" {
		prefix = "youtube_videos"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{source: source, prefix: prefix, logger: logger.Named("catalog")}
}

// Load reads the lexicographically greatest catalog file. No file leaves
// the catalog empty without error.
func (c *Catalog) Load(ctx context.Context) error {
	paths, err := c.source.List(ctx, "")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.set("", nil)
			return nil
		}
		return fmt.Errorf("listing catalog files: %w", err)
	}

	var newest string
	for _, p := range paths {
		if strings.Contains(p, "/") {
			continue
		}
		name := path.Base(p)
		if strings.HasPrefix(name, c.prefix) && strings.HasSuffix(name, ".json") && p > newest {
			newest = p
		}
	}
	if newest == "" {
		c.set("", nil)
		return nil
	}

	data, err := c.source.Read(ctx, newest)
	if err != nil {
		return fmt.Errorf("reading %s: %w", newest, err)
	}
	var videos []scrapedVideo
	if err := json.Unmarshal(data, &videos); err != nil {
		return fmt.Errorf("decoding %s: %w", newest, err)
	}

	c.set(newest, videos)
	c.logger.Info("video catalog loaded", zap.String("file", newest), zap.Int("videos", len(videos)))
	return nil
}

func (c *Catalog) set(file string, videos []scrapedVideo) {
	c.mu.Lock()
	c.file = file
	c.videos = videos
	c.mu.Unlock()
}

// File returns the loaded catalog file, or "".
func (c *Catalog) File() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.file
}

// List returns the videos of a UI category, de-duplicated by video ID,
// Korean titles or channels first, then by views descending. Unknown
// categories match nothing.
func (c *Catalog) List(category string) []CatalogVideo {
	if category == "" {
		category = CategoryAll
	}

	c.mu.RLock()
	videos := c.videos
	c.mu.RUnlock()

	var targets []string
	filter := category != CategoryAll
	if filter {
		targets = CategoryMap[category]
	}

	seen := make(map[string]struct{}, len(videos))
	picked := make([]scrapedVideo, 0, len(videos))
	for _, v := range videos {
		if filter && !contains(targets, strings.TrimSpace(v.Category)) {
			continue
		}
		if _, dup := seen[v.VideoID]; dup {
			continue
		}
		seen[v.VideoID] = struct{}{}
		picked = append(picked, v)
	}

	sort.SliceStable(picked, func(i, j int) bool {
		ki, kj := isKorean(picked[i]), isKorean(picked[j])
		if ki != kj {
			return ki
		}
		return picked[i].Stats.Views > picked[j].Stats.Views
	})

	out := make([]CatalogVideo, len(picked))
	for i, v := range picked {
		out[i] = CatalogVideo{
			ID:          v.VideoID,
			Title:       v.Title,
			Channel:     v.Channel,
			Views:       int64(v.Stats.Views),
			PublishTime: v.Publish,
			Category:    v.Category,
			Thumbnail:   ThumbnailURL(v.VideoID),
		}
	}
	return out
}

// ThumbnailURL returns the medium quality still for a video ID.
func ThumbnailURL(id string) string {
	return "https://img.youtube.com/vi/" + id + "/mqdefault.jpg"
}

func isKorean(v scrapedVideo) bool {
	return hangul.MatchString(v.Title) || hangul.MatchString(v.Channel)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
