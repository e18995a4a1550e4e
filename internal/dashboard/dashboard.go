// Package dashboard builds the home page views from loaded trend snapshots.
package dashboard

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/newthinker/trendpulse/internal/trend"
)

// DefaultLimit is the size of every home page list.
const DefaultLimit = 5

// NoCommentDesc is shown when a rising keyword has no example quote.
const NoCommentDesc = "관련된 코멘트가 없습니다."

// Content filters accepted by RisingContents.
const (
	FilterYouTube   = "youtube"
	FilterCommunity = "community"
)

const maxContentDescRunes = 50

var (
	leadingTag     = regexp.MustCompile(`^\[.*?\]\s*`)
	contentTag     = regexp.MustCompile(`^\[(.*?)\]`)
	contentTagKind = regexp.MustCompile(`^\[.*?\](\(comment\)|\(post\))?\s*`)
)

// Source is the read side of trend.Store used by the views.
type Source interface {
	LatestSnapshot() *trend.Snapshot
	Snapshots() []*trend.Snapshot
}

// RisingKeyword is one row of the rising top list.
type RisingKeyword struct {
	Rank    int    `json:"rank"`
	Keyword string `json:"keyword"`
	Volume  string `json:"volume"`
	Change  string `json:"change"`
	IsUp    bool   `json:"isUp"`
	Desc    string `json:"desc"`
	Color   string `json:"color"`
}

// PlatformKeyword is one row of a platform top list.
type PlatformKeyword struct {
	Rank     int    `json:"rank"`
	Keyword  string `json:"keyword"`
	Count    int    `json:"count"`
	Platform string `json:"platform"`
	Desc     string `json:"desc"`
}

// ContentCard is one rising content snippet.
type ContentCard struct {
	Rank      int     `json:"rank"`
	Title     string  `json:"title"`
	Desc      string  `json:"desc"`
	Stats     string  `json:"stats"`
	Thumbnail *string `json:"thumbnail"`
}

// Rising returns the top n integrated keywords of the latest date with
// their change against the previous date.
func Rising(src Source, n int) []RisingKeyword {
	snaps := src.Snapshots()
	if len(snaps) == 0 {
		return []RisingKeyword{}
	}
	latest := snaps[len(snaps)-1]

	prev := make(map[string]trend.Entry)
	if len(snaps) > 1 {
		for _, e := range snaps[len(snaps)-2].Integrated {
			if _, ok := prev[e.Keyword]; !ok {
				prev[e.Keyword] = e
			}
		}
	}

	top := topByRank(latest.Integrated, n)
	out := make([]RisingKeyword, 0, len(top))
	for _, e := range top {
		change := 0.0
		if p, ok := prev[e.Keyword]; ok {
			change = changeRate(e, p)
		}
		up := change >= 0

		arrow, color := "▲", "red"
		if !up {
			arrow, color = "▼", "blue"
		}

		desc := firstExample(e)
		if desc == "" {
			desc = NoCommentDesc
		}

		out = append(out, RisingKeyword{
			Rank:    e.Rank,
			Keyword: e.Keyword,
			Volume:  fmt.Sprintf("언급량 %s회", humanize.Comma(int64(e.Mentions))),
			Change:  fmt.Sprintf("%s %.1f%%", arrow, math.Abs(change)),
			IsUp:    up,
			Desc:    desc,
			Color:   color,
		})
	}
	return out
}

// changeRate compares scores, or mentions when either score is zero.
func changeRate(cur, prev trend.Entry) float64 {
	if cur.Score != 0 && prev.Score != 0 {
		return (cur.Score - prev.Score) / prev.Score * 100
	}
	if prev.Mentions == 0 {
		return 0
	}
	return float64(cur.Mentions-prev.Mentions) / float64(prev.Mentions) * 100
}

// PlatformTop returns the top n entries of a platform list by rank,
// labelled with the platform name the client asked for.
func PlatformTop(entries []trend.Entry, requested string, n int) []PlatformKeyword {
	top := topByRank(entries, n)
	out := make([]PlatformKeyword, 0, len(top))
	for _, e := range top {
		out = append(out, PlatformKeyword{
			Rank:     e.Rank,
			Keyword:  e.Keyword,
			Count:    e.Mentions,
			Platform: requested,
			Desc:     firstExample(e),
		})
	}
	return out
}

// Rows flattens the integrated lists of every date, oldest first. A
// non-empty date must equal the row date; a non-empty keyword must be a
// substring of the row keyword.
func Rows(src Source, keyword, date string) []trend.Entry {
	out := []trend.Entry{}
	for _, snap := range src.Snapshots() {
		if date != "" && snap.Date != date {
			continue
		}
		for _, e := range snap.Integrated {
			if keyword != "" && !strings.Contains(e.Keyword, keyword) {
				continue
			}
			out = append(out, e)
		}
	}
	return out
}

type content struct {
	keyword  string
	source   string
	text     string
	score    float64
	mentions int
}

// RisingContents turns the tagged example quotes of the latest integrated
// list into content cards ordered by keyword score. filter narrows to
// FilterYouTube or FilterCommunity sources; anything else keeps all.
func RisingContents(src Source, filter string, n int) []ContentCard {
	snap := src.LatestSnapshot()
	if snap == nil {
		return []ContentCard{}
	}

	var items []content
	for _, e := range snap.Integrated {
		for _, ex := range e.Examples {
			m := contentTag.FindStringSubmatch(ex)
			if m == nil {
				continue
			}
			isYouTube := strings.Contains(m[1], "youtube")
			if (filter == FilterYouTube && !isYouTube) || (filter == FilterCommunity && isYouTube) {
				continue
			}
			items = append(items, content{
				keyword:  e.Keyword,
				source:   m[1],
				text:     contentTagKind.ReplaceAllString(ex, ""),
				score:    e.Score,
				mentions: e.Mentions,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})
	if n >= 0 && len(items) > n {
		items = items[:n]
	}

	out := make([]ContentCard, len(items))
	for i, it := range items {
		out[i] = ContentCard{
			Rank:  i + 1,
			Title: it.keyword,
			Desc:  truncate(it.text, maxContentDescRunes),
			Stats: fmt.Sprintf("관련 언급 %d회 • %s", it.mentions, it.source),
		}
	}
	return out
}

func topByRank(entries []trend.Entry, n int) []trend.Entry {
	sorted := make([]trend.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank < sorted[j].Rank
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func firstExample(e trend.Entry) string {
	if len(e.Examples) == 0 {
		return ""
	}
	return leadingTag.ReplaceAllString(e.Examples[0], "")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
