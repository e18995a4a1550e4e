package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// WordCount is one word cloud entry.
type WordCount struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// MaxCloudWords caps the word cloud size.
const MaxCloudWords = 50

var (
	cloudTag     = regexp.MustCompile(`\[.*?\]`)
	cloudURL     = regexp.MustCompile(`http\S+`)
	cloudSymbols = regexp.MustCompile(`[^\w가-힣\s]`)
	cloudSpace   = regexp.MustCompile(`\s+`)
)

// WordCloud counts words across comments, excluding the keyword itself
// and single-character words. Ties keep first-seen order.
func WordCloud(comments []string, keyword string) []WordCount {
	if len(comments) == 0 {
		return []WordCount{}
	}

	text := strings.Join(comments, " ")
	text = cloudTag.ReplaceAllString(text, "")
	text = cloudURL.ReplaceAllString(text, "")
	text = cloudSymbols.ReplaceAllString(text, "")
	text = cloudSpace.ReplaceAllString(text, " ")

	counts := make(map[string]int)
	var order []string
	for _, w := range strings.Split(text, " ") {
		if utf8.RuneCountInString(w) <= 1 || w == keyword {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	cloud := make([]WordCount, len(order))
	for i, w := range order {
		cloud[i] = WordCount{Text: w, Value: counts[w]}
	}
	sort.SliceStable(cloud, func(i, j int) bool {
		return cloud[i].Value > cloud[j].Value
	})
	if len(cloud) > MaxCloudWords {
		cloud = cloud[:MaxCloudWords]
	}
	return cloud
}
