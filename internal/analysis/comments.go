package analysis

import (
	"regexp"
	"strings"
)

// Comment is one example quote split into its source tag and text.
type Comment struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

var taggedComment = regexp.MustCompile(`(?s)^\[(.*?)\]\s*(.*)`)

// ParseComments splits "[source] text" quotes. Untagged quotes are
// dropped; repeated (source, text) pairs keep their first position.
func ParseComments(raw []string) []Comment {
	out := make([]Comment, 0, len(raw))
	seen := make(map[Comment]struct{}, len(raw))
	for _, s := range raw {
		m := taggedComment.FindStringSubmatch(strings.TrimSpace(s))
		if m == nil {
			continue
		}
		c := Comment{Source: m[1], Text: m[2]}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
