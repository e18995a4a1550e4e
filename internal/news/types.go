// Package news fetches keyword headlines from Google News RSS.
package news

import (
	"context"
	"strings"

	"github.com/newthinker/trendpulse/internal/core"
)

// Item is one headline.
type Item struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pubDate"`
	Source  string `json:"source"`
}

// Query selects headlines for a keyword, optionally bounded by date.
type Query struct {
	Keyword string
	Range   core.DateRange
}

// SearchTerms renders the query in Google News search syntax.
func (q Query) SearchTerms() string {
	var sb strings.Builder
	sb.WriteString(q.Keyword)
	if q.Range.Start != "" {
		sb.WriteString(" after:" + q.Range.Start)
	}
	if q.Range.End != "" {
		sb.WriteString(" before:" + q.Range.End)
	}
	return sb.String()
}

// Provider returns headlines for a query.
type Provider interface {
	Search(ctx context.Context, q Query) ([]Item, error)
}
