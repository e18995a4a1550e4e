package analysis

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/newthinker/trendpulse/internal/core"
	"github.com/newthinker/trendpulse/internal/llm"
	"github.com/newthinker/trendpulse/internal/news"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

const (
	maxPromptComments = 40
	maxCommentRunes   = 200
	summaryMaxTokens  = 1200
)

const summarySystemPrompt = `당신은 한국 온라인 커뮤니티와 유튜브 트렌드를 분석하는 마케팅 리서처입니다.
주어진 댓글과 뉴스 헤드라인만 근거로 사용하고, 없는 사실을 만들지 마세요.
답변은 한국어 마크다운으로 작성합니다.`

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Summary is the /api/summary payload.
type Summary struct {
	Keyword     string      `json:"keyword"`
	Summary     string      `json:"summary"`
	SummaryHTML string      `json:"summaryHtml"`
	News        []news.Item `json:"news"`
	Comments    int         `json:"commentCount"`
}

// Summarize asks the LLM to explain why keyword is trending, from its
// collected comments and the matching news headlines. The range narrows
// the news search only.
func (a *Analyzer) Summarize(ctx context.Context, keyword string, r core.DateRange) (*Summary, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, core.WrapError(core.ErrInvalidInput, fmt.Errorf("keyword is required"))
	}
	if a.llm == nil {
		return nil, core.ErrLLMDisabled
	}

	comments := ParseComments(a.keywords.Comments(keyword))

	headlines := []news.Item{}
	if a.news != nil {
		items, err := a.news.Search(ctx, news.Query{Keyword: keyword, Range: r})
		if err != nil {
			a.logger.Warn("news unavailable for summary", zap.String("keyword", keyword), zap.Error(err))
		} else {
			headlines = items
		}
	}

	if len(comments) == 0 && len(headlines) == 0 {
		return nil, core.WrapError(core.ErrKeywordNotFound,
			fmt.Errorf("no comments or news for %q", keyword))
	}

	text, err := llm.Ask(ctx, a.llm, summarySystemPrompt, summaryPrompt(keyword, comments, headlines), summaryMaxTokens)
	if err != nil {
		a.logger.Error("summary failed", zap.String("provider", a.llm.Name()), zap.Error(err))
		return nil, core.WrapError(core.ErrLLMFailed, err)
	}

	html, err := RenderMarkdown(text)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Keyword:     keyword,
		Summary:     text,
		SummaryHTML: html,
		News:        headlines,
		Comments:    len(comments),
	}, nil
}

func summaryPrompt(keyword string, comments []Comment, headlines []news.Item) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "키워드: %s\n\n", keyword)

	if len(comments) > 0 {
		sb.WriteString("## 수집된 댓글\n")
		for i, c := range comments {
			if i == maxPromptComments {
				break
			}
			fmt.Fprintf(&sb, "- (%s) %s\n", c.Source, truncateRunes(c.Text, maxCommentRunes))
		}
		sb.WriteString("\n")
	}

	if len(headlines) > 0 {
		sb.WriteString("## 관련 뉴스\n")
		for _, h := range headlines {
			fmt.Fprintf(&sb, "- %s (%s)\n", h.Title, h.Source)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`다음 형식으로 정리해 주세요.
### 한 줄 요약
### 왜 뜨고 있나
### 커뮤니티 반응
### 마케팅 활용 포인트`)
	return sb.String()
}

// RenderMarkdown converts LLM markdown into HTML. Raw HTML in the input
// is dropped.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
