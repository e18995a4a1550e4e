package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/newthinker/trendpulse/internal/core"
	"github.com/newthinker/trendpulse/internal/llm"
	"go.uber.org/zap"
)

// ContentTypes are the formats the creation studio offers.
var ContentTypes = []string{"인스타 피드", "릴스 대본", "블로그", "포스터", "카드뉴스", "문자"}

const (
	defaultContentType = "인스타 피드"
	defaultTone        = "친근한"
	generateMaxTokens  = 1500
)

const generateSystemPrompt = `당신은 한국 SNS 마케팅 카피라이터입니다.
트렌드 키워드를 자연스럽게 녹여 바로 게시할 수 있는 콘텐츠를 한국어로 작성합니다.`

// GenerateRequest is the /api/generate body.
type GenerateRequest struct {
	Keyword string `json:"keyword"`
	Type    string `json:"type"`
	Tone    string `json:"tone"`
	Context string `json:"context"`
	Target  string `json:"target"`
}

// Generate writes marketing copy for a trend keyword. When the keyword is
// a loaded trend, a few of its comments are added as colour.
func (a *Analyzer) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.Keyword == "" {
		return "", core.WrapError(core.ErrInvalidInput, fmt.Errorf("keyword is required"))
	}
	if a.llm == nil {
		return "", core.ErrLLMDisabled
	}
	if req.Type == "" {
		req.Type = defaultContentType
	}
	if !validContentType(req.Type) {
		return "", core.WrapError(core.ErrInvalidInput,
			fmt.Errorf("type must be one of %s", strings.Join(ContentTypes, ", ")))
	}
	if req.Tone == "" {
		req.Tone = defaultTone
	}

	var reactions []Comment
	if a.keywords != nil {
		reactions = ParseComments(a.keywords.Comments(req.Keyword))
	}

	text, err := llm.Ask(ctx, a.llm, generateSystemPrompt, generatePrompt(req, reactions), generateMaxTokens)
	if err != nil {
		a.logger.Error("generation failed", zap.String("provider", a.llm.Name()), zap.Error(err))
		return "", core.WrapError(core.ErrLLMFailed, err)
	}
	return text, nil
}

func generatePrompt(req GenerateRequest, reactions []Comment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "콘텐츠 유형: %s\n", req.Type)
	fmt.Fprintf(&sb, "트렌드 키워드: %s\n", req.Keyword)
	fmt.Fprintf(&sb, "톤앤매너: %s\n", req.Tone)
	if req.Context != "" {
		fmt.Fprintf(&sb, "제품/브랜드 설명: %s\n", req.Context)
	}
	if req.Target != "" {
		fmt.Fprintf(&sb, "타깃: %s\n", req.Target)
	}
	if len(reactions) > 0 {
		sb.WriteString("\n실제 커뮤니티 반응:\n")
		for i, c := range reactions {
			if i == 5 {
				break
			}
			fmt.Fprintf(&sb, "- %s\n", truncateRunes(c.Text, 100))
		}
	}
	sb.WriteString("\n유형에 맞는 길이와 구성으로 완성된 콘텐츠만 출력하세요.")
	return sb.String()
}

func validContentType(t string) bool {
	for _, ct := range ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}
