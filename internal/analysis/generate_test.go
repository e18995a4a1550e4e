package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/newthinker/trendpulse/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	model := &stubLLM{reply: "  완성된 피드  \n"}
	a := New(Deps{Keywords: fixtureResolver(), LLM: model})

	out, err := a.Generate(context.Background(), GenerateRequest{
		Keyword: "테스트",
		Type:    "블로그",
		Context: "수제 디저트 카페",
		Target:  "20대",
	})
	require.NoError(t, err)
	assert.Equal(t, "완성된 피드", out)

	prompt := model.last.Messages[0].Content
	assert.Contains(t, prompt, "콘텐츠 유형: 블로그")
	assert.Contains(t, prompt, "톤앤매너: 친근한")
	assert.Contains(t, prompt, "제품/브랜드 설명: 수제 디저트 카페")
	assert.Contains(t, prompt, "타깃: 20대")
	assert.Contains(t, prompt, "- 좋아요")
}

func TestGenerate_Defaults(t *testing.T) {
	model := &stubLLM{reply: "ok"}
	a := New(Deps{Keywords: fixtureResolver(), LLM: model})

	_, err := a.Generate(context.Background(), GenerateRequest{Keyword: "새키워드"})
	require.NoError(t, err)

	prompt := model.last.Messages[0].Content
	assert.Contains(t, prompt, "콘텐츠 유형: 인스타 피드")
	assert.NotContains(t, prompt, "실제 커뮤니티 반응")
}

func TestGenerate_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New(Deps{Keywords: fixtureResolver(), LLM: &stubLLM{}}).Generate(ctx, GenerateRequest{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = New(Deps{Keywords: fixtureResolver(), LLM: &stubLLM{}}).Generate(ctx, GenerateRequest{Keyword: "k", Type: "팩스"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = New(Deps{Keywords: fixtureResolver()}).Generate(ctx, GenerateRequest{Keyword: "k"})
	assert.ErrorIs(t, err, core.ErrLLMDisabled)

	_, err = New(Deps{Keywords: fixtureResolver(), LLM: &stubLLM{err: errors.New("down")}}).Generate(ctx, GenerateRequest{Keyword: "k"})
	assert.ErrorIs(t, err, core.ErrLLMFailed)
}
