package llm

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	got   ChatRequest
	reply string
	err   error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &ChatResponse{Content: s.reply}, nil
}

func TestAsk(t *testing.T) {
	p := &stubProvider{reply: "  결과\n"}

	got, err := Ask(context.Background(), p, "system", "prompt", 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "결과" {
		t.Errorf("expected trimmed reply, got %q", got)
	}
	if p.got.SystemPrompt != "system" || p.got.MaxTokens != 300 {
		t.Errorf("unexpected request %+v", p.got)
	}
	if len(p.got.Messages) != 1 || p.got.Messages[0].Role != "user" || p.got.Messages[0].Content != "prompt" {
		t.Errorf("unexpected messages %+v", p.got.Messages)
	}
}

func TestAsk_Error(t *testing.T) {
	p := &stubProvider{err: errors.New("boom")}
	if _, err := Ask(context.Background(), p, "", "x", 0); err == nil {
		t.Error("expected error")
	}
}

func TestAsk_EmptyReply(t *testing.T) {
	p := &stubProvider{reply: " \n "}
	if _, err := Ask(context.Background(), p, "", "x", 0); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("expected ErrEmptyReply, got %v", err)
	}
}

type recordingObserver struct {
	service string
	err     error
	calls   int
}

func (o *recordingObserver) RecordUpstream(service string, err error, duration float64) {
	o.service, o.err = service, err
	o.calls++
}

func TestWithObserver(t *testing.T) {
	obs := &recordingObserver{}
	p := WithObserver(&stubProvider{err: errors.New("quota")}, obs)

	if p.Name() != "stub" {
		t.Errorf("expected wrapped name stub, got %s", p.Name())
	}
	if _, err := p.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Fatal("expected error")
	}
	if obs.calls != 1 || obs.service != "llm" || obs.err == nil {
		t.Errorf("unexpected observation %+v", obs)
	}

	if WithObserver(nil, obs) != nil {
		t.Error("expected nil provider to stay nil")
	}
}
