// internal/llm/factory/factory.go
package factory

import (
	"fmt"
	"strings"

	"github.com/newthinker/trendpulse/internal/config"
	"github.com/newthinker/trendpulse/internal/core"
	"github.com/newthinker/trendpulse/internal/llm"
	"github.com/newthinker/trendpulse/internal/llm/claude"
	"github.com/newthinker/trendpulse/internal/llm/ollama"
	"github.com/newthinker/trendpulse/internal/llm/openai"
)

// Providers lists the accepted llm.provider values.
var Providers = []string{"claude", "openai", "ollama"}

// New creates an LLM provider based on configuration. An empty provider
// returns nil, nil: summaries and generation are then disabled.
func New(cfg config.LLMConfig) (llm.Provider, error) {
	var (
		p   llm.Provider
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "none":
		return nil, nil
	case "claude", "anthropic":
		p, err = claude.New(cfg.Claude.APIKey, cfg.Claude.Model, cfg.Claude.BaseURL)
	case "openai":
		p, err = openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	case "ollama":
		p, err = ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.Model)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown LLM provider %q (want one of %s)", cfg.Provider, strings.Join(Providers, ", ")))
	}
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}
	return p, nil
}
