package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/common"
	"github.com/ternarybob/conduit/internal/interfaces"
)

// NewLLMService creates the configured provider. Returns (nil, nil) when no
// provider is configured; AI steps then fail with a configuration error at
// execution time rather than blocking startup.
func NewLLMService(ctx context.Context, config *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	switch strings.ToLower(config.LLM.Provider) {
	case "claude", "":
		if config.Claude.APIKey == "" {
			logger.Warn().Msg("No Claude API key configured, AI steps will be unavailable")
			return nil, nil
		}
		return NewClaudeService(&config.Claude, logger)
	case "gemini":
		if config.Gemini.APIKey == "" {
			logger.Warn().Msg("No Gemini API key configured, AI steps will be unavailable")
			return nil, nil
		}
		return NewGeminiService(ctx, &config.Gemini, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", config.LLM.Provider)
	}
}
