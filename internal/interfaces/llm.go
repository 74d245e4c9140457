package interfaces

import "context"

// Message is a single conversation turn
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// LLMService generates completions. Implementations wrap a specific
// provider (Claude, Gemini) behind this one contract.
type LLMService interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	ProviderName() string
	Close() error
}
