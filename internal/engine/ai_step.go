package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// skipMarker is the directive an AI response uses to decline an item.
// Everything after the marker is recorded as the skip reason.
const skipMarker = "SKIP:"

const defaultSystemPrompt = "You rewrite source content for publication. " +
	"Produce a title on the first line and the body after a blank line. " +
	"If the content is not suitable for publication, respond with SKIP: followed by a short reason."

// AIStep hands the latest data entry to the LLM collaborator and prepends
// the transformed result as a new entry.
type AIStep struct {
	llm     interfaces.LLMService
	timeout time.Duration
	logger  arbor.ILogger
}

// NewAIStep creates an AI step backed by the given LLM service (may be nil
// when no provider is configured; executing the step then fails)
func NewAIStep(llm interfaces.LLMService, timeout time.Duration, logger arbor.ILogger) *AIStep {
	return &AIStep{llm: llm, timeout: timeout, logger: logger}
}

// Execute transforms entries[0] through the model. A skip directive from the
// model surfaces as ErrAgentSkipped with the model's reason.
func (s *AIStep) Execute(ctx context.Context, job *models.Job, step models.FlowStep, entries []*models.DataEntry) ([]*models.DataEntry, error) {
	if s.llm == nil {
		return entries, fmt.Errorf("%w: no LLM provider configured for AI step", ErrConfiguration)
	}

	entry := models.Latest(entries)
	if entry == nil {
		return entries, fmt.Errorf("%w: AI step has no data entry to consume", ErrContentValidation)
	}

	systemPrompt := defaultSystemPrompt
	if v, ok := step.Config["prompt"].(string); ok && v != "" {
		systemPrompt = v
	}

	messages := []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("Title: %s\n\n%s", entry.Content.Title, entry.Content.Body)},
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.llm.Chat(callCtx, messages)
	if err != nil {
		return entries, fmt.Errorf("%w: llm request failed: %v", ErrHandlerExecution, err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return entries, ErrNoItems
	}
	if strings.HasPrefix(response, skipMarker) {
		reason := strings.TrimSpace(strings.TrimPrefix(response, skipMarker))
		return entries, fmt.Errorf("%w: %s", ErrAgentSkipped, reason)
	}

	title, body := splitResponse(response)

	metadata := make(map[string]interface{}, len(entry.Metadata)+1)
	for k, v := range entry.Metadata {
		metadata[k] = v
	}
	metadata["ai_provider"] = s.llm.ProviderName()

	aiEntry := &models.DataEntry{
		Type:      "ai",
		Handler:   s.llm.ProviderName(),
		Content:   models.EntryContent{Title: title, Body: body},
		Metadata:  metadata,
		Timestamp: time.Now(),
	}

	s.logger.Info().
		Str("provider", s.llm.ProviderName()).
		Str("flow_step_id", step.FlowStepID).
		Msg("AI step produced entry")

	return models.Prepend(entries, aiEntry), nil
}

// splitResponse separates the first line as title from the remaining body
func splitResponse(response string) (string, string) {
	parts := strings.SplitN(response, "\n", 2)
	title := strings.TrimSpace(parts[0])
	body := ""
	if len(parts) > 1 {
		body = strings.TrimSpace(parts[1])
	}
	if body == "" {
		body = title
	}
	return title, body
}
