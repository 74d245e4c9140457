package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/auth"
	"github.com/ternarybob/conduit/internal/engine"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
	"github.com/yuin/goldmark"
)

// WordPressUpdateHandler modifies an existing post identified by the entry's
// source_post_id metadata. Used by update flows where the fetch and the
// destination are the same site.
type WordPressUpdateHandler struct {
	client   *http.Client
	provider *auth.AppPasswordProvider
	markdown goldmark.Markdown
	logger   arbor.ILogger
}

// NewWordPressUpdateHandler creates the WordPress update handler
func NewWordPressUpdateHandler(client *http.Client, provider *auth.AppPasswordProvider, logger arbor.ILogger) *WordPressUpdateHandler {
	return &WordPressUpdateHandler{
		client:   client,
		provider: provider,
		markdown: goldmark.New(),
		logger:   logger,
	}
}

func (h *WordPressUpdateHandler) Update(ctx context.Context, req interfaces.OutputRequest) (models.HandlerResult, error) {
	result := models.HandlerResult{Slug: "wordpress_update"}

	if req.Entry == nil {
		return result, fmt.Errorf("%w: no entry to apply", engine.ErrContentValidation)
	}
	postID := metadataInt(req.Entry.Metadata, "source_post_id")
	if postID <= 0 {
		return result, fmt.Errorf("%w: entry has no source_post_id to update", engine.ErrContentValidation)
	}

	user, pass, baseURL, err := h.provider.BasicAuth(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrConfigMissing) {
			return result, fmt.Errorf("%w: %v", engine.ErrConfiguration, err)
		}
		return result, err
	}
	if override := stringSetting(req.Settings, "base_url"); override != "" {
		baseURL = override
	}
	if baseURL == "" {
		return result, fmt.Errorf("%w: wordpress base_url not configured", engine.ErrConfiguration)
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(req.Entry.Content.Body), &buf); err != nil {
		return result, fmt.Errorf("%w: markdown render failed: %v", engine.ErrContentValidation, err)
	}

	payload := map[string]interface{}{
		"content": buf.String(),
	}
	if req.Entry.Content.Title != "" {
		payload["title"] = req.Entry.Content.Title
	}
	if status := stringSetting(req.Settings, "status"); status != "" {
		payload["status"] = status
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return result, fmt.Errorf("%w: payload marshal failed: %v", engine.ErrHandlerExecution, err)
	}

	endpoint := fmt.Sprintf("%s/wp-json/wp/v2/posts/%d", strings.TrimRight(baseURL, "/"), postID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return result, fmt.Errorf("%w: invalid wordpress URL: %v", engine.ErrConfiguration, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(user, pass)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return result, fmt.Errorf("%w: wordpress request failed: %v", engine.ErrTransientSource, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return result, fmt.Errorf("%w: wordpress rejected credentials (status %d)", engine.ErrAuthentication, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return result, fmt.Errorf("%w: post %d not found", engine.ErrContentValidation, postID)
	case resp.StatusCode != http.StatusOK:
		return result, fmt.Errorf("%w: wordpress returned status %d", engine.ErrTransientSource, resp.StatusCode)
	}

	var updated wpPost
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return result, fmt.Errorf("%w: wordpress response parse failed: %v", engine.ErrContentValidation, err)
	}

	h.logger.Info().
		Int("post_id", updated.ID).
		Str("link", updated.Link).
		Msg("Updated WordPress post")

	result.Success = true
	result.Fields = map[string]interface{}{
		"post_id": updated.ID,
		"link":    updated.Link,
	}
	return result, nil
}

// metadataInt reads an int out of entry metadata, tolerating the numeric
// shapes JSON round-tripping produces
func metadataInt(metadata map[string]interface{}, key string) int {
	if metadata == nil {
		return 0
	}
	switch v := metadata[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
