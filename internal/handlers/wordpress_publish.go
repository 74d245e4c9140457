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

// WordPressPublishHandler creates a post on a WordPress site over the REST
// API. Entry bodies are treated as markdown and rendered to HTML; engine
// attribution data (source link, image) is appended when present.
type WordPressPublishHandler struct {
	client   *http.Client
	provider *auth.AppPasswordProvider
	markdown goldmark.Markdown
	logger   arbor.ILogger
}

// NewWordPressPublishHandler creates the WordPress publish handler
func NewWordPressPublishHandler(client *http.Client, provider *auth.AppPasswordProvider, logger arbor.ILogger) *WordPressPublishHandler {
	return &WordPressPublishHandler{
		client:   client,
		provider: provider,
		markdown: goldmark.New(),
		logger:   logger,
	}
}

func (h *WordPressPublishHandler) Publish(ctx context.Context, req interfaces.OutputRequest) (models.HandlerResult, error) {
	result := models.HandlerResult{Slug: "wordpress"}

	if req.Entry == nil {
		return result, fmt.Errorf("%w: no entry to publish", engine.ErrContentValidation)
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

	html, err := h.renderBody(req)
	if err != nil {
		return result, err
	}

	payload := map[string]interface{}{
		"title":   req.Entry.Content.Title,
		"content": html,
		"status":  defaultString(stringSetting(req.Settings, "status"), "draft"),
	}
	if cats := stringSetting(req.Settings, "categories"); cats != "" {
		payload["categories"] = splitInts(cats)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return result, fmt.Errorf("%w: payload marshal failed: %v", engine.ErrHandlerExecution, err)
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/wp-json/wp/v2/posts"
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
	case resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK:
		return result, fmt.Errorf("%w: wordpress returned status %d", engine.ErrTransientSource, resp.StatusCode)
	}

	var created wpPost
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return result, fmt.Errorf("%w: wordpress response parse failed: %v", engine.ErrContentValidation, err)
	}

	h.logger.Info().
		Int("post_id", created.ID).
		Str("link", created.Link).
		Msg("Published WordPress post")

	result.Success = true
	result.Fields = map[string]interface{}{
		"post_id": created.ID,
		"link":    created.Link,
	}
	return result, nil
}

// renderBody converts the entry body from markdown to HTML and appends
// attribution captured by the engine side channel
func (h *WordPressPublishHandler) renderBody(req interfaces.OutputRequest) (string, error) {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(req.Entry.Content.Body), &buf); err != nil {
		return "", fmt.Errorf("%w: markdown render failed: %v", engine.ErrContentValidation, err)
	}
	html := buf.String()

	if req.Engine != nil {
		if req.Engine.ImageURL != "" {
			html = fmt.Sprintf("<p><img src=%q alt=%q /></p>\n", req.Engine.ImageURL, req.Entry.Content.Title) + html
		}
		if req.Engine.SourceURL != "" {
			html += fmt.Sprintf("\n<p><a href=%q>Source</a></p>", req.Engine.SourceURL)
		}
		if req.Engine.TicketURL != "" {
			html += fmt.Sprintf("\n<p><a href=%q>Tickets</a></p>", req.Engine.TicketURL)
		}
	}
	return html, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitInts(csv string) []int {
	var out []int
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n := 0
		if _, err := fmt.Sscanf(part, "%d", &n); err == nil {
			out = append(out, n)
		}
	}
	return out
}
