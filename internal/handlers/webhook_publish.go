package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/engine"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// WebhookPublishHandler POSTs the entry as JSON to a configured URL. When a
// secret is configured the body is signed with HMAC-SHA256 and the hex
// digest sent in X-Conduit-Signature.
type WebhookPublishHandler struct {
	client *http.Client
	logger arbor.ILogger
}

// NewWebhookPublishHandler creates the webhook publish handler
func NewWebhookPublishHandler(client *http.Client, logger arbor.ILogger) *WebhookPublishHandler {
	return &WebhookPublishHandler{client: client, logger: logger}
}

func (h *WebhookPublishHandler) Publish(ctx context.Context, req interfaces.OutputRequest) (models.HandlerResult, error) {
	result := models.HandlerResult{Slug: "webhook"}

	if req.Entry == nil {
		return result, fmt.Errorf("%w: no entry to publish", engine.ErrContentValidation)
	}
	targetURL, err := requireString(req.Settings, "url")
	if err != nil {
		return result, err
	}

	payload := map[string]interface{}{
		"job_id":    req.JobID,
		"title":     req.Entry.Content.Title,
		"body":      req.Entry.Content.Body,
		"metadata":  req.Entry.Metadata,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if req.Engine != nil {
		payload["source_url"] = req.Engine.SourceURL
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return result, fmt.Errorf("%w: payload marshal failed: %v", engine.ErrHandlerExecution, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(body))
	if err != nil {
		return result, fmt.Errorf("%w: invalid webhook url: %v", engine.ErrConfiguration, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if secret := stringSetting(req.Settings, "secret"); secret != "" {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		httpReq.Header.Set("X-Conduit-Signature", hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return result, fmt.Errorf("%w: webhook request failed: %v", engine.ErrTransientSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, fmt.Errorf("%w: webhook returned status %d", engine.ErrTransientSource, resp.StatusCode)
	}

	h.logger.Info().
		Str("url", targetURL).
		Int("status", resp.StatusCode).
		Msg("Webhook delivered")

	result.Success = true
	result.Fields = map[string]interface{}{"status": resp.StatusCode}
	return result, nil
}
