package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/auth"
	"github.com/ternarybob/conduit/internal/engine"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// wpPost is the REST representation of a post, decoded minimally
type wpPost struct {
	ID      int    `json:"id"`
	Link    string `json:"link"`
	DateGMT string `json:"date_gmt"`
	Status  string `json:"status"`
	Title   struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Content struct {
		Rendered string `json:"rendered"`
	} `json:"content"`
}

// WordPressFetchHandler pulls the first unprocessed post from a WordPress
// site over the REST API, newest first. Dedup keys on the post ID.
type WordPressFetchHandler struct {
	client   *http.Client
	provider *auth.AppPasswordProvider
	dedup    interfaces.ProcessedItemStorage
	logger   arbor.ILogger
}

// NewWordPressFetchHandler creates the WordPress fetch handler
func NewWordPressFetchHandler(client *http.Client, provider *auth.AppPasswordProvider, dedup interfaces.ProcessedItemStorage, logger arbor.ILogger) *WordPressFetchHandler {
	return &WordPressFetchHandler{client: client, provider: provider, dedup: dedup, logger: logger}
}

func (h *WordPressFetchHandler) Fetch(ctx context.Context, req interfaces.FetchRequest) (*models.FetchResult, error) {
	user, pass, baseURL, err := h.provider.BasicAuth(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrConfigMissing) {
			return nil, fmt.Errorf("%w: %v", engine.ErrConfiguration, err)
		}
		return nil, err
	}
	// a base URL in settings overrides the stored one
	if override := stringSetting(req.Settings, "base_url"); override != "" {
		baseURL = override
	}
	if baseURL == "" {
		return nil, fmt.Errorf("%w: wordpress base_url not configured", engine.ErrConfiguration)
	}

	perPage := intSetting(req.Settings, "per_page", 20)
	status := stringSetting(req.Settings, "status")
	if status == "" {
		status = "publish"
	}

	endpoint := fmt.Sprintf("%s/wp-json/wp/v2/posts?per_page=%d&orderby=date&order=desc&status=%s",
		strings.TrimRight(baseURL, "/"), perPage, status)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid wordpress URL: %v", engine.ErrConfiguration, err)
	}
	httpReq.SetBasicAuth(user, pass)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: wordpress request failed: %v", engine.ErrTransientSource, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: wordpress rejected credentials (status %d)", engine.ErrAuthentication, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: wordpress returned status %d", engine.ErrTransientSource, resp.StatusCode)
	}

	var posts []wpPost
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, fmt.Errorf("%w: wordpress response parse failed: %v", engine.ErrContentValidation, err)
	}

	for _, post := range posts {
		itemID := strconv.Itoa(post.ID)

		processed, err := h.dedup.IsProcessed(ctx, req.FlowStepID, "wordpress", itemID)
		if err != nil {
			return nil, fmt.Errorf("dedup query failed: %w", err)
		}
		if processed {
			continue
		}
		if err := h.dedup.MarkProcessed(ctx, req.FlowStepID, "wordpress", itemID); err != nil {
			if errors.Is(err, interfaces.ErrAlreadyProcessed) {
				continue
			}
			return nil, fmt.Errorf("dedup mark failed: %w", err)
		}

		h.logger.Info().
			Int("post_id", post.ID).
			Str("link", post.Link).
			Msg("New WordPress post selected")

		return &models.FetchResult{Item: &models.FetchItem{
			Title: post.Title.Rendered,
			Body:  post.Content.Rendered,
			Metadata: map[string]interface{}{
				"source_url":     post.Link,
				"source_post_id": post.ID,
				"published":      post.DateGMT,
				"status":         post.Status,
			},
		}}, nil
	}

	return &models.FetchResult{}, nil
}
